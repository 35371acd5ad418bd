package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Vayras/admin-frontend-sub001/cohort"
	"github.com/Vayras/admin-frontend-sub001/testutil"
	"github.com/Vayras/admin-frontend-sub001/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	srv     *testutil.Server
	session string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		srv:     testutil.NewServer(t),
		session: filepath.Join(t.TempDir(), "session.json"),
	}
}

func (h *harness) run(args ...string) (string, error) {
	base := []string{"--api-url", h.srv.URL, "--session-file", h.session}
	return testutil.RunCLI(NewRootCommand(), append(base, args...)...)
}

func (h *harness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := h.run(args...)
	require.NoError(t, err, out)
	return out
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("whoami")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	var buf bytes.Buffer
	printError(&buf, err)
	assert.Equal(t, "Error: not logged in, run `cohortctl login` first\n", buf.String())

	out := h.mustRun(t, "login", "--email", testutil.StudentEmail, "--password", testutil.StudentPassword)
	assert.Contains(t, out, "logged in as student@example.com (STUDENT)")

	out = h.mustRun(t, "whoami")
	assert.Contains(t, out, "Sam Student")
	assert.Contains(t, out, testutil.StudentEmail)

	out = h.mustRun(t, "whoami", "-o", "json")
	var u cohort.User
	require.NoError(t, json.Unmarshal([]byte(out), &u))
	assert.Equal(t, "u-student", u.ID)

	out = h.mustRun(t, "logout")
	assert.Contains(t, out, "logged out")
	assert.NotContains(t, out, "session ended")
	out = h.mustRun(t, "logout")
	assert.Contains(t, out, "not logged in")
}

func TestLogin_Rejected(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("login", "--email", testutil.StudentEmail, "--password", "wrong")
	require.Error(t, err)
	assert.NotContains(t, out, "session ended")

	var buf bytes.Buffer
	printError(&buf, err)
	assert.Equal(t, "Error: invalid email or password (HTTP 401)\n", buf.String())
}

func TestTraceFlagPrintsSpans(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "login", "--email", testutil.StudentEmail, "--password", testutil.StudentPassword)

	out := h.mustRun(t, "whoami")
	assert.NotContains(t, out, "query me")

	out = h.mustRun(t, "--trace", "whoami")
	assert.Contains(t, out, "Sam Student")
	assert.Contains(t, out, "query me")
	assert.Contains(t, out, "query_cache_")
}

func TestCohorts_ListAndShow(t *testing.T) {
	h := newHarness(t)
	mb := h.srv.AddCohort(cohort.Cohort{Name: "MB s3", Type: cohort.TypeMasteringBitcoin, Season: 3, Status: cohort.StatusActive})
	h.srv.AddCohort(cohort.Cohort{Name: "PB s1", Type: cohort.TypeProgrammingBitcoin, Season: 1})
	h.mustRun(t, "login", "--email", testutil.StudentEmail, "--password", testutil.StudentPassword)

	out := h.mustRun(t, "cohorts", "list")
	assert.Contains(t, out, "MB s3")
	assert.Contains(t, out, "PB s1")
	assert.True(t, strings.HasPrefix(out, "ID"))

	out = h.mustRun(t, "cohorts", "list", "--type", "mastering_bitcoin", "-o", "json")
	var list []cohort.Cohort
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, mb.ID, list[0].ID)

	_, err := h.run("cohorts", "list", "--type", "cooking")
	assert.ErrorIs(t, err, validator.ErrValidation)

	out = h.mustRun(t, "cohorts", "show", mb.ID)
	assert.Contains(t, out, "ACTIVE")

	_, err = h.run("cohorts", "show", "c404")
	require.Error(t, err)
	var buf bytes.Buffer
	printError(&buf, err)
	assert.Contains(t, buf.String(), "cohort not found (HTTP 404)")
}

func TestCohorts_CreateAndUpdate(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "login", "--email", testutil.AdminEmail, "--password", testutil.AdminPassword)

	out := h.mustRun(t, "cohorts", "create",
		"--name", "Mastering Bitcoin s4",
		"--type", "MASTERING_BITCOIN",
		"--season", "4",
		"--start", "2025-01-06",
		"--end", "2025-03-03",
		"-o", "json")
	var created cohort.Cohort
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, cohort.StatusUpcoming, created.Status)
	assert.Equal(t, "2025-03-03", created.EndDate.Format(dateLayout))

	out = h.mustRun(t, "cohorts", "update", created.ID, "--name", "MB s4 (evening)", "--capacity", "25")
	assert.Contains(t, out, "MB s4 (evening)")
	assert.Contains(t, out, "25")

	_, err := h.run("cohorts", "update", created.ID)
	assert.ErrorIs(t, err, ErrNothingToUpdate)

	_, err = h.run("cohorts", "create", "--name", "x", "--type", "MASTERING_BITCOIN", "--season", "1",
		"--start", "2025-02-01", "--end", "2025-01-01")
	require.ErrorIs(t, err, validator.ErrValidation)
	var buf bytes.Buffer
	printError(&buf, err)
	assert.Contains(t, buf.String(), "endDate: must be after the start date")
	assert.Equal(t, 1, h.srv.Hits("POST", "/cohorts"))

	_, err = h.run("cohorts", "create", "--start", "06/01/2025")
	assert.ErrorContains(t, err, "--start: expected YYYY-MM-DD")
}

func TestCohorts_StudentCannotCreate(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "login", "--email", testutil.StudentEmail, "--password", testutil.StudentPassword)

	_, err := h.run("cohorts", "create", "--name", "x", "--type", "MASTERING_BITCOIN", "--season", "1",
		"--start", "2025-01-01", "--end", "2025-02-01")
	require.Error(t, err)
	var buf bytes.Buffer
	printError(&buf, err)
	assert.Contains(t, buf.String(), "admin role required (HTTP 403)")

	// a 403 does not end the session
	h.mustRun(t, "whoami")
}

func TestJoinAndFeedback(t *testing.T) {
	h := newHarness(t)
	co := h.srv.AddCohort(cohort.Cohort{Name: "MB s3"})
	h.mustRun(t, "login", "--email", testutil.StudentEmail, "--password", testutil.StudentPassword)

	out := h.mustRun(t, "cohorts", "join", co.ID)
	assert.Contains(t, out, "joined "+co.ID)

	_, err := h.run("cohorts", "join", co.ID)
	require.Error(t, err)

	out = h.mustRun(t, "feedback", "submit", co.ID, "--week", "1", "--rating", "5", "--comment", "great start")
	assert.Contains(t, out, "recorded for week 1")

	_, err = h.run("feedback", "submit", co.ID, "--week", "2", "--rating", "9")
	assert.ErrorIs(t, err, validator.ErrValidation)

	out = h.mustRun(t, "feedback", "list", co.ID)
	assert.Contains(t, out, "great start")
	assert.Contains(t, out, "u-student")
}

func TestRevokedTokenEndsSession(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "login", "--email", testutil.StudentEmail, "--password", testutil.StudentPassword)
	h.srv.RevokeTokens()

	out, err := h.run("whoami")
	require.Error(t, err)
	assert.Contains(t, out, "session ended")

	_, err = h.run("whoami")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestUnsupportedOutput(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("whoami", "-o", "yaml")
	assert.ErrorContains(t, err, "unsupported output format")
}
