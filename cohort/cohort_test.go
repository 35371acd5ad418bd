package cohort_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Vayras/admin-frontend-sub001/cache"
	"github.com/Vayras/admin-frontend-sub001/cohort"
	"github.com/Vayras/admin-frontend-sub001/httpclient"
	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/Vayras/admin-frontend-sub001/mutation"
	"github.com/Vayras/admin-frontend-sub001/query"
	"github.com/Vayras/admin-frontend-sub001/session"
	"github.com/Vayras/admin-frontend-sub001/storage"
	"github.com/Vayras/admin-frontend-sub001/testutil"
	"github.com/Vayras/admin-frontend-sub001/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv       *testutil.Server
	session   *session.Manager
	env       *query.Env
	api       *cohort.API
	queries   *cohort.Queries
	mutations *cohort.Mutations
	navCalls  atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{srv: testutil.NewServer(t)}
	tl := logger.NewTestCtxLogger()

	backend := storage.NewMemoryBackend(nil)
	t.Cleanup(backend.Close)
	f.session = session.NewManager(backend.Tab(),
		session.WithLogger(tl.CtxZapLogger),
		session.WithNavigator(session.NavigatorFunc(func(context.Context) { f.navCalls.Add(1) })),
	)

	c, err := cache.NewClient(cache.Config{StaleTime: time.Minute, Retry: testutil.FastRetryPolicy()}, cache.WithLogger(tl.CtxZapLogger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	f.api = cohort.NewAPI(f.srv.Client(httpclient.WithTokenSource(f.session.BearerToken), httpclient.WithLogger(tl.CtxZapLogger)))
	f.env = query.NewEnv(c, f.session, tl.CtxZapLogger)
	f.queries = cohort.NewQueries(f.env, f.api)
	f.mutations = cohort.NewMutations(f.env, f.api, f.queries)
	return f
}

func (f *fixture) loginAs(t *testing.T, email, password string) {
	t.Helper()
	_, err := f.mutations.Login.Use().Mutate(context.Background(), cohort.Credentials{Email: email, Password: password})
	require.NoError(t, err)
	require.True(t, f.session.IsAuthenticated())
}

func TestLogin_StartsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.loginAs(t, testutil.StudentEmail, testutil.StudentPassword)
	claims, err := f.session.Claims()
	require.NoError(t, err)
	assert.Equal(t, "u-student", claims.Subject)
	assert.Equal(t, string(cohort.RoleStudent), claims.Role)

	me := f.queries.Me.Fetch(ctx, struct{}{})
	require.NoError(t, me.Error)
	assert.Equal(t, testutil.StudentEmail, me.Data.Email)
}

func TestLogin_BadCredentials(t *testing.T) {
	f := newFixture(t)

	_, err := f.mutations.Login.Use().Mutate(context.Background(), cohort.Credentials{Email: testutil.StudentEmail, Password: "nope"})
	assert.True(t, httpclient.IsUnauthorized(err))
	assert.Equal(t, "invalid email or password", httpclient.MessageOf(err))
	assert.False(t, f.session.IsAuthenticated())

	_, err = f.mutations.Login.Use().Mutate(context.Background(), cohort.Credentials{Email: "not-an-email"})
	assert.ErrorIs(t, err, validator.ErrValidation)
	assert.Equal(t, 1, f.srv.Hits("POST", "/auth/login"))
}

func TestCohorts_EqualFiltersShareEntry(t *testing.T) {
	f := newFixture(t)
	f.srv.AddCohort(cohort.Cohort{Name: "MB s3", Type: cohort.TypeMasteringBitcoin, Season: 3})
	f.srv.AddCohort(cohort.Cohort{Name: "LN s1", Type: cohort.TypeMasteringLightningNetwork, Season: 1})
	f.loginAs(t, testutil.StudentEmail, testutil.StudentPassword)
	ctx := context.Background()

	filter := cohort.Filter{Type: cohort.TypeMasteringBitcoin}
	first := f.queries.Cohorts.Fetch(ctx, filter)
	second := f.queries.Cohorts.Fetch(ctx, cohort.Filter{Type: cohort.TypeMasteringBitcoin})
	require.NoError(t, first.Error)
	require.Len(t, first.Data, 1)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, 1, f.srv.Hits("GET", "/cohorts"))

	all := f.queries.Cohorts.Fetch(ctx, cohort.Filter{})
	assert.Len(t, all.Data, 2)
	assert.Equal(t, 2, f.srv.Hits("GET", "/cohorts"))
}

func TestCohorts_ReadsAreRetried(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, testutil.StudentEmail, testutil.StudentPassword)
	f.srv.FailNext("GET", "/cohorts", http.StatusServiceUnavailable)

	res := f.queries.Cohorts.Fetch(context.Background(), cohort.Filter{})
	require.NoError(t, res.Error)
	assert.Empty(t, res.Data)
	assert.Equal(t, 2, f.srv.Hits("GET", "/cohorts"))
}

func TestCreate_InvalidatesLists(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, testutil.AdminEmail, testutil.AdminPassword)
	ctx := context.Background()

	list := f.queries.Cohorts.Use(ctx, cohort.Filter{})
	defer list.Close()
	require.NoError(t, list.Result().Error)
	assert.Empty(t, list.Result().Data)

	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	created, err := f.mutations.Create.Use().Mutate(ctx, cohort.CreateInput{
		Name:      "Mastering Bitcoin s4",
		Type:      cohort.TypeMasteringBitcoin,
		Season:    4,
		StartDate: start,
		EndDate:   start.AddDate(0, 2, 0),
		Capacity:  30,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	res := list.Refetch(ctx)
	require.NoError(t, res.Error)
	require.Len(t, res.Data, 1)
	assert.Equal(t, created, res.Data[0])
}

func TestCreate_ValidationStopsTheWrite(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, testutil.AdminEmail, testutil.AdminPassword)

	var handled error
	_, err := f.mutations.Create.Use(mutation.OnError[cohort.CreateInput, cohort.Cohort](func(err error) { handled = err })).Mutate(context.Background(), cohort.CreateInput{Type: "UNKNOWN"})
	require.ErrorIs(t, err, validator.ErrValidation)
	assert.Equal(t, err, handled)

	fields := validator.Fields(err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "type")
	assert.Equal(t, 0, f.srv.Hits("POST", "/cohorts"))
	assert.True(t, f.session.IsAuthenticated())
}

func TestUpdate_InvalidatesDetail(t *testing.T) {
	f := newFixture(t)
	co := f.srv.AddCohort(cohort.Cohort{Name: "old name"})
	f.loginAs(t, testutil.AdminEmail, testutil.AdminPassword)
	ctx := context.Background()

	var changes []string
	detail := f.queries.Cohort.Use(ctx, co.ID, query.OnDataChanged(func(newData, oldData cohort.Cohort) {
		changes = append(changes, oldData.Name+" -> "+newData.Name)
	}))
	defer detail.Close()
	assert.Equal(t, "old name", detail.Result().Data.Name)

	name := "new name"
	_, err := f.mutations.Update.Use().Mutate(ctx, cohort.UpdateInput{ID: co.ID, Name: &name})
	require.NoError(t, err)

	assert.True(t, detail.Result().IsStale)
	res := f.queries.Cohort.Fetch(ctx, co.ID)
	require.NoError(t, res.Error)
	assert.Equal(t, "new name", res.Data.Name)
	assert.Equal(t, []string{"old name -> new name"}, changes)
	assert.Equal(t, 2, f.srv.Hits("GET", "/cohorts/:id"))
}

func TestJoin_InvalidatesMeAndCohort(t *testing.T) {
	f := newFixture(t)
	co := f.srv.AddCohort(cohort.Cohort{Name: "MB s3"})
	f.loginAs(t, testutil.StudentEmail, testutil.StudentPassword)
	ctx := context.Background()

	me := f.queries.Me.Fetch(ctx, struct{}{})
	require.NoError(t, me.Error)
	assert.False(t, me.Data.IsEnrolled(co.ID))
	require.NoError(t, f.queries.Cohort.Fetch(ctx, co.ID).Error)

	enrollment, err := f.mutations.Join.Use().Mutate(ctx, co.ID)
	require.NoError(t, err)
	assert.Equal(t, co.ID, enrollment.CohortID)

	me = f.queries.Me.Fetch(ctx, struct{}{})
	require.NoError(t, me.Error)
	assert.True(t, me.Data.IsEnrolled(co.ID))
	assert.Equal(t, 2, f.srv.Hits("GET", "/users/me"))

	require.NoError(t, f.queries.Cohort.Fetch(ctx, co.ID).Error)
	assert.Equal(t, 2, f.srv.Hits("GET", "/cohorts/:id"))
}

func TestSubmitFeedback_InvalidatesFeedback(t *testing.T) {
	f := newFixture(t)
	co := f.srv.AddCohort(cohort.Cohort{Name: "MB s3"})
	f.loginAs(t, testutil.StudentEmail, testutil.StudentPassword)
	ctx := context.Background()

	_, err := f.mutations.Join.Use().Mutate(ctx, co.ID)
	require.NoError(t, err)

	list := f.queries.Feedback.Fetch(ctx, co.ID)
	require.NoError(t, list.Error)
	assert.Empty(t, list.Data)

	_, err = f.mutations.SubmitFeedback.Use().Mutate(ctx, cohort.FeedbackInput{CohortID: co.ID, Week: 2, Rating: 4, Comment: "good pace"})
	require.NoError(t, err)

	list = f.queries.Feedback.Fetch(ctx, co.ID)
	require.NoError(t, list.Error)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "good pace", list.Data[0].Comment)
}

func TestRevokedToken_EndsSession(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, testutil.StudentEmail, testutil.StudentPassword)
	f.srv.RevokeTokens()

	res := f.queries.Me.Fetch(context.Background(), struct{}{})
	assert.True(t, httpclient.IsUnauthorized(res.Error))
	assert.False(t, f.session.IsAuthenticated())
	assert.Equal(t, int32(1), f.navCalls.Load())
	assert.Equal(t, 1, f.srv.Hits("GET", "/users/me"))
}

func TestDebouncedUpdate_SendsLastEdit(t *testing.T) {
	f := newFixture(t)
	co := f.srv.AddCohort(cohort.Cohort{Name: "draft"})
	f.loginAs(t, testutil.AdminEmail, testutil.AdminPassword)
	ctx := context.Background()

	m := f.mutations.Update.Use()
	done := make(chan error, 1)
	for _, name := range []string{"d", "dr", "dra", "final"} {
		name := name
		m.DebouncedMutate(ctx, cohort.UpdateInput{ID: co.ID, Name: &name}, 50*time.Millisecond, func(_ cohort.Cohort, err error) {
			done <- err
		})
	}
	require.NoError(t, <-done)

	assert.Equal(t, 1, f.srv.Hits("PATCH", "/cohorts/:id"))
	res := f.queries.Cohort.Fetch(ctx, co.ID)
	require.NoError(t, res.Error)
	assert.Equal(t, "final", res.Data.Name)
}
