package testutil

import (
	"net/http"
	"testing"

	"github.com/Vayras/admin-frontend-sub001/cohort"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(t *testing.T, api *FakeAPI, email, password string) string {
	t.Helper()
	resp := POST("/auth/login").WithJSON(cohort.Credentials{Email: email, Password: password}).Do(api.Engine)
	require.Equal(t, http.StatusOK, resp.Status(), resp.Body())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, resp.JSON(&body))
	return body.Token
}

func TestFakeAPI_Login(t *testing.T) {
	api := NewFakeAPI()

	token := login(t, api, StudentEmail, StudentPassword)
	assert.NotEmpty(t, token)

	resp := POST("/auth/login").WithJSON(cohort.Credentials{Email: StudentEmail, Password: "wrong"}).Do(api.Engine)
	assert.Equal(t, http.StatusUnauthorized, resp.Status())
	assert.Contains(t, resp.Body(), "invalid email or password")
}

func TestFakeAPI_RequiresToken(t *testing.T) {
	api := NewFakeAPI()

	assert.Equal(t, http.StatusUnauthorized, GET("/users/me").Do(api.Engine).Status())
	assert.Equal(t, http.StatusUnauthorized, GET("/users/me").WithBearer("garbage").Do(api.Engine).Status())

	token := api.Token(AdminEmail)
	resp := GET("/users/me").WithBearer(token).Do(api.Engine)
	require.Equal(t, http.StatusOK, resp.Status())
	var me cohort.User
	require.NoError(t, resp.JSON(&me))
	assert.Equal(t, cohort.RoleAdmin, me.Role)

	api.RevokeTokens()
	assert.Equal(t, http.StatusUnauthorized, GET("/users/me").WithBearer(token).Do(api.Engine).Status())
	assert.Equal(t, 4, api.Hits("GET", "/users/me"))
}

func TestFakeAPI_Cohorts(t *testing.T) {
	api := NewFakeAPI()
	api.AddCohort(cohort.Cohort{Name: "MB s3", Type: cohort.TypeMasteringBitcoin, Season: 3})
	api.AddCohort(cohort.Cohort{Name: "LN s1", Type: cohort.TypeMasteringLightningNetwork, Season: 1})
	admin := api.Token(AdminEmail)
	student := api.Token(StudentEmail)

	var list []cohort.Cohort
	resp := GET("/cohorts").WithQuery("type", string(cohort.TypeMasteringBitcoin)).WithBearer(student).Do(api.Engine)
	require.NoError(t, resp.JSON(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "MB s3", list[0].Name)

	resp = POST("/cohorts").WithJSON(cohort.CreateInput{Name: "PB s1", Type: cohort.TypeProgrammingBitcoin, Season: 1}).WithBearer(student).Do(api.Engine)
	assert.Equal(t, http.StatusForbidden, resp.Status())

	resp = POST("/cohorts").WithJSON(cohort.CreateInput{Name: "PB s1", Type: cohort.TypeProgrammingBitcoin, Season: 1}).WithBearer(admin).Do(api.Engine)
	require.Equal(t, http.StatusCreated, resp.Status())
	var created cohort.Cohort
	require.NoError(t, resp.JSON(&created))
	assert.Equal(t, "c3", created.ID)
	assert.Equal(t, cohort.StatusUpcoming, created.Status)

	name := "PB season one"
	resp = PATCH("/cohorts/c3").WithJSON(map[string]any{"name": name}).WithBearer(admin).Do(api.Engine)
	require.Equal(t, http.StatusOK, resp.Status())

	assert.Equal(t, http.StatusNotFound, GET("/cohorts/nope").WithBearer(student).Do(api.Engine).Status())
	resp = GET("/cohorts/c3").WithBearer(student).Do(api.Engine)
	require.NoError(t, resp.JSON(&created))
	assert.Equal(t, name, created.Name)
}

func TestFakeAPI_JoinAndFeedback(t *testing.T) {
	api := NewFakeAPI()
	co := api.AddCohort(cohort.Cohort{Name: "MB s3"})
	student := api.Token(StudentEmail)
	path := "/cohorts/" + co.ID

	fb := cohort.FeedbackInput{Week: 1, Rating: 5}
	assert.Equal(t, http.StatusForbidden, POST(path+"/feedback").WithJSON(fb).WithBearer(student).Do(api.Engine).Status())

	assert.Equal(t, http.StatusCreated, POST(path+"/join").WithBearer(student).Do(api.Engine).Status())
	assert.Equal(t, http.StatusConflict, POST(path+"/join").WithBearer(student).Do(api.Engine).Status())
	assert.Equal(t, http.StatusCreated, POST(path+"/feedback").WithJSON(fb).WithBearer(student).Do(api.Engine).Status())

	var list []cohort.Feedback
	require.NoError(t, GET(path+"/feedback").WithBearer(student).Do(api.Engine).JSON(&list))
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Rating)
	assert.Equal(t, "u-student", list[0].UserID)
}

func TestFakeAPI_FailNext(t *testing.T) {
	api := NewFakeAPI()
	token := api.Token(StudentEmail)
	api.FailNext("GET", "/cohorts", http.StatusServiceUnavailable, http.StatusBadGateway)

	assert.Equal(t, http.StatusServiceUnavailable, GET("/cohorts").WithBearer(token).Do(api.Engine).Status())
	assert.Equal(t, http.StatusBadGateway, GET("/cohorts").WithBearer(token).Do(api.Engine).Status())
	assert.Equal(t, http.StatusOK, GET("/cohorts").WithBearer(token).Do(api.Engine).Status())
	assert.Equal(t, 3, api.Hits("GET", "/cohorts"))
}
