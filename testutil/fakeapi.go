package testutil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Vayras/admin-frontend-sub001/cohort"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Seeded accounts of every FakeAPI.
const (
	AdminEmail      = "admin@example.com"
	AdminPassword   = "admin-pass"
	StudentEmail    = "student@example.com"
	StudentPassword = "student-pass"
)

type fakeUser struct {
	cohort.User
	password string
}

// FakeAPI is an in-memory cohort API served by gin. Tokens are HS256 JWTs;
// RevokeTokens invalidates every token issued so far.
type FakeAPI struct {
	Engine *gin.Engine

	mu       sync.Mutex
	secret   []byte
	users    map[string]*fakeUser
	cohorts  map[string]cohort.Cohort
	order    []string
	feedback map[string][]cohort.Feedback
	hits     map[string]int
	failures map[string][]int
	delay    time.Duration
	nextID   int
}

// NewFakeAPI creates the API with the seeded admin and student accounts and no cohorts.
func NewFakeAPI() *FakeAPI {
	gin.SetMode(gin.TestMode)
	f := &FakeAPI{
		secret:   []byte("fake-api-secret-0"),
		users:    make(map[string]*fakeUser),
		cohorts:  make(map[string]cohort.Cohort),
		feedback: make(map[string][]cohort.Feedback),
		hits:     make(map[string]int),
		failures: make(map[string][]int),
	}
	f.users[AdminEmail] = &fakeUser{
		User:     cohort.User{ID: "u-admin", Name: "Ada Admin", Email: AdminEmail, Role: cohort.RoleAdmin},
		password: AdminPassword,
	}
	f.users[StudentEmail] = &fakeUser{
		User:     cohort.User{ID: "u-student", Name: "Sam Student", Email: StudentEmail, Role: cohort.RoleStudent},
		password: StudentPassword,
	}

	r := gin.New()
	r.Use(gin.Recovery(), f.record)
	r.POST("/auth/login", f.login)

	authed := r.Group("/", f.authenticate)
	authed.GET("/users/me", f.me)
	authed.GET("/cohorts", f.listCohorts)
	authed.GET("/cohorts/:id", f.getCohort)
	authed.POST("/cohorts", f.requireAdmin, f.createCohort)
	authed.PATCH("/cohorts/:id", f.requireAdmin, f.updateCohort)
	authed.POST("/cohorts/:id/join", f.joinCohort)
	authed.GET("/cohorts/:id/feedback", f.listFeedback)
	authed.POST("/cohorts/:id/feedback", f.submitFeedback)

	f.Engine = r
	return f
}

// Hits returns how many requests reached route, e.g. Hits("GET", "/cohorts/:id").
func (f *FakeAPI) Hits(method, route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[method+" "+route]
}

// FailNext makes the next requests to route answer with statuses, in order.
func (f *FakeAPI) FailNext(method, route string, statuses ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + route
	f.failures[key] = append(f.failures[key], statuses...)
}

// SetDelay holds every response for d.
func (f *FakeAPI) SetDelay(d time.Duration) {
	f.mu.Lock()
	f.delay = d
	f.mu.Unlock()
}

// RevokeTokens rotates the signing secret.
func (f *FakeAPI) RevokeTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secret = []byte(fmt.Sprintf("fake-api-secret-%d", time.Now().UnixNano()))
}

// Token issues a token for a seeded account without a login request.
func (f *FakeAPI) Token(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return ""
	}
	return f.signLocked(u.User)
}

// AddCohort stores c as is, assigning an id when it has none.
func (f *FakeAPI) AddCohort(c cohort.Cohort) cohort.Cohort {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == "" {
		f.nextID++
		c.ID = "c" + strconv.Itoa(f.nextID)
	}
	if _, exists := f.cohorts[c.ID]; !exists {
		f.order = append(f.order, c.ID)
	}
	f.cohorts[c.ID] = c
	return c
}

func (f *FakeAPI) signLocked(u cohort.User) string {
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  string(u.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}).SignedString(f.secret)
	if err != nil {
		panic(err)
	}
	return token
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

// record counts the request and plays injected failures.
func (f *FakeAPI) record(c *gin.Context) {
	key := c.Request.Method + " " + c.FullPath()

	f.mu.Lock()
	f.hits[key]++
	delay := f.delay
	var status int
	if queued := f.failures[key]; len(queued) > 0 {
		status = queued[0]
		f.failures[key] = queued[1:]
	}
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if status != 0 {
		abort(c, status, http.StatusText(status))
		return
	}
	c.Next()
}

func (f *FakeAPI) authenticate(c *gin.Context) {
	raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || raw == "" {
		abort(c, http.StatusUnauthorized, "missing bearer token")
		return
	}

	f.mu.Lock()
	secret := f.secret
	f.mu.Unlock()

	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		abort(c, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	email, _ := token.Claims.(jwt.MapClaims)["email"].(string)

	f.mu.Lock()
	u, ok := f.users[email]
	f.mu.Unlock()
	if !ok {
		abort(c, http.StatusUnauthorized, "unknown user")
		return
	}
	c.Set("user", u)
	c.Next()
}

func (f *FakeAPI) requireAdmin(c *gin.Context) {
	if currentUser(c).Role != cohort.RoleAdmin {
		abort(c, http.StatusForbidden, "admin role required")
		return
	}
	c.Next()
}

func currentUser(c *gin.Context) *fakeUser {
	return c.MustGet("user").(*fakeUser)
}

func (f *FakeAPI) login(c *gin.Context) {
	var creds cohort.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[creds.Email]
	if !ok || u.password != creds.Password {
		abort(c, http.StatusUnauthorized, "invalid email or password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": f.signLocked(u.User)})
}

func (f *FakeAPI) me(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.JSON(http.StatusOK, currentUser(c).User)
}

func (f *FakeAPI) listCohorts(c *gin.Context) {
	typ := cohort.Type(c.Query("type"))
	season, _ := strconv.Atoi(c.Query("season"))

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]cohort.Cohort, 0, len(f.order))
	for _, id := range f.order {
		co := f.cohorts[id]
		if typ != "" && co.Type != typ {
			continue
		}
		if season > 0 && co.Season != season {
			continue
		}
		out = append(out, co)
	}
	c.JSON(http.StatusOK, out)
}

func (f *FakeAPI) getCohort(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	co, ok := f.cohorts[c.Param("id")]
	if !ok {
		abort(c, http.StatusNotFound, "cohort not found")
		return
	}
	c.JSON(http.StatusOK, co)
}

func (f *FakeAPI) createCohort(c *gin.Context) {
	var in cohort.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if in.Name == "" {
		abort(c, http.StatusUnprocessableEntity, "name is required")
		return
	}

	co := f.AddCohort(cohort.Cohort{
		Name:        in.Name,
		Type:        in.Type,
		Season:      in.Season,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Capacity:    in.Capacity,
		Description: in.Description,
		Status:      cohort.StatusUpcoming,
	})
	c.JSON(http.StatusCreated, co)
}

func (f *FakeAPI) updateCohort(c *gin.Context) {
	var in cohort.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	co, ok := f.cohorts[c.Param("id")]
	if !ok {
		abort(c, http.StatusNotFound, "cohort not found")
		return
	}
	if in.Name != nil {
		co.Name = *in.Name
	}
	if in.StartDate != nil {
		co.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		co.EndDate = *in.EndDate
	}
	if in.Capacity != nil {
		co.Capacity = *in.Capacity
	}
	if in.Description != nil {
		co.Description = *in.Description
	}
	f.cohorts[co.ID] = co
	c.JSON(http.StatusOK, co)
}

func (f *FakeAPI) joinCohort(c *gin.Context) {
	id := c.Param("id")
	u := currentUser(c)

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cohorts[id]; !ok {
		abort(c, http.StatusNotFound, "cohort not found")
		return
	}
	if u.IsEnrolled(id) {
		abort(c, http.StatusConflict, "already enrolled")
		return
	}
	u.CohortIDs = append(u.CohortIDs, id)
	c.JSON(http.StatusCreated, cohort.Enrollment{CohortID: id, UserID: u.ID, JoinedAt: time.Now().UTC()})
}

func (f *FakeAPI) listFeedback(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]cohort.Feedback{}, f.feedback[c.Param("id")]...)
	c.JSON(http.StatusOK, out)
}

func (f *FakeAPI) submitFeedback(c *gin.Context) {
	var in cohort.FeedbackInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	id := c.Param("id")
	u := currentUser(c)

	f.mu.Lock()
	defer f.mu.Unlock()
	if !u.IsEnrolled(id) {
		abort(c, http.StatusForbidden, "not enrolled in this cohort")
		return
	}
	fb := cohort.Feedback{
		ID:       fmt.Sprintf("f%d", len(f.feedback[id])+1),
		CohortID: id,
		UserID:   u.ID,
		Week:     in.Week,
		Rating:   in.Rating,
		Comment:  in.Comment,
		Created:  time.Now().UTC(),
	}
	f.feedback[id] = append(f.feedback[id], fb)
	c.JSON(http.StatusCreated, fb)
}
