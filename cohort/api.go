package cohort

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Vayras/admin-frontend-sub001/httpclient"
	"github.com/Vayras/admin-frontend-sub001/validator"
)

// API is the typed client of the remote cohort API.
type API struct {
	client *httpclient.Client
}

func NewAPI(client *httpclient.Client) *API {
	return &API{client: client}
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a session token.
func (a *API) Login(ctx context.Context, creds Credentials) (string, error) {
	if err := validator.ValidateRequest(creds); err != nil {
		return "", err
	}
	resp, err := httpclient.Post[loginResponse](ctx, a.client, "/auth/login", creds)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", ErrNoToken
	}
	return resp.Token, nil
}

func (a *API) Me(ctx context.Context) (User, error) {
	return httpclient.Get[User](ctx, a.client, "/users/me")
}

func (a *API) ListCohorts(ctx context.Context, filter Filter) ([]Cohort, error) {
	if err := validator.ValidateRequest(filter); err != nil {
		return nil, err
	}
	q := url.Values{}
	if filter.Type != "" {
		q.Set("type", string(filter.Type))
	}
	if filter.Season > 0 {
		q.Set("season", strconv.Itoa(filter.Season))
	}
	return httpclient.Get[[]Cohort](ctx, a.client, "/cohorts", httpclient.WithQueries(q))
}

func (a *API) GetCohort(ctx context.Context, id string) (Cohort, error) {
	if id == "" {
		return Cohort{}, ErrMissingID
	}
	return httpclient.Get[Cohort](ctx, a.client, cohortPath(id))
}

func (a *API) CreateCohort(ctx context.Context, in CreateInput) (Cohort, error) {
	if err := validator.ValidateRequest(in); err != nil {
		return Cohort{}, err
	}
	return httpclient.Post[Cohort](ctx, a.client, "/cohorts", in)
}

func (a *API) UpdateCohort(ctx context.Context, in UpdateInput) (Cohort, error) {
	if err := validator.ValidateRequest(in); err != nil {
		return Cohort{}, err
	}
	return httpclient.Patch[Cohort](ctx, a.client, cohortPath(in.ID), in)
}

func (a *API) JoinCohort(ctx context.Context, id string) (Enrollment, error) {
	if id == "" {
		return Enrollment{}, ErrMissingID
	}
	return httpclient.Post[Enrollment](ctx, a.client, cohortPath(id)+"/join", struct{}{})
}

func (a *API) ListFeedback(ctx context.Context, cohortID string) ([]Feedback, error) {
	if cohortID == "" {
		return nil, ErrMissingID
	}
	return httpclient.Get[[]Feedback](ctx, a.client, cohortPath(cohortID)+"/feedback")
}

func (a *API) SubmitFeedback(ctx context.Context, in FeedbackInput) (Feedback, error) {
	if err := validator.ValidateRequest(in); err != nil {
		return Feedback{}, err
	}
	return httpclient.Post[Feedback](ctx, a.client, cohortPath(in.CohortID)+"/feedback", in)
}

func cohortPath(id string) string {
	return "/cohorts/" + url.PathEscape(id)
}
