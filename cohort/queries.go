package cohort

import (
	"context"

	"github.com/Vayras/admin-frontend-sub001/cache"
	"github.com/Vayras/admin-frontend-sub001/query"
)

// CohortsPrefix is the key prefix of every cohort list and detail entry.
var CohortsPrefix = cache.Key{"cohorts"}

func CohortsKey(filter Filter) cache.Key { return cache.Key{"cohorts", filter} }

func CohortKey(id string) cache.Key { return cache.Key{"cohorts", id} }

func MeKey(struct{}) cache.Key { return cache.Key{"me"} }

func FeedbackKey(cohortID string) cache.Key { return cache.Key{"feedback", cohortID} }

// Queries are the read definitions of the console.
type Queries struct {
	Cohorts  *query.Definition[Filter, []Cohort]
	Cohort   *query.Definition[string, Cohort]
	Me       *query.Definition[struct{}, User]
	Feedback *query.Definition[string, []Feedback]
}

func NewQueries(env *query.Env, api *API) *Queries {
	return &Queries{
		Cohorts: query.New(env, CohortsKey, func(filter Filter) query.FetchFunc[[]Cohort] {
			return func(ctx context.Context, _ query.Meta) ([]Cohort, error) {
				return api.ListCohorts(ctx, filter)
			}
		}, query.WithPlaceholder([]Cohort{})),

		Cohort: query.New(env, CohortKey, func(id string) query.FetchFunc[Cohort] {
			return func(ctx context.Context, _ query.Meta) (Cohort, error) {
				return api.GetCohort(ctx, id)
			}
		}),

		Me: query.New(env, MeKey, func(struct{}) query.FetchFunc[User] {
			return func(ctx context.Context, _ query.Meta) (User, error) {
				return api.Me(ctx)
			}
		}),

		Feedback: query.New(env, FeedbackKey, func(cohortID string) query.FetchFunc[[]Feedback] {
			return func(ctx context.Context, _ query.Meta) ([]Feedback, error) {
				return api.ListFeedback(ctx, cohortID)
			}
		}, query.WithPlaceholder([]Feedback{})),
	}
}
