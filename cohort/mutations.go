package cohort

import (
	"context"
	"errors"

	"github.com/Vayras/admin-frontend-sub001/mutation"
	"github.com/Vayras/admin-frontend-sub001/query"
)

// Mutations are the write definitions of the console. Each one invalidates
// the queries its write affects.
type Mutations struct {
	Login          *mutation.Definition[Credentials, string]
	Create         *mutation.Definition[CreateInput, Cohort]
	Update         *mutation.Definition[UpdateInput, Cohort]
	Join           *mutation.Definition[string, Enrollment]
	SubmitFeedback *mutation.Definition[FeedbackInput, Feedback]
}

func NewMutations(env *query.Env, api *API, queries *Queries) *Mutations {
	return &Mutations{
		// a new identity makes every cached read suspect
		Login: mutation.New(env, "login",
			func(ctx context.Context, creds Credentials, _ mutation.Meta) (string, error) {
				token, err := api.Login(ctx, creds)
				if err != nil {
					return "", err
				}
				if env.Session != nil {
					if err := env.Session.Login(ctx, token); err != nil {
						return "", err
					}
				}
				return token, nil
			},
			mutation.WithInvalidation(func(ctx context.Context, in mutation.InvalidationInput[Credentials, string]) error {
				in.Client.InvalidateAll(ctx)
				return nil
			}),
		),

		Create: mutation.New(env, "create_cohort",
			func(ctx context.Context, in CreateInput, _ mutation.Meta) (Cohort, error) {
				return api.CreateCohort(ctx, in)
			},
			mutation.WithInvalidation(func(ctx context.Context, in mutation.InvalidationInput[CreateInput, Cohort]) error {
				in.Client.Invalidate(ctx, CohortsPrefix)
				return nil
			}),
		),

		// lists and the detail entry both live under CohortsPrefix
		Update: mutation.New(env, "update_cohort",
			func(ctx context.Context, in UpdateInput, _ mutation.Meta) (Cohort, error) {
				return api.UpdateCohort(ctx, in)
			},
			mutation.WithInvalidation(func(ctx context.Context, in mutation.InvalidationInput[UpdateInput, Cohort]) error {
				in.Client.Invalidate(ctx, CohortsPrefix)
				return nil
			}),
		),

		Join: mutation.New(env, "join_cohort",
			func(ctx context.Context, id string, _ mutation.Meta) (Enrollment, error) {
				return api.JoinCohort(ctx, id)
			},
			mutation.WithInvalidation(func(ctx context.Context, in mutation.InvalidationInput[string, Enrollment]) error {
				return errors.Join(
					queries.Me.Invalidate(ctx, struct{}{}),
					queries.Cohort.Invalidate(ctx, in.Variables),
				)
			}),
		),

		SubmitFeedback: mutation.New(env, "submit_feedback",
			func(ctx context.Context, in FeedbackInput, _ mutation.Meta) (Feedback, error) {
				return api.SubmitFeedback(ctx, in)
			},
			mutation.WithInvalidation(func(ctx context.Context, in mutation.InvalidationInput[FeedbackInput, Feedback]) error {
				return queries.Feedback.Invalidate(ctx, in.Variables.CohortID)
			}),
		),
	}
}
