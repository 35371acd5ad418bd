package cli

import (
	"fmt"

	"github.com/Vayras/admin-frontend-sub001/app"
	"github.com/Vayras/admin-frontend-sub001/cohort"
	"github.com/spf13/cobra"
)

func (r *runner) feedbackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Weekly cohort feedback",
	}
	cmd.AddCommand(r.feedbackSubmitCommand(), r.feedbackListCommand())
	return cmd
}

func (r *runner) feedbackSubmitCommand() *cobra.Command {
	var in cohort.FeedbackInput
	cmd := &cobra.Command{
		Use:   "submit <cohort-id>",
		Short: "Submit feedback for a week of a cohort you are enrolled in",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().IntVar(&in.Week, "week", 0, "week number")
	cmd.Flags().IntVar(&in.Rating, "rating", 0, "rating from 1 to 5")
	cmd.Flags().StringVar(&in.Comment, "comment", "", "comment")

	cmd.RunE = r.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		in.CohortID = args[0]
		fb, err := a.Mutations().SubmitFeedback.Use().Mutate(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "feedback %s recorded for week %d\n", fb.ID, fb.Week)
		return nil
	})
	return cmd
}

func (r *runner) feedbackListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <cohort-id>",
		Short: "List the feedback of a cohort",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = r.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		res := a.Queries().Feedback.Fetch(cmd.Context(), args[0])
		if res.Error != nil {
			return res.Error
		}
		return r.printer(cmd).feedback(res.Data)
	})
	return cmd
}
