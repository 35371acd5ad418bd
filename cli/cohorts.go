package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Vayras/admin-frontend-sub001/app"
	"github.com/Vayras/admin-frontend-sub001/cohort"
	"github.com/Vayras/admin-frontend-sub001/validator"
	"github.com/spf13/cobra"
)

func (r *runner) cohortsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cohorts",
		Aliases: []string{"cohort"},
		Short:   "List, inspect, create, update and join cohorts",
	}
	cmd.AddCommand(
		r.cohortsListCommand(),
		r.cohortsShowCommand(),
		r.cohortsCreateCommand(),
		r.cohortsUpdateCommand(),
		r.cohortsJoinCommand(),
	)
	return cmd
}

func (r *runner) cohortsListCommand() *cobra.Command {
	var (
		typ    string
		season int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cohorts",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&typ, "type", "", "cohort type: "+typeList())
	cmd.Flags().IntVar(&season, "season", 0, "season number")

	cmd.RunE = r.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		filter := cohort.Filter{Type: cohort.Type(strings.ToUpper(typ)), Season: season}
		if err := validator.ValidateRequest(filter); err != nil {
			return err
		}
		res := a.Queries().Cohorts.Fetch(cmd.Context(), filter)
		if res.Error != nil {
			return res.Error
		}
		return r.printer(cmd).cohorts(res.Data)
	})
	return cmd
}

func (r *runner) cohortsShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one cohort",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = r.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		res := a.Queries().Cohort.Fetch(cmd.Context(), args[0])
		if res.Error != nil {
			return res.Error
		}
		return r.printer(cmd).cohort(res.Data)
	})
	return cmd
}

type cohortFlags struct {
	name        string
	typ         string
	season      int
	start       string
	end         string
	capacity    int
	description string
}

func (f *cohortFlags) register(cmd *cobra.Command, withTypeAndSeason bool) {
	cmd.Flags().StringVar(&f.name, "name", "", "display name")
	if withTypeAndSeason {
		cmd.Flags().StringVar(&f.typ, "type", "", "cohort type: "+typeList())
		cmd.Flags().IntVar(&f.season, "season", 0, "season number")
	}
	cmd.Flags().StringVar(&f.start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.capacity, "capacity", 0, "maximum number of students, 0 for no limit")
	cmd.Flags().StringVar(&f.description, "description", "", "free text description")
}

func (r *runner) cohortsCreateCommand() *cobra.Command {
	var f cohortFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a cohort (admin)",
		Args:  cobra.NoArgs,
	}
	f.register(cmd, true)

	cmd.RunE = r.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		start, err := parseDate("start", f.start)
		if err != nil {
			return err
		}
		end, err := parseDate("end", f.end)
		if err != nil {
			return err
		}
		created, err := a.Mutations().Create.Use().Mutate(cmd.Context(), cohort.CreateInput{
			Name:        f.name,
			Type:        cohort.Type(strings.ToUpper(f.typ)),
			Season:      f.season,
			StartDate:   start,
			EndDate:     end,
			Capacity:    f.capacity,
			Description: f.description,
		})
		if err != nil {
			return err
		}
		return r.printer(cmd).cohort(created)
	})
	return cmd
}

func (r *runner) cohortsUpdateCommand() *cobra.Command {
	var f cohortFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a cohort (admin)",
		Args:  cobra.ExactArgs(1),
	}
	f.register(cmd, false)

	cmd.RunE = r.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		in := cohort.UpdateInput{ID: args[0]}
		flags := cmd.Flags()
		if flags.Changed("name") {
			in.Name = &f.name
		}
		if flags.Changed("description") {
			in.Description = &f.description
		}
		if flags.Changed("capacity") {
			in.Capacity = &f.capacity
		}
		if flags.Changed("start") {
			start, err := parseDate("start", f.start)
			if err != nil {
				return err
			}
			in.StartDate = &start
		}
		if flags.Changed("end") {
			end, err := parseDate("end", f.end)
			if err != nil {
				return err
			}
			in.EndDate = &end
		}
		if in == (cohort.UpdateInput{ID: args[0]}) {
			return ErrNothingToUpdate
		}

		updated, err := a.Mutations().Update.Use().Mutate(cmd.Context(), in)
		if err != nil {
			return err
		}
		return r.printer(cmd).cohort(updated)
	})
	return cmd
}

func (r *runner) cohortsJoinCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join <id>",
		Short: "Enroll the signed-in user in a cohort",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = r.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		enrollment, err := a.Mutations().Join.Use().Mutate(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "joined %s on %s\n", enrollment.CohortID, date(enrollment.JoinedAt))
		return nil
	})
	return cmd
}

func parseDate(flag, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", flag, value)
	}
	return t, nil
}

func typeList() string {
	types := cohort.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
