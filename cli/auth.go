package cli

import (
	"fmt"

	"github.com/Vayras/admin-frontend-sub001/app"
	"github.com/Vayras/admin-frontend-sub001/cohort"
	"github.com/spf13/cobra"
)

func (r *runner) loginCommand() *cobra.Command {
	var creds cohort.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	cmd.RunE = r.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		if _, err := a.Mutations().Login.Use().Mutate(cmd.Context(), creds); err != nil {
			return err
		}
		claims, err := a.Session().Claims()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", claims.Email, claims.Role)
		return nil
	})
	return cmd
}

func (r *runner) logoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the session token",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = r.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		if !a.Session().IsAuthenticated() {
			fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
			return nil
		}
		a.Session().Logout(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "logged out")
		return nil
	})
	return cmd
}

func (r *runner) whoamiCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = r.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		res := a.Queries().Me.Fetch(cmd.Context(), struct{}{})
		if res.Error != nil {
			return res.Error
		}
		return r.printer(cmd).user(res.Data)
	})
	return cmd
}

func (r *runner) printer(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout(), format: r.flags.output}
}
