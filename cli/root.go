// Package cli implements the cohortctl commands on top of app.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/Vayras/admin-frontend-sub001/app"
	"github.com/Vayras/admin-frontend-sub001/session"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath  string
	apiURL      string
	sessionFile string
	output      string
	verbose     bool
	trace       bool
}

// runner opens an App per command invocation.
type runner struct {
	flags globalFlags
	extra []app.Option
}

// NewRootCommand builds the cohortctl command tree. opts are passed to every
// App the commands open.
func NewRootCommand(opts ...app.Option) *cobra.Command {
	r := &runner{extra: opts}

	root := &cobra.Command{
		Use:           "cohortctl",
		Short:         "Manage cohorts, enrollments and feedback",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOutput(r.flags.output)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&r.flags.configPath, "config", "c", "", "config file (yaml)")
	pf.StringVar(&r.flags.apiURL, "api-url", "", "API base URL, overrides http.base_url")
	pf.StringVar(&r.flags.sessionFile, "session-file", "", "session file, overrides storage.path and selects the file driver")
	pf.StringVarP(&r.flags.output, "output", "o", outputTable, "output format: table or json")
	pf.BoolVarP(&r.flags.verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&r.flags.trace, "trace", false, "print spans and metrics to stderr, overrides telemetry.enabled")

	root.AddCommand(
		r.loginCommand(),
		r.logoutCommand(),
		r.whoamiCommand(),
		r.cohortsCommand(),
		r.feedbackCommand(),
	)
	return root
}

// Execute runs cohortctl with os.Args and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		printError(cmd.ErrOrStderr(), err)
		return 1
	}
	return 0
}

func (r *runner) overrides() map[string]any {
	level := "error"
	if r.flags.verbose {
		level = "debug"
	}
	out := map[string]any{
		"logger": map[string]any{"level": level},
	}
	if r.flags.apiURL != "" {
		out["http"] = map[string]any{"base_url": r.flags.apiURL}
	}
	if r.flags.sessionFile != "" {
		out["storage"] = map[string]any{"driver": "file", "path": r.flags.sessionFile}
	}
	if r.flags.trace {
		out["telemetry"] = map[string]any{
			"enabled": true,
			"metrics": map[string]any{"enabled": true},
		}
		out["cache"] = map[string]any{"metrics_enabled": true}
		out["event"] = map[string]any{"metrics_enabled": true}
	}
	return out
}

// withApp wraps a command body with App startup and shutdown.
func (r *runner) withApp(fn func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(r.flags.configPath, r.overrides())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		opts := []app.Option{app.WithoutGC(), app.WithTelemetryWriter(cmd.ErrOrStderr())}
		// login and logout report their own outcome, not an ended session
		if name := cmd.Name(); name != "login" && name != "logout" {
			opts = append(opts, app.WithNavigator(loginHint(cmd.ErrOrStderr())))
		}
		opts = append(opts, r.extra...)
		a, err := app.New(ctx, cfg, opts...)
		if err != nil {
			return err
		}
		defer func() { _ = a.Shutdown(context.WithoutCancel(ctx)) }()

		return fn(cmd, args, a)
	}
}

// requireLogin fails fast instead of sending a request bound to be rejected.
func requireLogin(a *app.App) error {
	if !a.Session().IsAuthenticated() {
		return ErrNotLoggedIn
	}
	return nil
}

func loginHint(w io.Writer) session.Navigator {
	return session.NavigatorFunc(func(context.Context) {
		fmt.Fprintln(w, "session ended, run `cohortctl login` to sign in again")
	})
}
