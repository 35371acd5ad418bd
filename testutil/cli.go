package testutil

import (
	"bytes"

	"github.com/spf13/cobra"
)

// RunCLI executes cmd with args and returns what it wrote to stdout and
// stderr.
//
//	out, err := testutil.RunCLI(cli.NewRootCommand(), "cohorts", "list")
func RunCLI(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
