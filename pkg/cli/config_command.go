package cli

import (
	"fmt"
	"io"

	"github.com/getumbrel/umbrel-linter/pkg/console"
	"github.com/getumbrel/umbrel-linter/pkg/linter"
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the default linter configuration",
		Long: `Show the configuration a lint run starts from, after environment overrides.

Environment variables:
  ` + linter.EnvRegistryTimeout + `   Registry request timeout in milliseconds
  ` + linter.EnvGitHubTimeout + `     GitHub request timeout in milliseconds
  ` + linter.EnvConcurrency + `           Number of apps linted in parallel`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunConfig(cmd.OutOrStdout())
		},
	}
}

// RunConfig prints the default configuration as a settings table.
func RunConfig(out io.Writer) error {
	cfg := linter.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Fprint(out, console.RenderSettings("Linter Configuration", cfg))
	return nil
}
