package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/getumbrel/umbrel-linter/pkg/cli"
	"github.com/getumbrel/umbrel-linter/pkg/console"
	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   constants.CLIName,
	Short: "Lint Umbrel app stores and Umbrel apps",
	Long: `Lint Umbrel app stores and Umbrel apps.

Checks umbrel-app.yml manifests, docker-compose.yml files and the app
directory layout against the rules of the Umbrel app store, and reports every
problem found as an error, warning or info message.

Common Tasks:
  ` + constants.CLIName + ` lint                  # Lint the app store in the current directory
  ` + constants.CLIName + ` lint . --app bitcoin  # Lint a single app
  ` + constants.CLIName + ` schema                # JSON schema of the lint report
  ` + constants.CLIName + ` mcp-server            # Expose the linter to MCP clients`,
	Version:       constants.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var lintCmd = cli.NewLintCommand()

var versionCmd = cli.NewVersionCommand()

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "lint", Title: "Linting Commands:"},
		&cobra.Group{ID: "utilities", Title: "Utilities:"},
	)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show line numbers and more detail")
	rootCmd.SetVersionTemplate(constants.CLIName + " version {{.Version}}\n")

	lintCmd.GroupID = "lint"

	schemaCmd := cli.NewSchemaCommand()
	schemaCmd.GroupID = "utilities"
	configCmd := cli.NewConfigCommand()
	configCmd.GroupID = "utilities"
	mcpServerCmd := cli.NewMCPServerCommand()
	mcpServerCmd.GroupID = "utilities"

	rootCmd.AddCommand(lintCmd, configCmd, schemaCmd, mcpServerCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// Lint failures have already been reported with the findings.
		if !errors.Is(err, cli.ErrLintFailed) {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		}
		os.Exit(1)
	}
}
