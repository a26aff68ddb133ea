package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			check, _ := cmd.Flags().GetBool("check")
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			RunVersion(ctx, check, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return nil
		},
	}
	cmd.Flags().Bool("check", false, "Check GitHub for a newer release")
	return cmd
}

// RunVersion prints the version and optionally checks for a newer release.
func RunVersion(ctx context.Context, check bool, stdout, stderr io.Writer) {
	fmt.Fprintf(stdout, "%s version %s\n", constants.CLIName, constants.Version)
	if check {
		checkForUpdate(ctx, constants.Version, stderr)
	}
}
