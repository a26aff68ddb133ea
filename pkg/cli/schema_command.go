package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/getumbrel/umbrel-linter/pkg/console"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"
)

var schemaLog = logger.New("cli:schema_command")

// NewSchemaCommand creates the schema command
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the lint report",
		Long: `Print the JSON schema describing the output of lint --format json.

Examples:
  umbrel-linter schema                     # Print to stdout
  umbrel-linter schema -o report.schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			return RunSchema(output, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write the schema to this file instead of stdout")
	return cmd
}

// ReportSchema returns the JSON schema of finding.ReportJSON.
func ReportSchema() ([]byte, error) {
	schema, err := jsonschema.For[finding.ReportJSON](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build report schema: %w", err)
	}
	schema.Title = "Umbrel linter report"
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report schema: %w", err)
	}
	return append(data, '\n'), nil
}

// RunSchema writes the report schema to output, or to out when output is empty.
func RunSchema(output string, out io.Writer) error {
	data, err := ReportSchema()
	if err != nil {
		return err
	}
	if output == "" {
		_, err = out.Write(data)
		return err
	}
	schemaLog.Printf("Writing report schema to %s", output)
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	fmt.Fprintln(os.Stderr, console.FormatSuccessMessage("Wrote report schema to "+output))
	return nil
}
