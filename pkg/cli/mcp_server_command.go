package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/getumbrel/umbrel-linter/pkg/console"
	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var mcpServerLog = logger.New("cli:mcp_server")

// mcpSlog carries structured tool call logs through the same DEBUG switch.
var mcpSlog = slog.New(logger.NewSlogHandler(mcpServerLog))

// NewMCPServerCommand creates the mcp-server command
func NewMCPServerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Run an MCP server exposing the linter as a tool",
		Long: `Run a Model Context Protocol server over stdio.

The server exposes a single "lint" tool that lints an app store checkout or a
single app and returns the JSON report. Logs go to stderr; stdout carries the
protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return RunMCPServer(ctx)
		},
	}
	return cmd
}

// LintToolInput is the argument object of the lint tool.
type LintToolInput struct {
	Path              string   `json:"path" jsonschema:"directory of an app store checkout or of a single app"`
	App               string   `json:"app,omitempty" jsonschema:"lint only the app with this id"`
	StoreType         string   `json:"store_type,omitempty" jsonschema:"official or community (default community)"`
	NewSubmission     bool     `json:"new_submission,omitempty" jsonschema:"apply the rules for apps submitted for the first time"`
	PullRequestURL    string   `json:"pr_url,omitempty" jsonschema:"URL of the pull request submitting the app"`
	SkipArchitectures bool     `json:"skip_architectures,omitempty" jsonschema:"skip the image architecture check"`
	Offline           bool     `json:"offline,omitempty" jsonschema:"skip every check that needs network access"`
	Ignore            []string `json:"ignore,omitempty" jsonschema:"drop findings for files matching these globs"`
}

// RunMCPServer serves the lint tool on stdio until ctx is done or the client
// disconnects.
func RunMCPServer(ctx context.Context) error {
	fmt.Fprintln(os.Stderr, console.FormatInfoMessage("Starting MCP server on stdio"))
	return newMCPServer().Run(ctx, &mcp.StdioTransport{})
}

func newMCPServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: constants.CLIName, Version: constants.Version}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "lint",
		Description: "Lint an Umbrel app store checkout or a single app. Returns every finding with its severity, file and location.",
	}, lintTool)
	return server
}

func lintTool(ctx context.Context, req *mcp.CallToolRequest, in LintToolInput) (*mcp.CallToolResult, finding.ReportJSON, error) {
	mcpSlog.Info("lint tool called", "path", in.Path, "app", in.App, "offline", in.Offline)
	if in.Path == "" {
		return nil, finding.ReportJSON{}, fmt.Errorf("path is required")
	}
	session, err := newLintSession(LintConfig{
		Path:              in.Path,
		AppID:             in.App,
		LogLevel:          string(finding.Info),
		SkipArchitectures: in.SkipArchitectures,
		NewSubmission:     in.NewSubmission,
		PullRequestURL:    in.PullRequestURL,
		StoreType:         in.StoreType,
		Offline:           in.Offline,
		IgnorePatterns:    in.Ignore,
	})
	if err != nil {
		return nil, finding.ReportJSON{}, err
	}
	report := session.run(ctx)
	mcpSlog.Info("lint tool finished", "errors", report.Errors(), "warnings", report.Warnings(), "info", report.Infos())
	return nil, report.JSON(), nil
}
