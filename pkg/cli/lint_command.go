package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/getumbrel/umbrel-linter/pkg/console"
	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
	"github.com/getumbrel/umbrel-linter/pkg/linter"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
	"github.com/spf13/cobra"
)

var lintLog = logger.New("cli:lint_command")

// ErrLintFailed reports a run whose findings fail it. The findings have
// already been printed when it is returned.
var ErrLintFailed = errors.New("linting failed")

// LintConfig holds configuration for lint command execution
type LintConfig struct {
	Path              string
	AppID             string
	LogLevel          string
	Strict            bool
	SkipArchitectures bool
	NewSubmission     bool
	PullRequestURL    string
	StoreType         string
	Format            string
	Verbose           bool
	Offline           bool
	GitHubToken       string
	IgnorePatterns    []string
	Watch             bool
}

// NewLintCommand creates the lint command
func NewLintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [path]",
		Short: "Lint an Umbrel app store or a single app",
		Long: `Lint an Umbrel app store checkout, or a single app directory.

The path defaults to the current directory. A directory holding an
umbrel-app.yml is linted as a single app; any other directory is linted as
an app store: the store files first, then every app directory in it.

Registry and GitHub lookups need network access. Use --offline to skip them
and --skip-architectures to skip only the image architecture check.

Examples:
  ` + constants.CLIName + ` lint                                # Lint the store in the current directory
  ` + constants.CLIName + ` lint ./umbrel-apps --app bitcoin     # Lint one app of a store
  ` + constants.CLIName + ` lint --new-submission --pr-url URL   # Apply the first submission rules
  ` + constants.CLIName + ` lint --format json                  # Machine readable output
  ` + constants.CLIName + ` lint --ignore 'legacy-*'            # Hide findings for matching paths
  ` + constants.CLIName + ` lint --watch                        # Re-lint whenever a file changes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID, _ := cmd.Flags().GetString("app")
			logLevel, _ := cmd.Flags().GetString("log-level")
			strict, _ := cmd.Flags().GetBool("strict")
			skipArchitectures, _ := cmd.Flags().GetBool("skip-architectures")
			newSubmission, _ := cmd.Flags().GetBool("new-submission")
			prURL, _ := cmd.Flags().GetString("pr-url")
			storeType, _ := cmd.Flags().GetString("store-type")
			format, _ := cmd.Flags().GetString("format")
			verbose, _ := cmd.Flags().GetBool("verbose")
			offline, _ := cmd.Flags().GetBool("offline")
			token, _ := cmd.Flags().GetString("github-token")
			ignore, _ := cmd.Flags().GetStringArray("ignore")
			watch, _ := cmd.Flags().GetBool("watch")

			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			config := LintConfig{
				Path:              path,
				AppID:             appID,
				LogLevel:          logLevel,
				Strict:            strict,
				SkipArchitectures: skipArchitectures,
				NewSubmission:     newSubmission,
				PullRequestURL:    prURL,
				StoreType:         storeType,
				Format:            format,
				Verbose:           verbose,
				Offline:           offline,
				GitHubToken:       token,
				IgnorePatterns:    ignore,
				Watch:             watch,
			}
			return RunLint(cmd.Context(), config, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringP("app", "a", "", "Lint only the app with this id")
	cmd.Flags().StringP("log-level", "l", string(finding.Warning), "Lowest severity to show (error, warning, info)")
	cmd.Flags().BoolP("strict", "s", false, "Fail on warnings as well as errors")
	cmd.Flags().Bool("skip-architectures", false, "Skip the image architecture check")
	cmd.Flags().Bool("new-submission", false, "Apply the rules for apps submitted for the first time")
	cmd.Flags().String("pr-url", "", "URL of the pull request submitting the app")
	cmd.Flags().String("store-type", string(constants.StoreTypeCommunity), "Type of app store (official, community)")
	cmd.Flags().StringP("format", "f", string(console.FormatText), "Output format (text, json, table)")
	cmd.Flags().Bool("offline", false, "Skip every check that needs network access")
	cmd.Flags().String("github-token", "", "GitHub token for API checks (default: gh auth token, GH_TOKEN or GITHUB_TOKEN)")
	cmd.Flags().StringArray("ignore", nil, "Hide findings for files matching this glob (repeatable)")
	cmd.Flags().BoolP("watch", "w", false, "Re-lint whenever a file below path changes")

	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{string(console.FormatText), string(console.FormatJSON), string(console.FormatTable)}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("log-level", cobra.FixedCompletions(
		[]string{string(finding.Error), string(finding.Warning), string(finding.Info)}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("store-type", cobra.FixedCompletions(
		[]string{string(constants.StoreTypeOfficial), string(constants.StoreTypeCommunity)}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// RunLint executes the lint command. It returns ErrLintFailed when the
// findings fail the run.
func RunLint(ctx context.Context, config LintConfig, stdout, stderr io.Writer) error {
	lintLog.Printf("Running lint: path=%s, app=%s, format=%s, offline=%t", config.Path, config.AppID, config.Format, config.Offline)
	if ctx == nil {
		ctx = context.Background()
	}

	if config.Format == "" {
		config.Format = string(console.FormatText)
	}
	format, err := console.ParseFormat(config.Format)
	if err != nil {
		return err
	}
	session, err := newLintSession(config)
	if err != nil {
		return err
	}

	if !config.Watch {
		return session.report(ctx, format, stdout, stderr)
	}
	return watchAndRun(ctx, config.Path, stderr, func() {
		err := session.refresh()
		if err == nil {
			err = session.report(ctx, format, stdout, stderr)
		}
		if err != nil && !errors.Is(err, ErrLintFailed) {
			fmt.Fprintln(stderr, console.FormatErrorMessage(err.Error()))
		}
	})
}

// lintSession is a configured linter for one lint command or tool call.
type lintSession struct {
	config LintConfig
	cfg    linter.Config
	lctx   linter.Context
	linter *linter.Linter
}

func newLintSession(config LintConfig) (*lintSession, error) {
	info, err := os.Stat(config.Path)
	if err != nil {
		return nil, fmt.Errorf("directory '%s' does not exist", config.Path)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("'%s' is not a directory", config.Path)
	}

	cfg, lctx, err := buildLintSettings(config)
	if err != nil {
		return nil, err
	}
	s := &lintSession{config: config, cfg: cfg, lctx: lctx}
	if err := s.refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// refresh replaces the linter, dropping the registry and GitHub lookups
// cached by earlier runs.
func (s *lintSession) refresh() error {
	l, err := linter.New(s.cfg, linter.WithRoot(s.config.Path))
	if err != nil {
		return err
	}
	s.linter = l
	return nil
}

// buildLintSettings turns command line options into linter settings.
func buildLintSettings(config LintConfig) (linter.Config, linter.Context, error) {
	cfg := linter.DefaultConfig()

	level := config.LogLevel
	if level == "" {
		level = string(finding.Warning)
	}
	severity, err := finding.ParseSeverity(level)
	if err != nil {
		return cfg, linter.Context{}, fmt.Errorf("invalid --log-level: %w", err)
	}
	cfg.LogLevel = severity
	cfg.StrictMode = config.Strict
	cfg.CheckImageArchitectures = !config.SkipArchitectures
	if config.IgnorePatterns != nil {
		cfg.IgnorePatterns = config.IgnorePatterns
	}
	cfg.Offline = config.Offline
	if !config.Offline {
		cfg.GitHubToken = resolveGitHubToken(config.GitHubToken)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, linter.Context{}, err
	}

	lctx := linter.Context{
		AppID:           config.AppID,
		StoreType:       constants.StoreType(config.StoreType),
		IsNewSubmission: config.NewSubmission,
		PullRequestURL:  config.PullRequestURL,
	}
	if err := lctx.Validate(); err != nil {
		return cfg, lctx, err
	}
	return cfg, lctx, nil
}

// run lints and returns the report without ignored findings.
func (s *lintSession) run(ctx context.Context) *finding.Report {
	var report *finding.Report
	if s.config.AppID != "" {
		report = s.linter.LintApp(ctx, s.config.AppID, s.lctx)
	} else {
		report = s.linter.LintAll(ctx, s.lctx)
	}
	return report.Filter(finding.Info, func(f finding.Finding) bool {
		return !s.cfg.Ignored(f.File)
	})
}

func (s *lintSession) report(ctx context.Context, format console.Format, stdout, stderr io.Writer) error {
	if format != console.FormatJSON {
		if s.config.AppID != "" {
			fmt.Fprintln(stderr, console.FormatInfoMessage("Linting app: "+s.config.AppID))
		} else {
			dir := s.config.Path
			if abs, err := filepath.Abs(dir); err == nil {
				dir = abs
			}
			fmt.Fprintln(stderr, console.FormatInfoMessage("Linting directory: "+dir))
		}
	}

	report := s.run(ctx)
	shown := s.cfg.Filter(report)
	output, err := console.RenderReport(report, shown, format, s.config.Verbose)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, output)

	if format != console.FormatJSON {
		if fixable := countFixable(shown); fixable > 0 {
			fmt.Fprintln(stderr)
			fmt.Fprintln(stderr, console.FormatInfoMessage(fmt.Sprintf("Tip: %d of these findings have stable ids that app fixers can act on (see --format json)", fixable)))
		}
	}

	lintLog.Printf("Lint finished: errors=%d, warnings=%d, info=%d", report.Errors(), report.Warnings(), report.Infos())
	if report.Failed(s.cfg.StrictMode) {
		return ErrLintFailed
	}
	return nil
}

func countFixable(r *finding.Report) int {
	n := 0
	for _, f := range r.Findings() {
		if slices.Contains(constants.FixableFindingIDs, f.ID) {
			n++
		}
	}
	return n
}
