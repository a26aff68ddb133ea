// Package linter orchestrates a lint run over an Umbrel app store checkout:
// the store manifest, then each app's manifest, compose file and directory
// layout. Every problem becomes a finding in the returned report; the
// linter itself never fails.
//
// The checks live in separate files:
//   - store_validation.go: umbrel-app-store.yml and README.md
//   - manifest_validation.go: umbrel-app.yml, submission rules, port collisions
//   - structure_validation.go: docker-compose.yml and empty directories
package linter

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/getumbrel/umbrel-linter/pkg/compose"
	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
	"github.com/getumbrel/umbrel-linter/pkg/githubcheck"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
	"github.com/getumbrel/umbrel-linter/pkg/registry"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"
)

var linterLog = logger.New("linter:linter")

// Linter lints the apps of one store checkout. It is safe for concurrent
// use; the network caches it holds live as long as the Linter.
type Linter struct {
	cfg      Config
	fs       FileSystem
	rootName string
	registry *registry.Client
	github   *githubcheck.Validator
	compose  *compose.Validator
}

// Option customizes a Linter.
type Option func(*Linter)

// WithFileSystem sets the store checkout to read.
func WithFileSystem(fsys FileSystem) Option {
	return func(l *Linter) { l.fs = fsys }
}

// WithRoot reads the checkout from dir on disk. The directory name is used
// as app id when dir is itself an app.
func WithRoot(dir string) Option {
	return func(l *Linter) {
		l.fs = OSFileSystem{Root: dir}
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		l.rootName = filepath.Base(dir)
	}
}

// WithRootName names the checkout root for single-app runs.
func WithRootName(name string) Option {
	return func(l *Linter) { l.rootName = name }
}

// WithRegistryClient replaces the registry client built from Config.
func WithRegistryClient(c *registry.Client) Option {
	return func(l *Linter) { l.registry = c }
}

// WithGitHubValidator replaces the GitHub validator built from Config.
func WithGitHubValidator(v *githubcheck.Validator) Option {
	return func(l *Linter) { l.github = v }
}

// New creates a Linter. Without WithRoot or WithFileSystem it reads the
// current directory.
func New(cfg Config, opts ...Option) (*Linter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := &Linter{cfg: cfg}
	for _, opt := range opts {
		opt(l)
	}
	if l.fs == nil {
		WithRoot(".")(l)
	}

	if cfg.Offline {
		l.registry = nil
		l.github = nil
	} else {
		if l.registry == nil {
			l.registry = registry.NewClient(registry.Options{Timeout: cfg.RegistryTimeout})
		}
		if l.github == nil {
			gh, err := githubcheck.New(githubcheck.Options{Token: cfg.GitHubToken, Timeout: cfg.GitHubTimeout})
			if err != nil {
				return nil, fmt.Errorf("create GitHub validator: %w", err)
			}
			l.github = gh
		}
	}
	l.compose = compose.NewValidator(compose.Options{Registry: l.registry, Concurrency: cfg.Concurrency})

	linterLog.Printf("Created linter: offline=%t, architectures=%t, concurrency=%d",
		cfg.Offline, cfg.CheckImageArchitectures, cfg.Concurrency)
	return l, nil
}

// Config returns the configuration the Linter was created with.
func (l *Linter) Config() Config { return l.cfg }

// LintApp lints the app in the directory named appID.
func (l *Linter) LintApp(ctx context.Context, appID string, lctx Context) *finding.Report {
	return l.lintApp(ctx, appID, appID, lctx)
}

// lintApp lints the app stored in dir, reporting files under appID.
func (l *Linter) lintApp(ctx context.Context, dir, appID string, lctx Context) *finding.Report {
	linterLog.Printf("Linting app %s in %s", appID, dir)
	report := finding.NewReport()

	if exists, isDir := l.fs.Exists(dir); !exists || !isDir {
		report.Add(finding.NewError(constants.AppDirectoryNotFound,
			fmt.Sprintf("App directory not found: %s", appID),
			fmt.Sprintf("App with id %s does not exist", appID),
			appID))
		return report
	}

	files, err := l.fs.List(dir)
	if err != nil {
		linterLog.Printf("Could not list %s: %v", dir, err)
	}

	var manifestFindings, composeFindings []finding.Finding
	var wg conc.WaitGroup
	wg.Go(func() { manifestFindings = l.validateAppManifest(ctx, dir, appID, lctx) })
	wg.Go(func() { composeFindings = l.validateCompose(ctx, dir, appID, files) })
	wg.Wait()

	report.Add(manifestFindings...)
	report.Add(composeFindings...)
	report.Add(validateStructure(appID, files)...)

	linterLog.Printf("Linted app %s: %d errors, %d warnings, %d info",
		appID, report.Errors(), report.Warnings(), report.Infos())
	return report
}

// LintAll lints the whole checkout. A checkout whose root holds an
// umbrel-app.yml is linted as a single app; otherwise the store files come
// first, followed by every app directory in name order.
func (l *Linter) LintAll(ctx context.Context, lctx Context) *finding.Report {
	if exists, isDir := l.fs.Exists(constants.AppManifestFile); exists && !isDir {
		appID := lctx.AppID
		if appID == "" {
			appID = l.rootName
		}
		linterLog.Printf("Root is a single app: %s", appID)
		return l.lintApp(ctx, ".", appID, lctx)
	}

	report := l.LintStore(ctx, lctx)

	apps := l.appDirectories()
	if len(lctx.AllAppManifests) == 0 {
		lctx.AllAppManifests = l.readManifests(apps)
	}

	reports := make([]*finding.Report, len(apps))
	p := pool.New().WithMaxGoroutines(l.cfg.Concurrency)
	for i, appID := range apps {
		p.Go(func() {
			appCtx := lctx
			appCtx.AppID = appID
			reports[i] = l.LintApp(ctx, appID, appCtx)
		})
	}
	p.Wait()

	for _, r := range reports {
		report.Merge(r)
	}
	return report
}

// appDirectories returns the non-hidden root directories holding an app
// manifest, sorted by name.
func (l *Linter) appDirectories() []string {
	entries, err := l.fs.ReadDir(".")
	if err != nil {
		linterLog.Printf("Could not read store root: %v", err)
		return nil
	}
	var apps []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Path, ".") {
			continue
		}
		if exists, isDir := l.fs.Exists(path.Join(e.Path, constants.AppManifestFile)); exists && !isDir {
			apps = append(apps, e.Path)
		}
	}
	linterLog.Printf("Found %d apps", len(apps))
	return apps
}

func (l *Linter) readManifests(apps []string) []string {
	manifests := make([]string, 0, len(apps))
	for _, appID := range apps {
		text, err := l.fs.Read(path.Join(appID, constants.AppManifestFile))
		if err != nil {
			continue
		}
		manifests = append(manifests, text)
	}
	return manifests
}
