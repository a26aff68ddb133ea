package linter

import (
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/envutil"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
	"github.com/go-playground/validator/v10"
)

var configLog = logger.New("linter:config")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Environment variables overriding the network tuning defaults.
const (
	EnvRegistryTimeout = "ULINT_REGISTRY_TIMEOUT_MS"
	EnvGitHubTimeout   = "ULINT_GITHUB_TIMEOUT_MS"
	EnvConcurrency     = "ULINT_CONCURRENCY"
)

// Config controls a lint run.
type Config struct {
	CheckImageArchitectures bool `console:"header:Check Image Architectures"`
	// LogLevel is the lowest severity shown to the user. The linter always
	// collects everything; Filter applies the level.
	LogLevel   finding.Severity `validate:"oneof=error warning info" console:"header:Log Level"`
	StrictMode bool             `console:"header:Strict Mode"`
	// IgnorePatterns are path.Match globs matched against finding files.
	IgnorePatterns []string `validate:"dive,required" console:"header:Ignore Patterns,default:None"`

	RegistryTimeout time.Duration `validate:"gt=0" console:"header:Registry Timeout"`
	GitHubTimeout   time.Duration `validate:"gt=0" console:"header:GitHub Timeout"`
	Concurrency     int           `validate:"min=1,max=64" console:"header:Concurrency"`
	GitHubToken     string        `console:"-"`
	// Offline skips every check that needs the network.
	Offline bool `console:"header:Offline"`
}

// DefaultConfig returns the default configuration with the ULINT_*
// environment overrides applied.
func DefaultConfig() Config {
	return Config{
		CheckImageArchitectures: true,
		LogLevel:                finding.Warning,
		IgnorePatterns:          []string{},
		RegistryTimeout:         envutil.GetMillisFromEnv(EnvRegistryTimeout, constants.DefaultRegistryTimeout, 100, 60000, configLog),
		GitHubTimeout:           envutil.GetMillisFromEnv(EnvGitHubTimeout, constants.DefaultGitHubTimeout, 100, 60000, configLog),
		Concurrency:             envutil.GetIntFromEnv(EnvConcurrency, constants.DefaultConcurrency, 1, 64, configLog),
	}
}

// Validate checks the configuration, including that every ignore pattern
// is a well-formed glob.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", describe(err))
	}
	for _, p := range c.IgnorePatterns {
		if _, err := path.Match(p, ""); err != nil {
			return fmt.Errorf("invalid configuration: ignore pattern %q: %w", p, err)
		}
	}
	return nil
}

// Filter applies the log level and ignore patterns to a report.
func (c Config) Filter(r *finding.Report) *finding.Report {
	level := c.LogLevel
	if level == "" {
		level = finding.Warning
	}
	return r.Filter(level, func(f finding.Finding) bool {
		return !c.Ignored(f.File)
	})
}

// Ignored reports whether file matches one of the ignore patterns, either
// in full or by any leading directory.
func (c Config) Ignored(file string) bool {
	for _, p := range c.IgnorePatterns {
		for candidate := file; candidate != "." && candidate != ""; candidate = path.Dir(candidate) {
			if ok, _ := path.Match(p, candidate); ok {
				return true
			}
		}
	}
	return false
}

// Context describes where and why a lint runs.
type Context struct {
	// AppID is the app being linted, if any.
	AppID string
	// StoreType defaults to community when empty.
	StoreType       constants.StoreType `validate:"omitempty,oneof=official community"`
	IsNewSubmission bool
	PullRequestURL  string `validate:"omitempty,http_url"`
	// AllAppManifests holds the raw umbrel-app.yml text of every app in the
	// store, used for port collision checks.
	AllAppManifests []string
}

// Validate checks the context fields.
func (c Context) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid lint context: %w", describe(err))
	}
	return nil
}

func (c Context) storeType() constants.StoreType {
	if c.StoreType == "" {
		return constants.StoreTypeCommunity
	}
	return c.StoreType
}

// describe turns validator errors into one readable error per field.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			errs = append(errs, fmt.Errorf("%s: %v fails %s=%s", fe.Namespace(), fe.Value(), fe.Tag(), fe.Param()))
			continue
		}
		errs = append(errs, fmt.Errorf("%s: %v fails %s", fe.Namespace(), fe.Value(), fe.Tag()))
	}
	return errors.Join(errs...)
}
