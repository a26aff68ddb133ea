// Package compose lints an app's docker-compose.yml.
//
// A document goes through two parses: the original text, and a copy in
// which every ${VAR} placeholder was replaced by a plausible value (see
// package mocker). Structural rules read the mocked tree so placeholders do
// not trip type checks; rules that reason about paths and image references
// read the original so placeholder paths are never mistaken for real ones.
package compose

import (
	"context"
	"path"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/fileutil"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
	"github.com/getumbrel/umbrel-linter/pkg/mocker"
	"github.com/getumbrel/umbrel-linter/pkg/registry"
	"github.com/getumbrel/umbrel-linter/pkg/yamlnode"
)

var composeLog = logger.New("compose:compose")

// Options configure a Validator.
type Options struct {
	// Registry resolves image architectures. Nil disables the check even
	// when an Input asks for it.
	Registry *registry.Client
	// Concurrency bounds parallel registry lookups within one document.
	Concurrency int
}

// Validator runs the compose rules. It is safe for concurrent use.
type Validator struct {
	registry    *registry.Client
	concurrency int
}

// NewValidator creates a Validator.
func NewValidator(opts Options) *Validator {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrency
	}
	return &Validator{registry: opts.Registry, concurrency: concurrency}
}

// Input is one compose document to lint.
type Input struct {
	Content string
	AppID   string
	// Files lists the app directory, relative to it.
	Files              []fileutil.Entry
	CheckArchitectures bool
}

// document is a parsed compose file plus the context rules need to build
// findings.
type document struct {
	appID string
	file  string
	root  *yamlnode.Node
}

// service is one entry of the services mapping whose value is a mapping.
type service struct {
	name   string
	config *yamlnode.Node
}

func (d *document) services() []service {
	var out []service
	for _, f := range d.root.Get("services").Fields() {
		if f.Value.IsMapping() {
			out = append(out, service{name: f.Key, config: f.Value})
		}
	}
	return out
}

func (d *document) newFinding(severity finding.Severity, id, title, message, propertyPath string) finding.Finding {
	return finding.New(id, severity, title, message, d.file).WithPath(propertyPath)
}

// Validate lints in.Content. Rules run in a fixed order and findings keep
// that order, with services in document order within each rule. A syntax
// error is the only finding when the document cannot be parsed.
func (v *Validator) Validate(ctx context.Context, in Input) []finding.Finding {
	file := path.Join(in.AppID, constants.ComposeFile)
	composeLog.Printf("Validating %s (%d bytes)", file, len(in.Content))

	original, syntaxErr := yamlnode.Parse(in.Content, file)
	if syntaxErr != nil {
		return []finding.Finding{*syntaxErr}
	}
	mocked, syntaxErr := yamlnode.Parse(mocker.Mock(in.Content), file)
	if syntaxErr != nil {
		return []finding.Finding{*syntaxErr}
	}

	orig := &document{appID: in.AppID, file: file, root: original}
	mock := &document{appID: in.AppID, file: file, root: mocked}

	var out []finding.Finding
	out = append(out, validateSchema(mock)...)
	out = append(out, v.validateImages(ctx, orig, in.CheckArchitectures)...)
	out = append(out, validateBooleans(mock)...)
	out = append(out, validateVolumes(orig, in.Files)...)
	out = append(out, validateSecurity(mock)...)
	out = append(out, validatePorts(mock)...)
	out = append(out, validateAppProxy(mock)...)
	out = append(out, validateRestartPolicies(mock)...)

	locator := yamlnode.NewLocator(in.Content)
	for i := range out {
		out[i] = locator.Annotate(out[i])
	}
	composeLog.Printf("Validated %s: %d findings", file, len(out))
	return out
}
