package linter

import (
	"context"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
	"github.com/getumbrel/umbrel-linter/pkg/manifest"
	"github.com/getumbrel/umbrel-linter/pkg/yamlnode"
)

var storeLog = logger.New("linter:store_validation")

// LintStore checks the files at the root of the checkout: the store
// manifest, required for community stores, and the README.
func (l *Linter) LintStore(ctx context.Context, lctx Context) *finding.Report {
	report := finding.NewReport()
	report.Add(l.validateStoreManifest(lctx)...)

	if exists, isDir := l.fs.Exists(constants.ReadmeFile); !exists || isDir {
		report.Add(finding.NewWarning(constants.MissingReadme,
			"README.md does not exist",
			"A README.md file is highly recommended to tell users, how to install your App Store and what apps are available",
			constants.ReadmeFile))
	}

	storeLog.Printf("Linted store (%s): %d findings", lctx.storeType(), report.Len())
	return report
}

func (l *Linter) validateStoreManifest(lctx Context) []finding.Finding {
	file := constants.StoreManifestFile
	if exists, isDir := l.fs.Exists(file); !exists || isDir {
		if lctx.storeType() != constants.StoreTypeCommunity {
			return nil
		}
		return []finding.Finding{finding.NewError(constants.MissingStoreManifest,
			"umbrel-app-store.yml does not exist",
			"For community app stores, the file umbrel-app-store.yml is required",
			file)}
	}

	content, err := l.fs.Read(file)
	if err != nil {
		return []finding.Finding{finding.NewError(constants.FileReadError,
			"Failed to read umbrel-app-store.yml", err.Error(), file)}
	}
	node, syntax := yamlnode.Parse(content, file)
	if syntax != nil {
		return []finding.Finding{*syntax}
	}

	_, fieldErrs := manifest.ValidateStore(node)
	loc := yamlnode.NewLocator(content)
	findings := make([]finding.Finding, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		f := finding.NewError(constants.SchemaValidationError,
			"umbrel-app-store.yml validation failed", fieldErrorMessage(fe), file).WithPath(fe.Field)
		findings = append(findings, loc.Annotate(f))
	}
	return findings
}
