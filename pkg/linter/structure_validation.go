package linter

import (
	"context"
	"fmt"
	"path"

	"github.com/getumbrel/umbrel-linter/pkg/compose"
	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/fileutil"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
)

// validateCompose runs the compose rules on docker-compose.yml of the app
// stored in dir. files lists the app directory.
func (l *Linter) validateCompose(ctx context.Context, dir, appID string, files []fileutil.Entry) []finding.Finding {
	file := path.Join(appID, constants.ComposeFile)
	name := path.Join(dir, constants.ComposeFile)

	if exists, isDir := l.fs.Exists(name); !exists || isDir {
		return []finding.Finding{finding.NewError(constants.MissingComposeFile,
			"docker-compose.yml does not exist",
			`Every app needs a docker compose file called "docker-compose.yml" at the root of the app directory`,
			file)}
	}
	content, err := l.fs.Read(name)
	if err != nil {
		return []finding.Finding{finding.NewError(constants.FileReadError,
			"Failed to read docker-compose.yml", err.Error(), file)}
	}

	return l.compose.Validate(ctx, compose.Input{
		Content:            content,
		AppID:              appID,
		Files:              files,
		CheckArchitectures: l.cfg.CheckImageArchitectures,
	})
}

// validateStructure reports directories that would vanish on clone because
// git does not track empty directories.
func validateStructure(appID string, files []fileutil.Entry) []finding.Finding {
	var findings []finding.Finding
	for _, dir := range fileutil.EmptyDirectories(files) {
		findings = append(findings, finding.NewError(constants.EmptyAppDataDirectory,
			fmt.Sprintf("Empty directory %q", dir.Path),
			fmt.Sprintf(`Please add a %q file to the directory %q. This is necessary to ensure the correct permissions of the directory after cloning!`, constants.GitkeepFile, dir.Path),
			path.Join(appID, dir.Path)))
	}
	return findings
}
