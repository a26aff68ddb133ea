package linter

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
	"github.com/getumbrel/umbrel-linter/pkg/manifest"
	"github.com/getumbrel/umbrel-linter/pkg/yamlnode"
)

var manifestLog = logger.New("linter:manifest_validation")

// validateAppManifest checks umbrel-app.yml of the app stored in dir.
func (l *Linter) validateAppManifest(ctx context.Context, dir, appID string, lctx Context) []finding.Finding {
	file := path.Join(appID, constants.AppManifestFile)
	name := path.Join(dir, constants.AppManifestFile)

	if exists, isDir := l.fs.Exists(name); !exists || isDir {
		return []finding.Finding{finding.NewError(constants.MissingAppManifest,
			"umbrel-app.yml does not exist",
			`Every app needs a manifest file called "umbrel-app.yml" at the root of the app directory`,
			file)}
	}
	content, err := l.fs.Read(name)
	if err != nil {
		return []finding.Finding{finding.NewError(constants.FileReadError,
			"Failed to read umbrel-app.yml", err.Error(), file)}
	}

	node, syntax := yamlnode.Parse(content, file)
	if syntax != nil {
		return []finding.Finding{*syntax}
	}

	var findings []finding.Finding
	if l.github != nil {
		findings = append(findings, l.github.ValidateURLs(ctx, node, appID)...)
	}

	m, fieldErrs := manifest.ValidateApp(node)
	for _, fe := range fieldErrs {
		findings = append(findings, fieldErrorFinding(fe, file))
	}
	if m != nil {
		if fe := manifest.CheckVersion(m.Version); fe != nil {
			findings = append(findings, finding.NewInfo(constants.NonSemverAppVersion,
				fmt.Sprintf("Non-semantic version %q", m.Version),
				fieldErrorMessage(fe), file).WithPath(fe.Field))
		}
		if lctx.IsNewSubmission {
			findings = append(findings, submissionFindings(m, lctx, file)...)
		}
		if len(lctx.AllAppManifests) > 0 {
			if owner, taken := usedPorts(lctx.AllAppManifests, appID)[int64(m.Port)]; taken {
				findings = append(findings, finding.NewError(constants.DuplicateUIPort,
					fmt.Sprintf("Port %d is already used by %s", m.Port, owner),
					"Each app must use a unique port", file).WithPath("port"))
			}
		}
	}

	loc := yamlnode.NewLocator(content)
	for i := range findings {
		findings[i] = loc.Annotate(findings[i])
	}
	manifestLog.Printf("Manifest %s: %d findings", file, len(findings))
	return findings
}

func fieldErrorFinding(fe *manifest.FieldError, file string) finding.Finding {
	id := constants.SchemaValidationError
	if fe.Rule == manifest.RuleTaglinePeriod {
		id = constants.InvalidTagline
	}
	return finding.NewError(id, fe.Title(), fieldErrorMessage(fe), file).WithPath(fe.Field)
}

func fieldErrorMessage(fe *manifest.FieldError) string {
	if fe.Suggestion == "" {
		return fe.Reason
	}
	return fmt.Sprintf("%s. %s", strings.TrimSuffix(fe.Reason, "."), fe.Suggestion)
}

// submissionFindings are the extra rules for apps submitted for the first
// time.
func submissionFindings(m *manifest.AppManifest, lctx Context, file string) []finding.Finding {
	var findings []finding.Finding
	if lctx.PullRequestURL != "" && m.Submission != lctx.PullRequestURL {
		findings = append(findings, finding.NewError(constants.InvalidSubmissionField,
			fmt.Sprintf("Invalid submission field %q", m.Submission),
			fmt.Sprintf("The submission field must be set to the URL of this pull request: %s", lctx.PullRequestURL),
			file).WithPath("submission"))
	}
	if m.ReleaseNotes != "" {
		findings = append(findings, finding.NewError(constants.FilledOutReleaseNotesOnFirstSubmission,
			`"releaseNotes" needs to be empty for new app submissions`,
			`The "releaseNotes" field must be empty for new app submissions as it is being displayed to the user only in case of an update.`,
			file).WithPath("releaseNotes"))
	}
	if m.Icon != "" || len(m.Gallery) > 0 {
		field := "gallery"
		if m.Icon != "" {
			field = "icon"
		}
		findings = append(findings, finding.NewWarning(constants.FilledOutIconOrGalleryOnFirstSubmission,
			`"icon" and "gallery" needs to be empty for new app submissions`,
			`The "icon" and "gallery" fields must be empty for new app submissions as it is being created by the Umbrel team.`,
			file).WithPath(field))
	}
	return findings
}

type portOwner struct {
	id   string
	name string
	port int64
}

// usedPorts maps each port claimed by an app other than appID to its
// "Name (id)" label. When appID appears among the manifests, only the apps
// listed before it count, so a collision is reported on the later app. The
// first app listed keeps a port claimed twice.
func usedPorts(manifests []string, appID string) map[int64]string {
	owners := make([]*portOwner, len(manifests))
	current := len(manifests)
	for i, text := range manifests {
		node, syntax := yamlnode.Parse(text, constants.AppManifestFile)
		if syntax != nil || !node.IsMapping() {
			continue
		}
		id := strings.TrimSpace(node.Get("id").Text())
		if id == appID && current == len(manifests) {
			current = i
		}
		name := strings.TrimSpace(node.Get("name").Text())
		port, ok := portValue(node.Get("port"))
		if id == "" || name == "" || !ok || port == 0 {
			continue
		}
		owners[i] = &portOwner{id: id, name: name, port: port}
	}

	used := make(map[int64]string)
	for _, o := range owners[:current] {
		if o == nil || o.id == appID {
			continue
		}
		if _, taken := used[o.port]; !taken {
			used[o.port] = fmt.Sprintf("%s (%s)", o.name, o.id)
		}
	}
	return used
}

func portValue(n *yamlnode.Node) (int64, bool) {
	if v, ok := n.IntValue(); ok {
		return v, true
	}
	if s, ok := n.Str(); ok {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return v, err == nil
	}
	return 0, false
}
