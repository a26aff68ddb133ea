package compose

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/fileutil"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
)

var (
	appDataDirRef = regexp.MustCompile(`\$\{?APP_DATA_DIR\}?`)
	// bare data dir as the source of a "source:target" volume
	bareShortMount = regexp.MustCompile(`\$\{?APP_DATA_DIR\}?/?:`)
	shortSubpath   = regexp.MustCompile(`\$\{?APP_DATA_DIR\}?/?(.*?):`)
	bareLongSource = regexp.MustCompile(`\$\{?APP_DATA_DIR\}?/?$`)
	longSubpath    = regexp.MustCompile(`\$\{?APP_DATA_DIR\}?/?(.*?)$`)
)

// validateVolumes checks mounts below ${APP_DATA_DIR}. It reads the
// original document so that subpaths are compared literally.
func validateVolumes(d *document, files []fileutil.Entry) []finding.Finding {
	var out []finding.Finding
	for _, svc := range d.services() {
		propertyPath := fmt.Sprintf("services.%s.volumes", svc.name)
		for _, volume := range svc.config.Get("volumes").Items() {
			switch {
			case volume.IsString():
				spec := volume.Text()
				if bareShortMount.MatchString(spec) {
					out = append(out, d.newFinding(finding.Warning, constants.InvalidAppDataDirVolumeMount,
						fmt.Sprintf("Volume %q", spec),
						`Volumes should not be mounted directly into the "${APP_DATA_DIR}" directory! Please use a subdirectory like "${APP_DATA_DIR}/data" instead.`,
						propertyPath))
				}
				if f, ok := missingMount(d, files, spec, shortSubpath.FindStringSubmatch(spec), propertyPath); ok {
					out = append(out, f)
				}
			case volume.IsMapping():
				source := volume.Get("source").Text()
				target := volume.Get("target").Text()
				display := source + ":" + target
				if bareLongSource.MatchString(source) {
					out = append(out, d.newFinding(finding.Warning, constants.InvalidAppDataDirVolumeMount,
						fmt.Sprintf("Volume %q", display),
						`Volumes should not be mounted directly into the "${APP_DATA_DIR}" directory! Please use a subdirectory like "source: ${APP_DATA_DIR}/data" and "target: /some/dir" instead.`,
						propertyPath))
				}
				if f, ok := missingMount(d, files, display, longSubpath.FindStringSubmatch(source), propertyPath); ok {
					out = append(out, f)
				}
			}
		}
	}
	return out
}

// missingMount reports a subpath of the data dir that is absent from the
// app directory. match is the subpath regexp result for the volume source.
func missingMount(d *document, files []fileutil.Entry, display string, match []string, propertyPath string) (finding.Finding, bool) {
	if !appDataDirRef.MatchString(display) || len(match) < 2 {
		return finding.Finding{}, false
	}
	rel := strings.TrimSpace(match[1])
	if rel == "" || fileutil.ContainsPath(files, rel) || fileutil.ContainsPath(files, d.appID+"/"+rel) {
		return finding.Finding{}, false
	}
	mounted := "/" + d.appID + "/" + rel
	return d.newFinding(finding.Info, constants.MissingFileOrDirectory,
		fmt.Sprintf("Mounted file/directory %q doesn't exist", mounted),
		fmt.Sprintf("The volume %q tries to mount the file/directory %q, but it is not present. This can lead to permission errors!", display, mounted),
		propertyPath), true
}
