package manifest

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// CheckVersion returns a FieldError when version is not a semantic version.
// Umbrel accepts any non-empty version string, so callers report this as
// advice rather than a failure.
func CheckVersion(version string) *FieldError {
	v := strings.TrimSpace(version)
	if v == "" {
		return nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if semver.IsValid(v) {
		return nil
	}
	return NewFieldError("version", RuleSemver, version,
		fmt.Sprintf("The version %q is not a semantic version", version),
		"Use MAJOR.MINOR.PATCH so updates are ordered predictably")
}
