package cli

import (
	"strings"

	"github.com/getumbrel/umbrel-linter/pkg/logger"
	"golang.org/x/mod/semver"
)

var semverLog = logger.New("cli:semver")

// canonicalVersion returns v in the "vMAJOR.MINOR.PATCH[-pre]" form, or ""
// when v is not a semantic version. The leading "v" is optional.
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

// isReleasedVersion is false for development builds such as "dev".
func isReleasedVersion(v string) bool {
	return canonicalVersion(v) != ""
}

// isNewerVersion reports whether candidate is a later release than current.
// Anything that is not a semantic version is never newer.
func isNewerVersion(candidate, current string) bool {
	c1, c2 := canonicalVersion(candidate), canonicalVersion(current)
	if c1 == "" || c2 == "" {
		return false
	}
	newer := semver.Compare(c1, c2) > 0
	semverLog.Printf("Version comparison: %s vs %s = isNewer:%v", c1, c2, newer)
	return newer
}
