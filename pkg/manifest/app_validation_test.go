//go:build !integration

package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getumbrel/umbrel-linter/pkg/yamlnode"
)

const validAppManifest = `manifestVersion: 1.1
id: bitcoin
name: Bitcoin Node
tagline: Run your personal node powered by Bitcoin Core
category: bitcoin
version: "27.1"
port: 2100
description: Take control of your digital sovereignty.
developer: Bitcoin Core
submitter: Umbrel
submission: https://github.com/getumbrel/umbrel/pull/1
support: https://github.com/getumbrel/umbrel-apps/issues
website: https://bitcoincore.org
path: ""
gallery: [1.jpg, 2.jpg]
dependencies: []
permissions: [STORAGE_DOWNLOADS]
releaseNotes: ""
installSize: 0
widgets: [{id: stats, type: four-stats}]
defaultUsername: ""
defaultPassword: ""
torOnly: false
backupIgnore: [data/blocks/*]
repo: https://github.com/bitcoin/bitcoin
`

func parse(t *testing.T, text string) *yamlnode.Node {
	t.Helper()
	node, f := yamlnode.Parse(text, "umbrel-app.yml")
	require.Nil(t, f)
	return node
}

// withField replaces or appends a top-level "key: value" line.
func withField(base, key, value string) string {
	var out []string
	replaced := false
	for _, line := range strings.Split(base, "\n") {
		if strings.HasPrefix(line, key+":") {
			out = append(out, key+": "+value)
			replaced = true
			continue
		}
		out = append(out, line)
	}
	if !replaced {
		out = append(out, key+": "+value)
	}
	return strings.Join(out, "\n")
}

func withoutField(base, key string) string {
	var out []string
	for _, line := range strings.Split(base, "\n") {
		if strings.HasPrefix(line, key+":") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func TestValidateAppValid(t *testing.T) {
	m, errs := ValidateApp(parse(t, validAppManifest))
	require.Empty(t, errs)
	require.NotNil(t, m)

	assert.Equal(t, "bitcoin", m.ID)
	assert.InDelta(t, 1.1, m.ManifestVersion, 0.0001)
	assert.Equal(t, 2100, m.Port)
	assert.Equal(t, []string{"1.jpg", "2.jpg"}, m.Gallery)
	assert.Equal(t, []string{"STORAGE_DOWNLOADS"}, m.Permissions)
	require.NotNil(t, m.TorOnly)
	assert.False(t, *m.TorOnly)
	require.Len(t, m.Widgets, 1)
	assert.Equal(t, "stats", m.Widgets[0]["id"])
}

func TestValidateAppFieldErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		field    string
		rule     Rule
	}{
		{name: "tagline with trailing period", manifest: withField(validAppManifest, "tagline", "A great app."), field: "tagline", rule: RuleTaglinePeriod},
		{name: "self dependency", manifest: withField(validAppManifest, "dependencies", "[lightning, bitcoin]"), field: "dependencies", rule: RuleSelfDependency},
		{name: "unsupported manifest version", manifest: withField(validAppManifest, "manifestVersion", "2"), field: "manifestVersion", rule: RuleEnum},
		{name: "reserved id prefix", manifest: withField(validAppManifest, "id", "umbrel-app-store-bitcoin"), field: "id", rule: RuleReservedPrefix},
		{name: "id too long", manifest: withField(validAppManifest, "id", strings.Repeat("a", 51)), field: "id", rule: RuleLength},
		{name: "unknown category", manifest: withField(validAppManifest, "category", "games"), field: "category", rule: RuleEnum},
		{name: "port out of range", manifest: withField(validAppManifest, "port", "70000"), field: "port", rule: RuleRange},
		{name: "port wrong type", manifest: withField(validAppManifest, "port", "[1]"), field: "port", rule: RuleType},
		{name: "empty description", manifest: withField(validAppManifest, "description", `""`), field: "description", rule: RuleLength},
		{name: "bad website", manifest: withField(validAppManifest, "website", "not a url"), field: "website", rule: RuleURL},
		{name: "ftp support url", manifest: withField(validAppManifest, "support", "ftp://example.com"), field: "support", rule: RuleURL},
		{name: "relative path", manifest: withField(validAppManifest, "path", "admin"), field: "path", rule: RulePath},
		{name: "unknown permission", manifest: withField(validAppManifest, "permissions", "[GPU, ROOT]"), field: "permissions.1", rule: RuleEnum},
		{name: "negative install size", manifest: withField(validAppManifest, "installSize", "-1"), field: "installSize", rule: RuleRange},
		{name: "version not a string", manifest: withField(validAppManifest, "version", "1.5"), field: "version", rule: RuleType},
		{name: "missing name", manifest: withoutField(validAppManifest, "name"), field: "name", rule: RuleRequired},
		{name: "missing path", manifest: withoutField(validAppManifest, "path"), field: "path", rule: RuleRequired},
		{name: "release notes too long", manifest: withField(validAppManifest, "releaseNotes", strings.Repeat("x", 5001)), field: "releaseNotes", rule: RuleLength},
		{name: "gallery element not string", manifest: withField(validAppManifest, "gallery", "[1.jpg, [nested]]"), field: "gallery.1", rule: RuleType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, errs := ValidateApp(parse(t, tt.manifest))
			assert.Nil(t, m, "manifest must not be constructed")
			require.NotEmpty(t, errs)

			var found *FieldError
			for _, e := range errs {
				if e.Field == tt.field && e.Rule == tt.rule {
					found = e
				}
			}
			require.NotNil(t, found, "expected %s/%s in %v", tt.field, tt.rule, errs)
			assert.NotEmpty(t, found.Reason)
		})
	}
}

func TestHasReservedPrefix(t *testing.T) {
	tests := []struct {
		id       string
		reserved bool
	}{
		{id: "umbrel-app-store", reserved: true},
		{id: "umbrel-app-store-bitcoin", reserved: true},
		{id: "UMBREL-APP-STORE-bitcoin", reserved: false},
		{id: "Umbrel-app-store", reserved: false},
		{id: "my-umbrel-app-store", reserved: false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.reserved, hasReservedPrefix(tt.id))
		})
	}
}

func TestValidateAppTaglineRule(t *testing.T) {
	tests := []struct {
		tagline string
		invalid bool
	}{
		{tagline: `"A great app."`, invalid: true},
		{tagline: `"A great app"`, invalid: false},
		{tagline: `"Node.js for everyone."`, invalid: false},
		{tagline: `"Wait..."`, invalid: false},
	}

	for _, tt := range tests {
		t.Run(tt.tagline, func(t *testing.T) {
			_, errs := ValidateApp(parse(t, withField(validAppManifest, "tagline", tt.tagline)))
			hasRule := false
			for _, e := range errs {
				if e.Rule == RuleTaglinePeriod {
					hasRule = true
					assert.Equal(t, "Invalid tagline", e.Title())
				}
			}
			assert.Equal(t, tt.invalid, hasRule)
		})
	}
}

func TestValidateAppSelfDependencyForAnyID(t *testing.T) {
	for _, id := range []string{"a", "nextcloud", "lightning-terminal", "x1"} {
		doc := withField(validAppManifest, "id", id)
		doc = withField(doc, "dependencies", "["+id+"]")
		_, errs := ValidateApp(parse(t, doc))
		require.NotEmpty(t, errs, id)

		mentionsDependencies := false
		for _, e := range errs {
			if e.Field == "dependencies" && strings.Contains(e.Reason, "Dependencies") {
				mentionsDependencies = true
			}
		}
		assert.True(t, mentionsDependencies, id)
	}
}

func TestValidateAppCoercesNumericPeople(t *testing.T) {
	doc := withField(validAppManifest, "developer", "42")
	doc = withField(doc, "submitter", "3.5")
	m, errs := ValidateApp(parse(t, doc))
	require.Empty(t, errs)
	assert.Equal(t, "42", m.Developer)
	assert.Equal(t, "3.5", m.Submitter)
}

func TestValidateAppCollectsEveryError(t *testing.T) {
	doc := withField(validAppManifest, "tagline", "Bad.")
	doc = withField(doc, "category", "games")
	doc = withField(doc, "port", "-5")
	_, errs := ValidateApp(parse(t, doc))

	fieldsSeen := map[string]bool{}
	for _, e := range errs {
		fieldsSeen[e.Field] = true
	}
	assert.True(t, fieldsSeen["tagline"])
	assert.True(t, fieldsSeen["category"])
	assert.True(t, fieldsSeen["port"])
}

func TestValidateAppNotAMapping(t *testing.T) {
	m, errs := ValidateApp(parse(t, "- just\n- a list\n"))
	assert.Nil(t, m)
	require.Len(t, errs, 1)
	assert.Equal(t, RuleType, errs[0].Rule)
}
