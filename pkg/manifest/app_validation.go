package manifest

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
	"github.com/getumbrel/umbrel-linter/pkg/yamlnode"
)

var appValidationLog = logger.New("manifest:app_validation")

// Length limits for umbrel-app.yml.
const (
	maxIDLength          = 50
	maxNameLength        = 50
	maxTaglineLength     = 100
	maxDescriptionLength = 5000
	maxPersonLength      = 50
	maxReleaseNotes      = 5000
	maxPort              = 65535
)

// ValidateApp checks an umbrel-app.yml document. All violations are
// returned; the manifest is nil whenever there is at least one.
func ValidateApp(node *yamlnode.Node) (*AppManifest, []*FieldError) {
	c := NewErrorCollector(false)
	if !node.IsMapping() {
		_ = c.Add(NewFieldError("", RuleType, node.Text(),
			fmt.Sprintf("The manifest must be a mapping of fields, but received %s", node.Kind()), ""))
		return nil, c.FieldErrors()
	}

	f := &fields{node: node, c: c}
	m := &AppManifest{}

	m.ManifestVersion = validateManifestVersion(f)
	m.ID = validateAppID(f)
	if s, ok := f.str("name", true); ok {
		f.length("name", s, 1, maxNameLength)
		m.Name = s
	}
	m.Tagline = validateTagline(f)
	if s, ok := f.str("category", true); ok {
		f.inList("category", s, constants.AppCategories)
		m.Category = s
	}
	if s, ok := f.str("version", true); ok {
		f.length("version", s, 1, 0)
		m.Version = s
	}
	if port, ok := f.integer("port", true); ok {
		f.intRange("port", port, 0, maxPort)
		m.Port = int(port)
	}
	if s, ok := f.str("description", true); ok {
		f.length("description", s, 1, maxDescriptionLength)
		m.Description = s
	}
	if s, ok := f.coercedStr("developer"); ok {
		f.length("developer", s, 1, maxPersonLength)
		m.Developer = s
	}
	if s, ok := f.coercedStr("submitter"); ok {
		f.length("submitter", s, 1, maxPersonLength)
		m.Submitter = s
	}
	m.Submission, _ = f.url("submission")
	m.Support, _ = f.url("support")
	m.Website, _ = f.url("website")
	m.Path = validatePath(f)

	validateOptionalFields(f, m)

	if c.HasErrors() {
		appValidationLog.Printf("umbrel-app.yml has %d field errors", c.Count())
		return nil, c.FieldErrors()
	}
	return m, nil
}

func validateManifestVersion(f *fields) float64 {
	v, ok := f.lookup("manifestVersion")
	if !ok {
		f.missing("manifestVersion")
		return 0
	}
	n, isNum := v.FloatValue()
	if s, isStr := v.Str(); isStr {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		n, isNum = parsed, err == nil
	}
	if !isNum {
		f.wrongType("manifestVersion", v, "a number")
		return 0
	}
	if !slices.Contains(constants.ManifestVersions, n) {
		f.report(NewFieldError("manifestVersion", RuleEnum, v.Text(),
			"manifestVersion must be 1, 1.1, or 1.2", ""))
	}
	return n
}

func validateAppID(f *fields) string {
	id, ok := f.str("id", true)
	if !ok {
		return ""
	}
	f.length("id", id, 1, maxIDLength)
	if hasReservedPrefix(id) {
		f.report(NewFieldError("id", RuleReservedPrefix, id,
			fmt.Sprintf("The id of the app can't start with '%s' as it is the id of the app repository", constants.ReservedStoreIDPrefix),
			"Choose a different app id"))
	}
	return id
}

// hasReservedPrefix is case sensitive; upper case ids already fail the id
// pattern.
func hasReservedPrefix(id string) bool {
	return strings.HasPrefix(id, constants.ReservedStoreIDPrefix)
}

// validateTagline rejects a tagline whose only period is the trailing one.
// Taglines with inner periods ("Node.js for everyone.") are accepted.
func validateTagline(f *fields) string {
	s, ok := f.str("tagline", true)
	if !ok {
		return ""
	}
	f.length("tagline", s, 1, maxTaglineLength)
	if strings.HasSuffix(s, ".") && strings.Count(s, ".") == 1 {
		f.report(NewFieldError("tagline", RuleTaglinePeriod, s,
			"Taglines should not end with a period",
			fmt.Sprintf("Use %q", strings.TrimSuffix(s, "."))))
	}
	return s
}

func validatePath(f *fields) string {
	v, ok := f.lookup("path")
	if !ok {
		// an explicit null is the app root, like ""
		if !f.node.Has("path") {
			f.missing("path")
		}
		return ""
	}
	s, ok := v.Str()
	if !ok {
		f.wrongType("path", v, "a string")
		return ""
	}
	if s != "" && !strings.HasPrefix(s, "/") {
		f.report(NewFieldError("path", RulePath, s, "path must start with /",
			fmt.Sprintf("Use %q", "/"+s)))
	}
	return s
}

func validateOptionalFields(f *fields, m *AppManifest) {
	m.Disabled = f.boolean("disabled")
	m.Icon, _ = f.str("icon", false)
	m.Gallery, _ = f.stringList("gallery")

	if s, ok := f.str("releaseNotes", false); ok {
		f.length("releaseNotes", s, 0, maxReleaseNotes)
		m.ReleaseNotes = s
	}

	if deps, ok := f.stringList("dependencies"); ok {
		m.Dependencies = deps
		if m.ID != "" && slices.Contains(deps, m.ID) {
			f.report(NewFieldError("dependencies", RuleSelfDependency, m.ID,
				"Dependencies can't include its own app id",
				fmt.Sprintf("Remove %q from dependencies", m.ID)))
		}
	}

	if perms, ok := f.stringList("permissions"); ok {
		m.Permissions = perms
		for i, p := range perms {
			if !slices.Contains(constants.AppPermissions, p) {
				f.report(NewFieldError(fmt.Sprintf("permissions.%d", i), RuleEnum, p,
					fmt.Sprintf("permission must be one of: %s", strings.Join(constants.AppPermissions, ", ")),
					""))
			}
		}
	}

	m.DefaultUsername, _ = f.str("defaultUsername", false)
	m.DefaultPassword, _ = f.str("defaultPassword", false)
	m.DeterministicPassword = f.boolean("deterministicPassword")
	m.OptimizedForUmbrelHome = f.boolean("optimizedForUmbrelHome")
	m.TorOnly = f.boolean("torOnly")

	if size, ok := f.integer("installSize", false); ok {
		if size < 0 {
			f.report(NewFieldError("installSize", RuleRange, strconv.FormatInt(size, 10),
				"installSize must be greater than or equal to 0", ""))
		}
		m.InstallSize = &size
	}

	m.Widgets = validateWidgets(f)
	m.DefaultShell, _ = f.str("defaultShell", false)
	m.BackupIgnore, _ = f.stringList("backupIgnore")
	m.Repo, _ = f.str("repo", false)
}

func validateWidgets(f *fields) []map[string]any {
	v, ok := f.lookup("widgets")
	if !ok {
		return nil
	}
	if !v.IsSequence() {
		f.wrongType("widgets", v, "a list")
		return nil
	}
	var out []map[string]any
	for i, item := range v.Items() {
		obj, ok := item.Interface().(map[string]any)
		if !ok {
			f.wrongType(fmt.Sprintf("widgets.%d", i), item, "an object")
			continue
		}
		out = append(out, obj)
	}
	return out
}
