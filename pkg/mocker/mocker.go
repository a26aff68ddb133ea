// Package mocker replaces unresolved template placeholders in compose files
// with synthetic values so structural checks can run on templated documents.
//
// Substitution is purely textual. The mock for a placeholder depends only on
// the variable name, so every occurrence of the same placeholder is replaced
// by the same literal and the output is stable across runs.
package mocker

import (
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"

	"github.com/getumbrel/umbrel-linter/pkg/logger"
)

var mockLog = logger.New("mocker:mocker")

// placeholderPattern matches "$$" (an escaped dollar, left alone), "${NAME}"
// where NAME may carry default syntax such as "${PORT:-8080}", and "$NAME".
var placeholderPattern = regexp.MustCompile(`\$\$|\$\{([A-Za-z0-9_\-:]+)\}|\$([A-Za-z0-9_]+)`)

const (
	minMockPort = 1024
	maxMockPort = 65535
)

// rule maps a name fragment to its mock. Rules are checked in order and the
// first fragment contained in the variable name wins.
type rule struct {
	fragment string
	mock     func(name string) string
}

func fixed(v string) func(string) string {
	return func(string) string { return v }
}

var rules = []rule{
	{"_IP", fixed("10.10.10.10")},
	{"_PORT", portFor},
	{"_PASS", fixed("password")},
	{"_USER", fixed("username")},
	{"_DIR", fixed("/path/to/dir")},
	{"_PATH", fixed("/some/path")},
	{"_ROOT", fixed("/path/to/root")},
	{"_CONFIG", fixed("/path/to/config")},
	{"_HOST", fixed("host")},
	{"_DOMAIN", fixed("domain.com")},
	{"_SERVICE", fixed("service")},
	{"_NETWORK", fixed("network")},
	{"_NAME", fixed("name")},
	{"_SEED", fixed("seed")},
	{"_MODE", fixed("production")},
	{"_VERSION", fixed("1.0.0")},
	{"_KEY", fixed("key")},
	{"_SECRET", fixed("secret")},
	{"_TOKEN", fixed("token")},
}

// DefaultMock is used when no rule matches.
const DefaultMock = "mocked"

// Variable is one placeholder occurrence.
type Variable struct {
	// Placeholder is the literal text, e.g. "${APP_PORT}".
	Placeholder string
	// Name is the variable name without "$" or braces.
	Name string
	// Mock is the replacement value.
	Mock string
}

// MockValue returns the synthetic value for a variable name.
func MockValue(name string) string {
	for _, r := range rules {
		if strings.Contains(name, r.fragment) {
			return r.mock(name)
		}
	}
	return DefaultMock
}

// portFor derives a port in [1024, 65535] from the variable name.
func portFor(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	span := uint32(maxMockPort - minMockPort + 1)
	return strconv.Itoa(minMockPort + int(h.Sum32()%span))
}

// Variables lists every placeholder occurrence in text, in order.
func Variables(text string) []Variable {
	var vars []Variable
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		if m[0] == "$$" {
			continue
		}
		name := m[1]
		if name == "" {
			name = m[2]
		}
		vars = append(vars, Variable{Placeholder: m[0], Name: name, Mock: MockValue(name)})
	}
	return vars
}

// Mock returns text with every placeholder replaced by its mock value.
func Mock(text string) string {
	replaced := 0
	out := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		if match == "$$" {
			return match
		}
		replaced++
		return MockValue(nameOf(match))
	})
	mockLog.Printf("Mocked %d placeholders", replaced)
	return out
}

func nameOf(placeholder string) string {
	name := strings.TrimPrefix(placeholder, "$")
	name = strings.TrimPrefix(name, "{")
	return strings.TrimSuffix(name, "}")
}
