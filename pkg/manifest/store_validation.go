package manifest

import (
	"fmt"
	"regexp"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/yamlnode"
)

var storeIDPattern = regexp.MustCompile(`^[a-z]+(?:-[a-z]+)*$`)

// ValidateStore checks an umbrel-app-store.yml document.
func ValidateStore(node *yamlnode.Node) (*StoreManifest, []*FieldError) {
	c := NewErrorCollector(false)
	if !node.IsMapping() {
		_ = c.Add(NewFieldError("", RuleType, node.Text(),
			fmt.Sprintf("The store manifest must be a mapping of fields, but received %s", node.Kind()), ""))
		return nil, c.FieldErrors()
	}

	f := &fields{node: node, c: c}
	m := &StoreManifest{}

	if id, ok := f.str("id", true); ok {
		m.ID = id
		f.length("id", id, 1, maxIDLength)
		if hasReservedPrefix(id) {
			f.report(NewFieldError("id", RuleReservedPrefix, id,
				fmt.Sprintf("The id of the app can't start with '%s' as it is the id of the official Umbrel App Store.", constants.ReservedStoreIDPrefix),
				"Choose a different store id"))
		} else if id != "" && !storeIDPattern.MatchString(id) {
			f.report(NewFieldError("id", RulePattern, id,
				"The id of the app should contain only alphabets ('a' to 'z') and dashes ('-').",
				"Use lowercase letters separated by single dashes, e.g. \"my-store\""))
		}
	}
	if name, ok := f.str("name", true); ok {
		m.Name = name
		f.length("name", name, 1, maxNameLength)
	}

	if c.HasErrors() {
		return nil, c.FieldErrors()
	}
	return m, nil
}
