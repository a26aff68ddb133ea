package compose

import (
	"fmt"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
)

// keyValueBlocks are the service keys whose mapping values must be strings.
var keyValueBlocks = []string{"environment", "labels", "extra_hosts"}

// validateBooleans flags unquoted booleans in key/value blocks, including
// the YAML 1.1 forms (yes, no, on, off); compose v1 rejects them.
func validateBooleans(d *document) []finding.Finding {
	var out []finding.Finding
	for _, svc := range d.services() {
		for _, block := range keyValueBlocks {
			for _, f := range svc.config.Get(block).Fields() {
				b, ok := f.Value.LegacyBool()
				if !ok {
					continue
				}
				out = append(out, d.newFinding(finding.Error, constants.InvalidYAMLBooleanValue,
					fmt.Sprintf("Invalid YAML boolean value for key %q", f.Key),
					fmt.Sprintf(`Boolean values should be strings like "%t" instead of %t`, b, b),
					fmt.Sprintf("services.%s.%s.%s", svc.name, block, f.Key),
				))
			}
		}
	}
	return out
}
