package compose

import (
	"fmt"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
)

// validateRestartPolicies requires restart: on-failure on every service
// except the app proxy.
func validateRestartPolicies(d *document) []finding.Finding {
	var out []finding.Finding
	for _, svc := range d.services() {
		if svc.name == constants.AppProxyService {
			continue
		}
		if svc.config.Get("restart").Text() == constants.ExpectedRestartPolicy {
			continue
		}
		out = append(out, d.newFinding(finding.Warning, constants.InvalidRestartPolicy,
			"Invalid restart policy",
			fmt.Sprintf("The restart policy of the container %q should be set to %q.", svc.name, constants.ExpectedRestartPolicy),
			fmt.Sprintf("services.%s.restart", svc.name)))
	}
	return out
}
