package compose

import (
	"fmt"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
)

const externalPortMessage = "Port mappings may be unnecessary for the app to function correctly. " +
	"Docker's internal DNS resolves container names to IP addresses within the same network. " +
	"External access to the web interface is handled by the app_proxy container. " +
	"Port mappings are only needed if external access is required to a port not proxied by the app_proxy, " +
	"or if an app needs to expose multiple ports for its functionality (e.g., DHCP, DNS, P2P, etc.)."

// validatePorts reports every published port as informational.
func validatePorts(d *document) []finding.Finding {
	var out []finding.Finding
	for _, svc := range d.services() {
		for _, port := range svc.config.Get("ports").Items() {
			var display string
			switch {
			case port.IsString() || port.IsNumber():
				display = port.Text()
			case port.IsMapping():
				display = port.Get("target").Text()
				if published := port.Get("published").Text(); published != "" {
					display += ":" + published
				}
			default:
				continue
			}
			out = append(out, d.newFinding(finding.Info, constants.ExternalPortMapping,
				fmt.Sprintf("External port mapping %q", display),
				externalPortMessage,
				fmt.Sprintf("services.%s.ports", svc.name)))
		}
	}
	return out
}
