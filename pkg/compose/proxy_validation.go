package compose

import (
	"slices"
	"strings"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
)

const proxyEnvironmentPath = "services.app_proxy.environment"

// validateAppProxy checks that the app_proxy service knows which container
// and port to forward to.
func validateAppProxy(d *document) []finding.Finding {
	proxy := d.root.Get("services").Get(constants.AppProxyService)
	if !proxy.IsMapping() || proxy.Len() == 0 {
		return nil
	}

	var hostnames, services []string
	for _, svc := range d.services() {
		if svc.name == constants.AppProxyService {
			continue
		}
		services = append(services, svc.name)
		for _, key := range []string{"hostname", "container_name"} {
			if h := svc.config.Get(key).Text(); h != "" {
				hostnames = append(hostnames, h)
			}
		}
	}

	env := proxy.Get("environment").EnvMap()
	var out []finding.Finding

	host, ok := env["APP_HOST"]
	switch {
	case !ok:
		out = append(out, d.newFinding(finding.Error, constants.InvalidAppProxyConfiguration,
			"Missing APP_HOST environment variable",
			`The app_proxy container needs to have the APP_HOST environment variable set to the hostname of the app_proxy container (e.g. "<app-id>_<web-container-name>_1").`,
			proxyEnvironmentPath))
	case !validAppHost(host, d.appID, hostnames, services):
		out = append(out, d.newFinding(finding.Warning, constants.InvalidAppProxyConfiguration,
			"Invalid APP_HOST environment variable",
			`The APP_HOST environment variable must be set to the hostname of the app_proxy container (e.g. "<app-id>_<web-container-name>_1").`,
			proxyEnvironmentPath))
	}

	port, ok := env["APP_PORT"]
	switch {
	case !ok:
		out = append(out, d.newFinding(finding.Error, constants.InvalidAppProxyConfiguration,
			"Missing APP_PORT environment variable",
			"The app_proxy container needs to have the APP_PORT environment variable set to the port the ui of the app inside the container is listening on.",
			proxyEnvironmentPath))
	case !strings.HasPrefix(port, "$") && !isDigits(port):
		out = append(out, d.newFinding(finding.Warning, constants.InvalidAppProxyConfiguration,
			"Invalid APP_PORT environment variable",
			"The APP_PORT environment variable must be set to the port the ui of the app inside the container is listening on.",
			proxyEnvironmentPath))
	}
	return out
}

// validAppHost accepts template references, declared hostnames and
// container names, and anything not shaped like <app-id>_<service>_<n>.
// A value of that shape must name this app, one of its services and
// instance 1.
func validAppHost(host, appID string, hostnames, services []string) bool {
	if strings.HasPrefix(host, "$") || slices.Contains(hostnames, host) {
		return true
	}
	parts := strings.Split(host, "_")
	if len(parts) < 3 {
		return true
	}
	return parts[0] == strings.ToLower(appID) && slices.Contains(services, parts[1]) && parts[2] == "1"
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
