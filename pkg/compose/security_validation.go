package compose

import (
	"fmt"
	"strings"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
)

// validateSecurity flags the Docker socket mount, root users and host
// networking. The app proxy needs root and is exempt from the user checks.
func validateSecurity(d *document) []finding.Finding {
	var out []finding.Finding
	for _, svc := range d.services() {
		out = append(out, dockerSocketMounts(d, svc)...)

		if svc.name != constants.AppProxyService {
			if f, ok := containerUser(d, svc); ok {
				out = append(out, f)
			}
		}

		if svc.config.Get("network_mode").Text() == "host" {
			out = append(out, d.newFinding(finding.Info, constants.ContainerNetworkModeHost,
				fmt.Sprintf("Service %q uses host network mode", svc.name),
				"The host network mode can lead to security vulnerabilities. If possible please use the default bridge network mode and expose the necessary ports.",
				fmt.Sprintf("services.%s.network_mode", svc.name)))
		}
	}
	return out
}

func dockerSocketMounts(d *document, svc service) []finding.Finding {
	var out []finding.Finding
	for _, volume := range svc.config.Get("volumes").Items() {
		var display string
		switch {
		case volume.IsString() && strings.Contains(volume.Text(), constants.DockerSocketPath):
			display = volume.Text()
		case volume.IsMapping() && strings.Contains(volume.Get("source").Text(), constants.DockerSocketPath):
			display = volume.Get("source").Text() + ":" + volume.Get("target").Text()
		default:
			continue
		}
		out = append(out, d.newFinding(finding.Warning, constants.DockerSocketMount,
			fmt.Sprintf("Docker socket is mounted in %q", svc.name),
			fmt.Sprintf("The volume %q mounts the Docker socket, which can be a security risk. Consider using docker-in-docker instead (see portainer as an example).", display),
			fmt.Sprintf("services.%s.volumes", svc.name)))
	}
	return out
}

func containerUser(d *document, svc service) (finding.Finding, bool) {
	user := svc.config.Get("user").Text()
	propertyPath := fmt.Sprintf("services.%s.user", svc.name)

	switch {
	case user == "root":
		return d.newFinding(finding.Info, constants.InvalidContainerUser,
			fmt.Sprintf("Using unsafe user %q in service %q", user, svc.name),
			fmt.Sprintf("The user %q can lead to security vulnerabilities. If possible please use a non-root user instead.", user),
			propertyPath), true
	case user == "" && !hasNonRootUIDEnv(svc):
		return d.newFinding(finding.Info, constants.InvalidContainerUser,
			fmt.Sprintf("Potentially using unsafe user in service %q", svc.name),
			`The default container user "root" can lead to security vulnerabilities. If you are using the root user, please try to specify a different user (e.g. "1000:1000") in the compose file or try to set the UID/PUID and GID/PGID environment variables to 1000.`,
			propertyPath), true
	}
	return finding.Finding{}, false
}

func hasNonRootUIDEnv(svc service) bool {
	env := svc.config.Get("environment").EnvMap()
	return env["UID"] == constants.NonRootUID || env["PUID"] == constants.NonRootUID
}
