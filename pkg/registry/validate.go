package registry

import (
	"context"
	"fmt"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
)

// ValidateImage checks that ref lives on a registry and is published for
// both linux/arm64 and linux/amd64. Findings are attributed to file at
// propertyPath. Registries that refuse anonymous manifest access yield an
// informational finding instead of an error.
func (c *Client) ValidateImage(ctx context.Context, ref ImageRef, file, propertyPath string) []finding.Finding {
	host := ref.APIHost()
	if !c.IsRegistry(ctx, host) {
		return []finding.Finding{finding.NewError(
			constants.InvalidDockerImageName,
			fmt.Sprintf("Invalid registry %q", host),
			fmt.Sprintf("The registry %q is not a valid Docker registry", host),
			file,
		).WithPath(propertyPath)}
	}

	platforms, err := c.Architectures(ctx, ref)
	switch {
	case IsUnauthorized(err):
		return []finding.Finding{finding.NewInfo(
			constants.ImageArchitectureUnverified,
			fmt.Sprintf("Could not verify architectures for image %q", ref),
			"The registry requires authentication to inspect the image manifest. Skipping architecture verification.",
			file,
		).WithPath(propertyPath)}
	case err != nil:
		return []finding.Finding{finding.NewError(
			constants.InvalidDockerImageName,
			fmt.Sprintf("Invalid image name %q", ref),
			err.Error(),
			file,
		).WithPath(propertyPath)}
	case !SupportsMultiArch(platforms):
		return []finding.Finding{finding.NewError(
			constants.InvalidImageArchitectures,
			fmt.Sprintf("Invalid image architectures for image %q", ref),
			fmt.Sprintf(`The image %q does not support the architectures "arm64" and "amd64". Please make sure that the image supports both architectures.`, ref),
			file,
		).WithPath(propertyPath)}
	}
	return nil
}
