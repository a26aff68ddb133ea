package compose

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
	"github.com/getumbrel/umbrel-linter/pkg/registry"
	"github.com/sourcegraph/conc/pool"
)

var imageLog = logger.New("compose:image_validation")

// pinnedImagePattern is <name>:<tag>@sha256:<64 hex>.
var pinnedImagePattern = regexp.MustCompile(`^[a-zA-Z0-9./:_-]+:[^@]+@sha256:[0-9a-fA-F]{64}$`)

type imageCheck struct {
	ref  registry.ImageRef
	path string
}

// validateImages enforces digest-pinned image references and, when
// enabled, resolves architectures for every conforming image. Registry
// lookups run in parallel; their findings are appended in service order.
func (v *Validator) validateImages(ctx context.Context, d *document, checkArchitectures bool) []finding.Finding {
	var out []finding.Finding
	var checks []imageCheck

	for _, svc := range d.services() {
		image := svc.config.Get("image")
		if !image.IsScalar() || image.Text() == "" {
			continue
		}
		raw := image.Text()
		propertyPath := fmt.Sprintf("services.%s.image", svc.name)

		ref, err := registry.ParseImageRef(raw)
		if err != nil {
			out = append(out, d.newFinding(finding.Error, constants.InvalidDockerImageName,
				fmt.Sprintf("Invalid image name %q", raw), err.Error(), propertyPath))
			continue
		}

		if !pinnedImagePattern.MatchString(raw) {
			out = append(out, d.newFinding(finding.Error, constants.InvalidDockerImageName,
				fmt.Sprintf("Invalid image name %q", raw),
				`Images must include an immutable digest: "<name>:<version-tag>@sha256:<64-hex>"`,
				propertyPath))
			continue
		}
		if err := ref.ValidateDigest(); err != nil {
			lower := ref
			lower.Digest = strings.ToLower(ref.Digest)
			if lower.ValidateDigest() != nil {
				out = append(out, d.newFinding(finding.Error, constants.InvalidDockerImageName,
					fmt.Sprintf("Invalid image name %q", raw), err.Error(), propertyPath))
				continue
			}
			out = append(out, d.newFinding(finding.Warning, constants.InvalidDockerImageName,
				fmt.Sprintf("Invalid image digest %q", ref.Digest),
				fmt.Sprintf("Digests should use lower case hex characters: %q", lower.Digest),
				propertyPath))
			ref = lower
		}
		if ref.Tag == "latest" {
			out = append(out, d.newFinding(finding.Warning, constants.InvalidDockerImageName,
				fmt.Sprintf("Invalid image tag %q", ref.Tag),
				`Images should not use the "latest" tag`,
				propertyPath))
		}
		checks = append(checks, imageCheck{ref: ref, path: propertyPath})
	}

	if checkArchitectures && v.registry != nil && len(checks) > 0 {
		out = append(out, v.checkArchitectures(ctx, d, checks)...)
	}
	return out
}

func (v *Validator) checkArchitectures(ctx context.Context, d *document, checks []imageCheck) []finding.Finding {
	imageLog.Printf("Checking architectures of %d images in %s", len(checks), d.file)
	results := make([][]finding.Finding, len(checks))

	p := pool.New().WithMaxGoroutines(v.concurrency)
	for i, c := range checks {
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			results[i] = v.registry.ValidateImage(ctx, c.ref, d.file, c.path)
		})
	}
	p.Wait()

	var out []finding.Finding
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}
