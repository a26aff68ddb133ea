package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Docker distribution media types. The OCI equivalents come from image-spec.
const (
	MediaTypeDockerManifest     = "application/vnd.docker.distribution.manifest.v2+json"
	MediaTypeDockerManifestList = "application/vnd.docker.distribution.manifest.list.v2+json"
)

// acceptHeader lists manifest types in order of preference.
var acceptHeader = strings.Join([]string{
	ocispec.MediaTypeImageManifest,
	ocispec.MediaTypeImageIndex,
	MediaTypeDockerManifest,
	MediaTypeDockerManifestList,
}, ", ")

// Manifest is the decoded manifest response.
type Manifest struct {
	ContentType string
	Index       ocispec.Index
}

// IsIndex reports whether the manifest lists per-platform manifests.
func (m *Manifest) IsIndex() bool {
	return strings.Contains(m.ContentType, "manifest.list") ||
		strings.Contains(m.ContentType, "image.index") ||
		len(m.Index.Manifests) > 0
}

// Platforms lists the platforms the image is published for. A single
// manifest is assumed to be linux/amd64.
func (m *Manifest) Platforms() []ocispec.Platform {
	if !m.IsIndex() {
		return []ocispec.Platform{{OS: "linux", Architecture: "amd64"}}
	}
	platforms := make([]ocispec.Platform, 0, len(m.Index.Manifests))
	for _, desc := range m.Index.Manifests {
		p := ocispec.Platform{OS: "linux", Architecture: "amd64"}
		if desc.Platform != nil {
			if desc.Platform.OS != "" {
				p.OS = desc.Platform.OS
			}
			if desc.Platform.Architecture != "" {
				p.Architecture = desc.Platform.Architecture
			}
			p.Variant = desc.Platform.Variant
		}
		platforms = append(platforms, p)
	}
	return platforms
}

// FetchManifest fetches the manifest for ref. A 401 carrying a bearer
// challenge triggers one token exchange and one retry; any failure after
// that is final. Errors name the image and a terminal 401 matches
// ErrUnauthorized. The client timeout applies to each exchange on its own.
func (c *Client) FetchManifest(ctx context.Context, ref ImageRef) (*Manifest, error) {
	m, err := c.fetchManifest(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get architectures for %s: %w", ref, err)
	}
	return m, nil
}

func (c *Client) fetchManifest(ctx context.Context, ref ImageRef) (*Manifest, error) {
	resp, err := c.requestManifest(ctx, ref, "")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		ch, ok := ParseChallenge(resp.Header.Get("WWW-Authenticate"))
		if ok && strings.EqualFold(ch.Scheme, "bearer") && ch.Realm() != "" {
			token, tokenErr := c.fetchToken(ctx, ch, ref)
			if tokenErr == nil {
				drain(resp)
				if resp, err = c.requestManifest(ctx, ref, token); err != nil {
					return nil, err
				}
			} else {
				clientLog.Printf("Token exchange failed for %s: %v", ref, tokenErr)
			}
		}
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, URL: resp.Request.URL.String()}
	}

	m := &Manifest{ContentType: resp.Header.Get("Content-Type")}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&m.Index); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	clientLog.Printf("Fetched manifest for %s: type=%s entries=%d", ref, m.ContentType, len(m.Index.Manifests))
	return m, nil
}

func (c *Client) requestManifest(ctx context.Context, ref ImageRef, token string) (*http.Response, error) {
	u := fmt.Sprintf("https://%s/v2/%s/manifests/%s", ref.APIHost(), ref.Path, ref.Reference())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHeader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req)
}

// Architectures resolves the platforms of ref.
func (c *Client) Architectures(ctx context.Context, ref ImageRef) ([]ocispec.Platform, error) {
	m, err := c.FetchManifest(ctx, ref)
	if err != nil {
		return nil, err
	}
	return m.Platforms(), nil
}

// SupportsMultiArch is true when both linux/arm64 and linux/amd64 are present.
func SupportsMultiArch(platforms []ocispec.Platform) bool {
	return hasPlatform(platforms, "linux", "arm64") && hasPlatform(platforms, "linux", "amd64")
}

func hasPlatform(platforms []ocispec.Platform, os, arch string) bool {
	for _, p := range platforms {
		if p.OS == os && p.Architecture == arch {
			return true
		}
	}
	return false
}

// IsUnauthorized reports whether err stems from a 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
