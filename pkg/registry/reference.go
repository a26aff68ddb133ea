// Package registry talks the container image distribution protocol: it
// parses image references, classifies registry hosts and resolves the
// platforms an image is published for, including the bearer token
// challenge most registries require for anonymous pulls.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/opencontainers/go-digest"
)

const (
	dockerHubHost    = "docker.io"
	dockerHubAPIHost = "registry-1.docker.io"
)

// ImageRef is a parsed image reference. Tag and Digest are optional.
type ImageRef struct {
	Host   string
	Path   string
	Tag    string
	Digest string
}

// ParseImageRef splits "host/path[:tag][@digest]". Names without a registry
// segment resolve to Docker Hub, and single-segment names gain the
// "library/" namespace.
func ParseImageRef(s string) (ImageRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ImageRef{}, errors.New("image reference is empty")
	}

	var ref ImageRef
	name := s
	if at := strings.LastIndex(name, "@"); at >= 0 {
		ref.Digest = name[at+1:]
		name = name[:at]
		if ref.Digest == "" {
			return ImageRef{}, fmt.Errorf("image reference %q has an empty digest", s)
		}
	}
	// a colon is a tag separator only after the last slash; before it, it
	// belongs to a registry port
	if colon := strings.LastIndex(name, ":"); colon > strings.LastIndex(name, "/") {
		ref.Tag = name[colon+1:]
		name = name[:colon]
		if ref.Tag == "" {
			return ImageRef{}, fmt.Errorf("image reference %q has an empty tag", s)
		}
	}
	if name == "" {
		return ImageRef{}, fmt.Errorf("image reference %q has no repository name", s)
	}

	parts := strings.Split(name, "/")
	if slices.Contains(parts, "") {
		return ImageRef{}, fmt.Errorf("image reference %q has an empty path segment", s)
	}
	switch {
	case len(parts) == 1:
		ref.Host = dockerHubHost
		ref.Path = "library/" + parts[0]
	case len(parts) == 2 && !looksLikeHost(parts[0]):
		ref.Host = dockerHubHost
		ref.Path = name
	default:
		ref.Host = parts[0]
		ref.Path = strings.Join(parts[1:], "/")
	}
	return ref, nil
}

func looksLikeHost(segment string) bool {
	return strings.ContainsAny(segment, ".:") || segment == "localhost"
}

// String is the canonical "host/path[:tag][@digest]" form.
func (r ImageRef) String() string {
	var b strings.Builder
	b.WriteString(r.Host)
	b.WriteByte('/')
	b.WriteString(r.Path)
	if r.Tag != "" {
		b.WriteByte(':')
		b.WriteString(r.Tag)
	}
	if r.Digest != "" {
		b.WriteByte('@')
		b.WriteString(r.Digest)
	}
	return b.String()
}

// APIHost is the host serving the registry API for r.
func (r ImageRef) APIHost() string {
	return APIHost(r.Host)
}

// APIHost maps Docker Hub aliases to its API host.
func APIHost(host string) string {
	switch host {
	case dockerHubHost, "www.docker.com":
		return dockerHubAPIHost
	}
	return host
}

// Reference is what the manifest endpoint is queried with: the digest when
// present, else the tag, else "latest".
func (r ImageRef) Reference() string {
	switch {
	case r.Digest != "":
		return r.Digest
	case r.Tag != "":
		return r.Tag
	}
	return "latest"
}

// ValidateDigest checks that the digest is well formed, e.g. a sha256 digest
// with 64 lower-case hex characters.
func (r ImageRef) ValidateDigest() error {
	if r.Digest == "" {
		return errors.New("image reference has no digest")
	}
	d, err := digest.Parse(r.Digest)
	if err != nil {
		return fmt.Errorf("invalid digest %q: %w", r.Digest, err)
	}
	if d.Algorithm() != digest.SHA256 {
		return fmt.Errorf("digest %q must use sha256", r.Digest)
	}
	return nil
}
