//go:build !integration

package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Options{Timeout: 2 * time.Second, HTTPClient: srv.Client()})
}

func hostOf(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return u.Host
}

func TestIsRegistry(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		expected bool
	}{
		{
			name:     "200",
			handler:  func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
			expected: true,
		},
		{
			name:     "401",
			handler:  func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) },
			expected: true,
		},
		{
			name: "api version header",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Docker-Distribution-Api-Version", "registry/2.0")
				w.WriteHeader(http.StatusNotFound)
			},
			expected: true,
		},
		{
			name:     "404",
			handler:  func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewTLSServer(tt.handler)
			defer srv.Close()

			c := newTestClient(srv)
			assert.Equal(t, tt.expected, c.IsRegistry(context.Background(), hostOf(t, srv)))
		})
	}
}

func TestIsRegistryCachesPerHost(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v2/", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	host := hostOf(t, srv)
	for range 3 {
		assert.True(t, c.IsRegistry(context.Background(), host))
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestIsRegistryWellKnownHostsSkipNetwork(t *testing.T) {
	c := NewClient(Options{HTTPClient: &http.Client{Transport: failingTransport{}}})
	for _, host := range []string{"docker.io", "registry-1.docker.io", "ghcr.io"} {
		assert.True(t, c.IsRegistry(context.Background(), host), host)
	}
}

func TestIsRegistryUnreachable(t *testing.T) {
	c := NewClient(Options{HTTPClient: &http.Client{Transport: failingTransport{}}})
	assert.False(t, c.IsRegistry(context.Background(), "unreachable.example"))
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, assert.AnError
}

func indexBody(platforms ...ocispec.Platform) []byte {
	idx := ocispec.Index{MediaType: ocispec.MediaTypeImageIndex}
	for i := range platforms {
		p := platforms[i]
		idx.Manifests = append(idx.Manifests, ocispec.Descriptor{
			MediaType: ocispec.MediaTypeImageManifest,
			Digest:    digest.Digest("sha256:" + strings.Repeat("0", 64)),
			Platform:  &p,
		})
	}
	data, _ := json.Marshal(idx)
	return data
}

func TestArchitecturesWithTokenChallenge(t *testing.T) {
	var srv *httptest.Server
	var tokenCalls atomic.Int32
	srv = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/token":
			tokenCalls.Add(1)
			assert.Equal(t, "repository:getumbrel/app:pull", r.URL.Query().Get("scope"))
			assert.Equal(t, "test-registry", r.URL.Query().Get("service"))
			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "secret-token"})
		case strings.HasPrefix(r.URL.Path, "/v2/getumbrel/app/manifests/"):
			if r.Header.Get("Authorization") != "Bearer secret-token" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="`+srv.URL+`/token",service="test-registry"`)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			assert.Contains(t, r.Header.Get("Accept"), ocispec.MediaTypeImageIndex)
			assert.Equal(t, "/v2/getumbrel/app/manifests/"+testDigest, r.URL.Path)
			w.Header().Set("Content-Type", ocispec.MediaTypeImageIndex)
			_, _ = w.Write(indexBody(
				ocispec.Platform{OS: "linux", Architecture: "amd64"},
				ocispec.Platform{OS: "linux", Architecture: "arm64", Variant: "v8"},
			))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ref := ImageRef{Host: hostOf(t, srv), Path: "getumbrel/app", Tag: "1.0", Digest: testDigest}
	platforms, err := newTestClient(srv).Architectures(context.Background(), ref)
	require.NoError(t, err)
	require.Len(t, platforms, 2)
	assert.Equal(t, "arm64", platforms[1].Architecture)
	assert.Equal(t, "v8", platforms[1].Variant)
	assert.True(t, SupportsMultiArch(platforms))
	assert.Equal(t, int32(1), tokenCalls.Load())
}

func TestArchitecturesSingleManifest(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", MediaTypeDockerManifest)
		_, _ = w.Write([]byte(`{"schemaVersion":2,"mediaType":"` + MediaTypeDockerManifest + `","layers":[]}`))
	}))
	defer srv.Close()

	platforms, err := newTestClient(srv).Architectures(context.Background(), ImageRef{Host: hostOf(t, srv), Path: "a/b", Tag: "1"})
	require.NoError(t, err)
	assert.Equal(t, []ocispec.Platform{{OS: "linux", Architecture: "amd64"}}, platforms)
	assert.False(t, SupportsMultiArch(platforms))
}

func TestArchitecturesIndexDetectedByBody(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"manifests":[{"digest":"sha256:` + strings.Repeat("1", 64) + `"},{"platform":{"architecture":"arm64"}}]}`))
	}))
	defer srv.Close()

	platforms, err := newTestClient(srv).Architectures(context.Background(), ImageRef{Host: hostOf(t, srv), Path: "a/b"})
	require.NoError(t, err)
	require.Len(t, platforms, 2)
	assert.Equal(t, ocispec.Platform{OS: "linux", Architecture: "amd64"}, platforms[0])
	assert.Equal(t, ocispec.Platform{OS: "linux", Architecture: "arm64"}, platforms[1])
}

func TestArchitecturesUnauthorized(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("WWW-Authenticate", `Bearer realm="https://`+r.Host+`/token"`)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	ref := ImageRef{Host: hostOf(t, srv), Path: "private/app", Tag: "1"}
	_, err := newTestClient(srv).Architectures(context.Background(), ref)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), ref.String())
	assert.Contains(t, err.Error(), "401")
}

func TestArchitecturesNotFound(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Architectures(context.Background(), ImageRef{Host: hostOf(t, srv), Path: "a/b", Tag: "1"})
	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestArchitecturesCancelled(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(srv).Architectures(ctx, ImageRef{Host: hostOf(t, srv), Path: "a/b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestArchitecturesTimeoutAppliesPerExchange(t *testing.T) {
	const delay = 150 * time.Millisecond
	var srv *httptest.Server
	srv = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		switch {
		case r.URL.Path == "/token":
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "slow-token"})
		case r.Header.Get("Authorization") != "Bearer slow-token":
			w.Header().Set("WWW-Authenticate", `Bearer realm="`+srv.URL+`/token"`)
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.Header().Set("Content-Type", ocispec.MediaTypeImageIndex)
			_, _ = w.Write(indexBody(
				ocispec.Platform{OS: "linux", Architecture: "amd64"},
				ocispec.Platform{OS: "linux", Architecture: "arm64"},
			))
		}
	}))
	defer srv.Close()

	// Three exchanges take about 450ms in total, each well inside the timeout.
	c := NewClient(Options{Timeout: 300 * time.Millisecond, HTTPClient: srv.Client()})
	platforms, err := c.Architectures(context.Background(), ImageRef{Host: hostOf(t, srv), Path: "a/b", Tag: "1"})
	require.NoError(t, err)
	assert.True(t, SupportsMultiArch(platforms))
}

func TestArchitecturesSlowExchangeTimesOut(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(Options{Timeout: 100 * time.Millisecond, HTTPClient: srv.Client()})
	_, err := c.Architectures(context.Background(), ImageRef{Host: hostOf(t, srv), Path: "a/b", Tag: "1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
