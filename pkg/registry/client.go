package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
)

var clientLog = logger.New("registry:client")

// maxBodySize caps manifest and token responses.
const maxBodySize = 4 << 20

const defaultCacheSize = 256

// wellKnownHosts are accepted as registries without a network call.
var wellKnownHosts = []string{dockerHubHost, dockerHubAPIHost, "ghcr.io"}

// Options configure a Client. Zero values pick sensible defaults.
type Options struct {
	// Timeout bounds each individual HTTP exchange.
	Timeout time.Duration
	// HTTPClient overrides the transport, e.g. for tests.
	HTTPClient *http.Client
	// CacheSize bounds the host classification cache.
	CacheSize int
}

// Client resolves registry metadata. It holds a host classification cache
// for its own lifetime; create one per lint run. A Client is safe for
// concurrent use.
type Client struct {
	http    *http.Client
	timeout time.Duration
	hosts   *lru.Cache[string, bool]
	group   singleflight.Group
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultRegistryTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, bool](size)
	if err != nil {
		panic(fmt.Sprintf("registry: cache: %v", err))
	}
	return &Client{http: httpClient, timeout: timeout, hosts: cache}
}

// IsRegistry reports whether host answers the distribution API version
// check: a 200 or 401 from /v2/, or a Docker-Distribution-Api-Version
// header. Failures count as "not a registry". Results are cached, except
// when ctx was cancelled mid-check.
func (c *Client) IsRegistry(ctx context.Context, host string) bool {
	if slices.Contains(wellKnownHosts, host) {
		return true
	}
	if ok, cached := c.hosts.Get(host); cached {
		return ok
	}

	v, _, _ := c.group.Do("host:"+host, func() (any, error) {
		ok := c.probe(ctx, host)
		if ctx.Err() == nil {
			c.hosts.Add(host, ok)
		}
		return ok, nil
	})
	return v.(bool)
}

func (c *Client) probe(ctx context.Context, host string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+host+"/v2/", nil)
	if err != nil {
		return false
	}
	resp, err := c.do(req)
	if err != nil {
		clientLog.Printf("Registry probe failed: host=%s err=%v", host, err)
		return false
	}
	defer drain(resp)

	ok := resp.StatusCode == http.StatusOK ||
		resp.StatusCode == http.StatusUnauthorized ||
		resp.Header.Get("Docker-Distribution-Api-Version") == "registry/2.0"
	clientLog.Printf("Registry probe: host=%s status=%d registry=%v", host, resp.StatusCode, ok)
	return ok
}

// do sends req under its own timeout. The deadline also covers reading the
// body and is released when the body is closed.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), c.timeout)
	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
	_ = resp.Body.Close()
}
