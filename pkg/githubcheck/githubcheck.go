// Package githubcheck verifies the GitHub URLs an app manifest points at:
// the submission pull request and the source repository. Format problems
// are always reported; existence is only reported as missing when GitHub
// answers 404; rate limits, outages and timeouts never fail a lint.
package githubcheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
	"github.com/getumbrel/umbrel-linter/pkg/repoutil"
	"github.com/getumbrel/umbrel-linter/pkg/yamlnode"
	"github.com/google/go-github/v74/github"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

var log = logger.New("githubcheck:githubcheck")

const (
	userAgent        = "umbrel-linter"
	defaultCacheSize = 512
	// Anonymous callers get 60 requests an hour; stay polite either way.
	defaultRequestsPerSecond = 5
)

// Options configure a Validator.
type Options struct {
	// Token authenticates API calls; empty means anonymous.
	Token   string
	Timeout time.Duration
	// BaseURL points the client at a different API root, e.g. in tests.
	BaseURL           string
	HTTPClient        *http.Client
	RequestsPerSecond float64
	CacheSize         int
}

// Validator checks GitHub URLs. Existence results are cached per URL for
// the Validator's lifetime. Safe for concurrent use.
type Validator struct {
	client  *github.Client
	timeout time.Duration
	limiter *rate.Limiter
	cache   *lru.Cache[string, bool]
	group   singleflight.Group
}

// New creates a Validator.
func New(opts Options) (*Validator, error) {
	client := github.NewClient(opts.HTTPClient)
	client.UserAgent = userAgent
	if opts.Token != "" {
		client = client.WithAuthToken(opts.Token)
	}
	if opts.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API base URL: %w", err)
		}
		client.BaseURL = base
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultGitHubTimeout
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, bool](size)
	if err != nil {
		return nil, fmt.Errorf("create URL cache: %w", err)
	}

	return &Validator{
		client:  client,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		cache:   cache,
	}, nil
}

func manifestFile(appID string) string {
	return path.Join(appID, constants.AppManifestFile)
}

// ValidatePullRequest checks that rawURL is a github.com pull request URL
// and that the pull request exists.
func (v *Validator) ValidatePullRequest(ctx context.Context, rawURL, appID string) []finding.Finding {
	pr, err := repoutil.ParsePullRequestURL(rawURL)
	if err != nil {
		log.Printf("Rejecting submission URL: %v", err)
		return []finding.Finding{finding.NewError(
			constants.InvalidSubmissionField,
			fmt.Sprintf("Invalid submission URL %q", rawURL),
			"Submission URL must be a valid GitHub pull request URL (e.g., https://github.com/owner/repo/pull/123)",
			manifestFile(appID),
		).WithPath("submission")}
	}

	exists := v.exists(ctx, "pr:"+rawURL, func(ctx context.Context) (*github.Response, error) {
		_, resp, err := v.client.PullRequests.Get(ctx, pr.Owner, pr.Repo, pr.Number)
		return resp, err
	})
	if exists {
		return nil
	}
	return []finding.Finding{finding.NewError(
		constants.InvalidSubmissionField,
		fmt.Sprintf("Pull request not found %q", rawURL),
		"The specified pull request does not exist or is not accessible. Please check the URL and ensure the PR is public.",
		manifestFile(appID),
	).WithPath("submission")}
}

// ValidateRepository checks that rawURL is a github.com repository URL and
// that the repository exists. Problems are warnings.
func (v *Validator) ValidateRepository(ctx context.Context, rawURL, appID string) []finding.Finding {
	owner, repo, err := repoutil.ParseGitHubURL(rawURL)
	if err != nil {
		log.Printf("Rejecting repository URL: %v", err)
		return []finding.Finding{finding.NewWarning(
			constants.InvalidRepoURL,
			fmt.Sprintf("Invalid repository URL %q", rawURL),
			"Repository URL should be a valid GitHub repository URL (e.g., https://github.com/owner/repo)",
			manifestFile(appID),
		).WithPath("repo")}
	}

	exists := v.exists(ctx, "repo:"+rawURL, func(ctx context.Context) (*github.Response, error) {
		_, resp, err := v.client.Repositories.Get(ctx, owner, repo)
		return resp, err
	})
	if exists {
		return nil
	}
	return []finding.Finding{finding.NewWarning(
		constants.InvalidRepoURL,
		fmt.Sprintf("Repository not found %q", rawURL),
		"The specified repository does not exist or is not accessible. Please check the URL.",
		manifestFile(appID),
	).WithPath("repo")}
}

// ValidateURLs runs the pull request check for a non-empty submission and
// the repository check for a non-blank string repo.
func (v *Validator) ValidateURLs(ctx context.Context, manifest *yamlnode.Node, appID string) []finding.Finding {
	var out []finding.Finding
	if submission := manifest.Get("submission"); submission.IsScalar() && submission.Text() != "" {
		out = append(out, v.ValidatePullRequest(ctx, submission.Text(), appID)...)
	}
	if repo, ok := manifest.Get("repo").Str(); ok && strings.TrimSpace(repo) != "" {
		out = append(out, v.ValidateRepository(ctx, repo, appID)...)
	}
	return out
}

// exists runs lookup once per key. Only a 404 counts as missing.
func (v *Validator) exists(ctx context.Context, key string, lookup func(context.Context) (*github.Response, error)) bool {
	if ok, cached := v.cache.Get(key); cached {
		return ok
	}

	res, _, _ := v.group.Do(key, func() (any, error) {
		if err := v.limiter.Wait(ctx); err != nil {
			log.Printf("Skipping existence check for %s: %v", key, err)
			return true, nil
		}
		callCtx, cancel := context.WithTimeout(ctx, v.timeout)
		defer cancel()

		resp, err := lookup(callCtx)
		found := true
		switch {
		case resp != nil && resp.StatusCode == http.StatusNotFound:
			found = false
		case err != nil:
			var rateErr *github.RateLimitError
			if errors.As(err, &rateErr) {
				log.Printf("Rate limited while checking %s, assuming it exists", key)
			} else {
				log.Printf("Existence check for %s failed, assuming it exists: %v", key, err)
			}
		}
		if ctx.Err() == nil {
			v.cache.Add(key, found)
		}
		return found, nil
	})
	return res.(bool)
}
