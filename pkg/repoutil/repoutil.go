// Package repoutil provides utility functions for working with GitHub repository slugs and URLs.
package repoutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/getumbrel/umbrel-linter/pkg/logger"
)

var log = logger.New("repoutil:repoutil")

var (
	repoPathPattern        = regexp.MustCompile(`^/[^/]+/[^/]+/?$`)
	pullRequestPathPattern = regexp.MustCompile(`^/[^/]+/[^/]+/pull/\d+/?$`)
)

// PullRequest identifies a pull request on github.com.
type PullRequest struct {
	Owner  string
	Repo   string
	Number int
}

// SplitRepoSlug splits a repository slug (owner/repo) into owner and repo parts.
// Returns an error if the slug format is invalid.
func SplitRepoSlug(slug string) (owner, repo string, err error) {
	parts := strings.Split(slug, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		log.Printf("Invalid repo slug format: %s", slug)
		return "", "", fmt.Errorf("invalid repo format: %s", slug)
	}
	return parts[0], parts[1], nil
}

// githubPath returns the path of an https URL on github.com or www.github.com.
func githubPath(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "https" {
		return "", fmt.Errorf("URL %q must use https", raw)
	}
	if host := u.Hostname(); host != "github.com" && host != "www.github.com" {
		return "", fmt.Errorf("URL %q is not on github.com", raw)
	}
	return u.Path, nil
}

// ParseGitHubURL extracts the owner and repo from a repository URL of the
// form https://github.com/owner/repo. A trailing slash is allowed.
func ParseGitHubURL(raw string) (owner, repo string, err error) {
	p, err := githubPath(raw)
	if err != nil {
		return "", "", err
	}
	if !repoPathPattern.MatchString(p) {
		return "", "", fmt.Errorf("URL %q is not a repository URL", raw)
	}
	owner, repo, err = SplitRepoSlug(strings.Trim(p, "/"))
	if err != nil {
		return "", "", err
	}
	log.Printf("Parsed repository URL: owner=%s, repo=%s", owner, repo)
	return owner, repo, nil
}

// ParsePullRequestURL extracts the pull request from a URL of the form
// https://github.com/owner/repo/pull/123.
func ParsePullRequestURL(raw string) (PullRequest, error) {
	p, err := githubPath(raw)
	if err != nil {
		return PullRequest{}, err
	}
	if !pullRequestPathPattern.MatchString(p) {
		return PullRequest{}, fmt.Errorf("URL %q is not a pull request URL", raw)
	}
	parts := strings.Split(strings.Trim(p, "/"), "/")
	number, err := strconv.Atoi(parts[3])
	if err != nil {
		return PullRequest{}, fmt.Errorf("invalid pull request number in %q: %w", raw, err)
	}
	log.Printf("Parsed pull request URL: %s/%s#%d", parts[0], parts[1], number)
	return PullRequest{Owner: parts[0], Repo: parts[1], Number: number}, nil
}

// String renders the pull request as owner/repo#number.
func (pr PullRequest) String() string {
	return fmt.Sprintf("%s/%s#%d", pr.Owner, pr.Repo, pr.Number)
}
