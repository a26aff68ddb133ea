package cli

import (
	"github.com/cli/go-gh/v2/pkg/auth"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
)

var githubTokenLog = logger.New("cli:github_token")

const githubHost = "github.com"

// tokenForHost is swapped out in tests.
var tokenForHost = auth.TokenForHost

// resolveGitHubToken returns the explicit token when set, otherwise the token
// gh would use for github.com (GH_TOKEN, GITHUB_TOKEN or the gh config).
// Checks run unauthenticated when neither is available.
func resolveGitHubToken(explicit string) string {
	if explicit != "" {
		githubTokenLog.Print("Using token from --github-token")
		return explicit
	}
	token, source := tokenForHost(githubHost)
	if token == "" {
		githubTokenLog.Print("No GitHub token found, using unauthenticated requests")
		return ""
	}
	githubTokenLog.Printf("Using GitHub token from %s", source)
	return token
}
