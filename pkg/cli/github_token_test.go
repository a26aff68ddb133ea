//go:build !integration

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveGitHubToken(t *testing.T) {
	original := tokenForHost
	t.Cleanup(func() { tokenForHost = original })

	lookups := 0
	tokenForHost = func(string) (string, string) {
		lookups++
		return "from-gh", "oauth_token"
	}
	assert.Equal(t, "explicit", resolveGitHubToken("explicit"))
	assert.Zero(t, lookups, "an explicit token skips the lookup")
	assert.Equal(t, "from-gh", resolveGitHubToken(""))
	assert.Equal(t, 1, lookups)

	tokenForHost = func(string) (string, string) { return "", "default" }
	assert.Empty(t, resolveGitHubToken(""))
}

func TestResolveGitHubTokenFromEnvironment(t *testing.T) {
	t.Setenv("GH_TOKEN", "env-token")
	assert.Equal(t, "env-token", resolveGitHubToken(""))
}
