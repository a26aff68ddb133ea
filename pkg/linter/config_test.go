//go:build !integration

package linter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/fileutil"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.CheckImageArchitectures)
	assert.Equal(t, finding.Warning, cfg.LogLevel)
	assert.False(t, cfg.StrictMode)
	assert.Empty(t, cfg.IgnorePatterns)
	assert.Equal(t, constants.DefaultRegistryTimeout, cfg.RegistryTimeout)
	assert.Equal(t, constants.DefaultGitHubTimeout, cfg.GitHubTimeout)
	assert.Equal(t, constants.DefaultConcurrency, cfg.Concurrency)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvRegistryTimeout, "2500")
	t.Setenv(EnvGitHubTimeout, "999999")
	t.Setenv(EnvConcurrency, "8")

	cfg := DefaultConfig()
	assert.Equal(t, 2500*time.Millisecond, cfg.RegistryTimeout)
	assert.Equal(t, constants.DefaultGitHubTimeout, cfg.GitHubTimeout, "out of range values fall back")
	assert.Equal(t, 8, cfg.Concurrency)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "debug" }, wantErr: "LogLevel"},
		{name: "zero concurrency", mutate: func(c *Config) { c.Concurrency = 0 }, wantErr: "Concurrency"},
		{name: "negative timeout", mutate: func(c *Config) { c.RegistryTimeout = -time.Second }, wantErr: "RegistryTimeout"},
		{name: "empty ignore pattern", mutate: func(c *Config) { c.IgnorePatterns = []string{""} }, wantErr: "IgnorePatterns"},
		{name: "malformed ignore pattern", mutate: func(c *Config) { c.IgnorePatterns = []string{"["} }, wantErr: `ignore pattern "["`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestContextValidate(t *testing.T) {
	assert.NoError(t, Context{}.Validate())
	assert.NoError(t, Context{StoreType: constants.StoreTypeOfficial, PullRequestURL: prURL}.Validate())

	err := Context{StoreType: "private"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "StoreType")

	err = Context{PullRequestURL: "not a url"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PullRequestURL")
}

func TestConfigFilter(t *testing.T) {
	report := finding.NewReport()
	report.Add(
		finding.NewError("a", "A", "", "my-app/umbrel-app.yml"),
		finding.NewWarning("b", "B", "", "my-app/docker-compose.yml"),
		finding.NewInfo("c", "C", "", "my-app/umbrel-app.yml"),
		finding.NewError("d", "D", "", "legacy-app/docker-compose.yml"),
	)

	cfg := DefaultConfig()
	cfg.IgnorePatterns = []string{"legacy-*"}
	filtered := cfg.Filter(report)
	assert.Equal(t, []string{"a", "b"}, ids(filtered))

	cfg.LogLevel = finding.Info
	cfg.IgnorePatterns = []string{"*/docker-compose.yml"}
	assert.Equal(t, []string{"a", "c"}, ids(cfg.Filter(report)))
}

func TestConfigIgnored(t *testing.T) {
	cfg := Config{IgnorePatterns: []string{"legacy-app", "*/README.md"}}
	assert.True(t, cfg.Ignored("legacy-app"))
	assert.True(t, cfg.Ignored("legacy-app/data/db"))
	assert.True(t, cfg.Ignored("my-app/README.md"))
	assert.False(t, cfg.Ignored("README.md"))
	assert.False(t, cfg.Ignored("my-app/umbrel-app.yml"))
}

func TestOSFileSystem(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"my-app/umbrel-app.yml": "id: my-app\n",
		"my-app/data/.gitkeep":  "",
		".hidden/file":          "",
	})
	fsys := OSFileSystem{Root: root}

	content, err := fsys.Read("my-app/umbrel-app.yml")
	require.NoError(t, err)
	assert.Equal(t, "id: my-app\n", content)

	exists, isDir := fsys.Exists("my-app")
	assert.True(t, exists)
	assert.True(t, isDir)
	exists, _ = fsys.Exists("../outside")
	assert.False(t, exists)

	entries, err := fsys.List("my-app")
	require.NoError(t, err)
	assert.Equal(t, []fileutil.Entry{
		{Path: "data", Kind: fileutil.KindDirectory},
		{Path: "data/.gitkeep", Kind: fileutil.KindFile},
		{Path: "umbrel-app.yml", Kind: fileutil.KindFile},
	}, entries)

	children, err := fsys.ReadDir(".")
	require.NoError(t, err)
	assert.Equal(t, []fileutil.Entry{
		{Path: ".hidden", Kind: fileutil.KindDirectory},
		{Path: "my-app", Kind: fileutil.KindDirectory},
	}, children)

	_, err = fsys.Read("missing.yml")
	assert.Error(t, err)
}
