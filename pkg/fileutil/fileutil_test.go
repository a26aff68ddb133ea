//go:build !integration

package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		if f[len(f)-1] == '/' {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}
}

func TestListEntriesOnDisk(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "umbrel-app.yml", "data/config/settings.json", "data/empty/")

	entries, err := ListEntriesFS(os.DirFS(root), ".")
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Path: "data", Kind: KindDirectory},
		{Path: "data/config", Kind: KindDirectory},
		{Path: "data/config/settings.json", Kind: KindFile},
		{Path: "data/empty", Kind: KindDirectory},
		{Path: "umbrel-app.yml", Kind: KindFile},
	}, entries)
}

func TestListEntriesFS(t *testing.T) {
	fsys := fstest.MapFS{
		"my-app/umbrel-app.yml":         {Data: []byte("id: my-app")},
		"my-app/data/db/.gitkeep":       {},
		"other-app/docker-compose.yml": {},
	}

	entries, err := ListEntriesFS(fsys, "my-app")
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Path: "data", Kind: KindDirectory},
		{Path: "data/db", Kind: KindDirectory},
		{Path: "data/db/.gitkeep", Kind: KindFile},
		{Path: "umbrel-app.yml", Kind: KindFile},
	}, entries)
}

func TestListEntriesMissingRoot(t *testing.T) {
	_, err := ListEntriesFS(os.DirFS(t.TempDir()), "missing")
	assert.Error(t, err)
}

func TestEmptyDirectories(t *testing.T) {
	entries := []Entry{
		{Path: "data", Kind: KindDirectory},
		{Path: "data/db", Kind: KindDirectory},
		{Path: "data/db/.gitkeep", Kind: KindFile},
		{Path: "data/empty", Kind: KindDirectory},
		{Path: "logs", Kind: KindDirectory},
	}
	assert.Equal(t, []Entry{
		{Path: "data/empty", Kind: KindDirectory},
		{Path: "logs", Kind: KindDirectory},
	}, EmptyDirectories(entries))
}

func TestContainsPath(t *testing.T) {
	entries := []Entry{{Path: "data/db", Kind: KindDirectory}}
	assert.True(t, ContainsPath(entries, "data/db"))
	assert.True(t, ContainsPath(entries, "data/db/"))
	assert.False(t, ContainsPath(entries, "data"))
}

func TestKindOf(t *testing.T) {
	fsys := fstest.MapFS{
		"my-app/umbrel-app.yml": {Data: []byte("id: my-app")},
		"my-app/data":           {Mode: fs.ModeDir},
	}

	tests := []struct {
		name   string
		path   string
		kind   Kind
		exists bool
	}{
		{name: "file", path: "my-app/umbrel-app.yml", kind: KindFile, exists: true},
		{name: "explicit directory", path: "my-app/data", kind: KindDirectory, exists: true},
		{name: "implied directory", path: "my-app", kind: KindDirectory, exists: true},
		{name: "missing", path: "my-app/docker-compose.yml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := KindOf(fsys, tt.path)
			assert.Equal(t, tt.exists, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestReadDirEntries(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "b-app/umbrel-app.yml", "a-app/", "README.md")

	entries, err := ReadDirEntries(os.DirFS(root), ".")
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Path: "README.md", Kind: KindFile},
		{Path: "a-app", Kind: KindDirectory},
		{Path: "b-app", Kind: KindDirectory},
	}, entries)

	_, err = ReadDirEntries(os.DirFS(root), "missing")
	assert.Error(t, err)
}
