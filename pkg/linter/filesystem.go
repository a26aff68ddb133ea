package linter

import (
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/getumbrel/umbrel-linter/pkg/fileutil"
)

// FileSystem is the linter's read-only view of an app store checkout.
// Paths are slash separated and relative to the store root; "." is the
// root itself.
type FileSystem interface {
	// Read returns a file's content as text.
	Read(name string) (string, error)
	// List returns every file and directory below dir, relative to dir.
	List(dir string) ([]fileutil.Entry, error)
	// ReadDir returns the direct children of dir, relative to dir.
	ReadDir(dir string) ([]fileutil.Entry, error)
	// Exists reports whether name exists and whether it is a directory.
	Exists(name string) (exists, isDir bool)
}

// FSFileSystem adapts an fs.FS, e.g. an fstest.MapFS in tests.
type FSFileSystem struct {
	FS fs.FS
}

func clean(name string) (string, error) {
	name = path.Clean(strings.TrimPrefix(name, "/"))
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return name, nil
}

func (f FSFileSystem) Read(name string) (string, error) {
	name, err := clean(name)
	if err != nil {
		return "", err
	}
	data, err := fs.ReadFile(f.FS, name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f FSFileSystem) List(dir string) ([]fileutil.Entry, error) {
	dir, err := clean(dir)
	if err != nil {
		return nil, err
	}
	return fileutil.ListEntriesFS(f.FS, dir)
}

func (f FSFileSystem) ReadDir(dir string) ([]fileutil.Entry, error) {
	dir, err := clean(dir)
	if err != nil {
		return nil, err
	}
	return fileutil.ReadDirEntries(f.FS, dir)
}

func (f FSFileSystem) Exists(name string) (bool, bool) {
	name, err := clean(name)
	if err != nil {
		return false, false
	}
	kind, ok := fileutil.KindOf(f.FS, name)
	return ok, kind == fileutil.KindDirectory
}

// OSFileSystem reads from a directory on disk.
type OSFileSystem struct {
	Root string
}

func (o OSFileSystem) dirFS() FSFileSystem { return FSFileSystem{FS: os.DirFS(o.Root)} }

func (o OSFileSystem) Read(name string) (string, error) { return o.dirFS().Read(name) }

func (o OSFileSystem) List(dir string) ([]fileutil.Entry, error) { return o.dirFS().List(dir) }

func (o OSFileSystem) ReadDir(dir string) ([]fileutil.Entry, error) { return o.dirFS().ReadDir(dir) }

func (o OSFileSystem) Exists(name string) (bool, bool) { return o.dirFS().Exists(name) }
