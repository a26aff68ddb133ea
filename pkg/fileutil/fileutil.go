// Package fileutil lists and inspects app directories through fs.FS.
package fileutil

import (
	"io/fs"
	"slices"
	"strings"

	"github.com/getumbrel/umbrel-linter/pkg/logger"
)

var log = logger.New("fileutil:fileutil")

// Kind distinguishes files from directories in a listing.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// Entry is one item of a recursive listing. Path is slash separated and
// relative to the listed root.
type Entry struct {
	Path string
	Kind Kind
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Kind == KindDirectory }

// KindOf reports whether name exists inside fsys and what it is. Missing
// and unreadable paths report ok=false.
func KindOf(fsys fs.FS, name string) (kind Kind, ok bool) {
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		return KindDirectory, true
	}
	return KindFile, true
}

// ReadDirEntries returns the direct children of dir inside fsys, sorted by
// name.
func ReadDirEntries(fsys fs.FS, dir string) ([]Entry, error) {
	dirEntries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		entries = append(entries, Entry{Path: d.Name(), Kind: kindOfEntry(d)})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Path, b.Path) })
	return entries, nil
}

func kindOfEntry(d fs.DirEntry) Kind {
	if d.IsDir() {
		return KindDirectory
	}
	return KindFile
}

// ListEntriesFS walks dir inside fsys and returns every file and directory
// below it, relative to dir and sorted by path. Unreadable subtrees are
// skipped; only a missing or unreadable root is an error.
func ListEntriesFS(fsys fs.FS, root string) ([]Entry, error) {
	var entries []Entry
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			log.Printf("Skipping unreadable path %s: %v", p, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if p == root {
			return nil
		}
		rel := p
		if root != "." {
			rel = strings.TrimPrefix(p, root+"/")
		}
		entries = append(entries, Entry{Path: rel, Kind: kindOfEntry(d)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Path, b.Path) })
	log.Printf("Listed %d entries under %s", len(entries), root)
	return entries, nil
}

// EmptyDirectories returns the directory entries that have no descendants
// in entries.
func EmptyDirectories(entries []Entry) []Entry {
	var empty []Entry
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		prefix := e.Path + "/"
		hasChild := slices.ContainsFunc(entries, func(other Entry) bool {
			return strings.HasPrefix(other.Path, prefix)
		})
		if !hasChild {
			empty = append(empty, e)
		}
	}
	return empty
}

// ContainsPath reports whether entries lists p, ignoring a trailing slash.
func ContainsPath(entries []Entry, p string) bool {
	p = strings.TrimSuffix(p, "/")
	return slices.ContainsFunc(entries, func(e Entry) bool { return e.Path == p })
}
