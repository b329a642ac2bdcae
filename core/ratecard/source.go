package ratecard

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"vsc-rating/internal/errors"
)

// DefaultPattern matches every YAML rate card below the source root.
const DefaultPattern = "**/*.{yaml,yml}"

// Source loads rate card tables from somewhere.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]*Table, error)
}

// FileSource discovers rate cards in a directory tree.
type FileSource struct {
	fsys    fs.FS
	root    string
	pattern string
}

// NewFileSource creates a source over dir. An empty pattern means DefaultPattern.
func NewFileSource(dir, pattern string) *FileSource {
	return NewFSSource(os.DirFS(dir), dir, pattern)
}

// NewFSSource creates a source over an arbitrary filesystem.
func NewFSSource(fsys fs.FS, root, pattern string) *FileSource {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &FileSource{fsys: fsys, root: root, pattern: pattern}
}

// Name returns the source name
func (s *FileSource) Name() string {
	return "file:" + s.root
}

// Load parses every matching file. Any unreadable or invalid file fails the
// whole load.
func (s *FileSource) Load(ctx context.Context) ([]*Table, error) {
	matches, err := doublestar.Glob(s.fsys, s.pattern)
	if err != nil {
		return nil, errors.Config(fmt.Sprintf("bad rate card pattern %q", s.pattern), err)
	}
	sort.Strings(matches)

	tables := make([]*Table, 0, len(matches))
	for _, name := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(s.fsys, name)
		if err != nil {
			return nil, errors.Config(fmt.Sprintf("cannot read rate card %s", name), err)
		}
		t, err := Parse(data, path.Join(s.root, name))
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// StaticSource serves tables that were built in memory.
type StaticSource []*Table

// Name returns the source name
func (s StaticSource) Name() string { return "static" }

// Load returns the tables as-is.
func (s StaticSource) Load(context.Context) ([]*Table, error) {
	return s, nil
}
