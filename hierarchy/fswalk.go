package hierarchy

import (
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/bmatcuk/doublestar/v4"
)

// FSSource discovers stage folders under a root directory laid out as
// <root>/Sala*/<folder>/<stage>/.
type FSSource struct {
	root string
}

// NewFSSource creates a filesystem source rooted at the given directory.
func NewFSSource(root string) *FSSource {
	return &FSSource{root: root}
}

// Entries scans the root for Sala*/folder/stage directories. Results are in
// lexical order. Non-directory matches are ignored.
func (s *FSSource) Entries() ([]Entry, error) {
	fsys := os.DirFS(s.root)

	matches, err := doublestar.Glob(fsys, "Sala*/*/*")
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.root, err)
	}

	var entries []Entry
	for _, match := range matches {
		info, err := fs.Stat(fsys, match)
		if err != nil || !info.IsDir() {
			continue
		}
		entries = append(entries, Entry{
			Sala:      path.Dir(path.Dir(match)),
			Folder:    path.Base(path.Dir(match)),
			StageName: path.Base(match),
			Path:      match,
		})
	}
	return entries, nil
}
