package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// excludeMatcher tests root-relative, slash-separated paths against
// doublestar patterns.
type excludeMatcher []string

func newExcludeMatcher(patterns []string) (excludeMatcher, error) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	return excludeMatcher(patterns), nil
}

func (m excludeMatcher) match(relPath string) bool {
	for _, pattern := range m {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

// relSlash returns path relative to root with forward slashes.
func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// IsSourceFile reports whether name has the scanned extension and is not a
// declaration file.
func IsSourceFile(name string) bool {
	return strings.HasSuffix(name, SourceExtension) && !strings.HasSuffix(name, declarationSuffix)
}

// DiscoverFiles lists the source files under root, breadth-first. Entries
// within a directory are visited in name order, and a directory's files come
// before those of its subdirectories.
//
// Only regular files are returned; symlinks are neither followed nor
// reported. A directory that cannot be read aborts discovery with a
// *DirError.
func DiscoverFiles(root string, opts ScanOptions) ([]string, error) {
	exclude, err := newExcludeMatcher(opts.Exclude)
	if err != nil {
		return nil, err
	}

	var files []string
	queue := []string{root}

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, &DirError{Dir: dir, Err: err}
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if exclude.match(relSlash(root, path)) {
				continue
			}

			switch {
			case entry.IsDir():
				queue = append(queue, path)
			case entry.Type().IsRegular() && IsSourceFile(entry.Name()):
				files = append(files, path)
			}
		}
	}

	return files, nil
}
