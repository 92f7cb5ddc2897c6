// Package resolver maps local import specifiers to absolute paths and
// absolute paths to the project-relative keys used as graph node identity.
//
// Resolution is lexical: targets do not need to exist on disk.
package resolver

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Canonicalize returns the absolute, symlink-free form of an existing path.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path of %q: %w", path, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("canonicalize %q: %w", path, err)
	}
	return canonical, nil
}

// Resolve joins specifier onto the importing file's directory, applying "."
// and ".." segments, and returns an absolute, cleaned path. The filesystem is
// not consulted.
func Resolve(importingDir, specifier string) string {
	joined := filepath.Join(importingDir, filepath.FromSlash(specifier))
	abs, err := filepath.Abs(joined)
	if err != nil {
		// Only fails when the working directory is gone; joined is the best we have.
		return joined
	}
	return abs
}

// ProjectRelativePath strips canonicalRoot and the separator after it from
// absPath and returns the remainder with forward slashes. A path outside the
// root is returned unchanged.
//
//	ProjectRelativePath("/repo", "/repo/src/a.ts")  -> "src/a.ts"
//	ProjectRelativePath("/repo", "/repo2/a.ts")     -> "/repo2/a.ts"
func ProjectRelativePath(canonicalRoot, absPath string) string {
	rest, ok := strings.CutPrefix(absPath, canonicalRoot)
	if !ok {
		return absPath
	}
	if rest == "" {
		return ""
	}

	if !strings.HasSuffix(canonicalRoot, string(filepath.Separator)) {
		if rest[0] != filepath.Separator {
			// Sibling with a shared name prefix, e.g. /repo2 against /repo.
			return absPath
		}
		rest = rest[1:]
	}

	return filepath.ToSlash(rest)
}

// Root is a canonicalized scan root.
type Root struct {
	path string
}

// NewRoot canonicalizes dir. dir must exist.
func NewRoot(dir string) (Root, error) {
	canonical, err := Canonicalize(dir)
	if err != nil {
		return Root{}, err
	}
	return Root{path: canonical}, nil
}

// Path returns the canonical root directory.
func (r Root) Path() string {
	return r.path
}

// Key returns the project-relative key of absPath.
func (r Root) Key(absPath string) string {
	return ProjectRelativePath(r.path, absPath)
}
