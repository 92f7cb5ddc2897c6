package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Lexical(t *testing.T) {
	dir := filepath.FromSlash("/repo/src/app")

	assert.Equal(t, filepath.FromSlash("/repo/src/app/util.ts"), Resolve(dir, "./util.ts"))
	assert.Equal(t, filepath.FromSlash("/repo/src/lib/http.ts"), Resolve(dir, "../lib/http.ts"))
	assert.Equal(t, filepath.FromSlash("/repo/index.ts"), Resolve(dir, "../../index.ts"))
	assert.Equal(t, filepath.FromSlash("/repo/src/app/index.ts"), Resolve(dir, "index.ts"))
}

func TestResolve_NonexistentTargetStillResolves(t *testing.T) {
	tmp := t.TempDir()

	got := Resolve(tmp, "./missing/deeper/file.ts")
	assert.Equal(t, filepath.Join(tmp, "missing", "deeper", "file.ts"), got)
	_, err := os.Stat(got)
	assert.True(t, os.IsNotExist(err))
}

func TestResolve_RelativeDirBecomesAbsolute(t *testing.T) {
	got := Resolve("src", "./a.ts")
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "a.ts", filepath.Base(got))
}

func TestProjectRelativePath(t *testing.T) {
	root := filepath.FromSlash("/repo")

	tests := []struct {
		name string
		abs  string
		want string
	}{
		{"file at root", "/repo/a.ts", "a.ts"},
		{"nested file", "/repo/src/util/index.ts", "src/util/index.ts"},
		{"outside root", "/elsewhere/a.ts", "/elsewhere/a.ts"},
		{"sibling sharing a prefix", "/repo2/a.ts", "/repo2/a.ts"},
		{"root itself", "/repo", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ProjectRelativePath(root, filepath.FromSlash(tc.abs))
			assert.Equal(t, filepath.ToSlash(tc.want), filepath.ToSlash(got))
		})
	}
}

func TestProjectRelativePath_FilesystemRoot(t *testing.T) {
	sep := string(filepath.Separator)
	assert.Equal(t, "a/b.ts", ProjectRelativePath(sep, sep+filepath.Join("a", "b.ts")))
}

func TestNewRoot_CanonicalizesSymlinks(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "real")
	require.NoError(t, os.Mkdir(target, 0755))
	link := filepath.Join(tmp, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	root, err := NewRoot(link)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)
	assert.Equal(t, want, root.Path())
	assert.Equal(t, "x.ts", root.Key(filepath.Join(want, "x.ts")))
}

func TestNewRoot_MissingDirectory(t *testing.T) {
	_, err := NewRoot(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestCanonicalize_RelativePath(t *testing.T) {
	got, err := Canonicalize(".")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}
