package walker

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createFile(t *testing.T, root, path, content string) {
	t.Helper()
	fullPath := filepath.Join(root, filepath.FromSlash(path))
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
	require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "file1.txt", "")
	createFile(t, root, "file2.txt", "")
	createFile(t, root, "subdir/file3.txt", "")

	files, err := Scan(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"file1.txt", "file2.txt", "subdir/file3.txt"}, files)
}

func TestScanErrors(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "file.txt", "")

	_, err := Scan(filepath.Join(root, "nonexistent_directory"), Options{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Scan(filepath.Join(root, "file.txt"), Options{})
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestScanSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on windows")
	}

	root := t.TempDir()
	outside := t.TempDir()
	createFile(t, outside, "linked/inner.txt", "")
	createFile(t, root, "real.txt", "")
	require.NoError(t, os.Symlink(filepath.Join(outside, "linked"), filepath.Join(root, "link")))
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "alias.txt")))
	// A loop back to the root must not be walked twice.
	require.NoError(t, os.Symlink(root, filepath.Join(root, "loop")))

	files, err := Scan(root, Options{FollowSymlinks: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"alias.txt", "link/inner.txt", "real.txt"}, files)

	files, err = Scan(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"real.txt"}, files)
}

func TestScanSymlinkToSibling(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on windows")
	}

	root := t.TempDir()
	createFile(t, root, "real/a.txt", "")
	// "link" sorts before "real"; both copies are listed.
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "real", "up")))

	files, err := Scan(root, Options{FollowSymlinks: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"link/a.txt", "real/a.txt"}, files)
}

func TestNewMatcher(t *testing.T) {
	t.Run("gitignore support", func(t *testing.T) {
		root := t.TempDir()
		createFile(t, root, ".gitignore", "*.log\n/tmp/")
		createFile(t, root, "test.log", "")
		createFile(t, root, "tmp/ignore.txt", "")
		createFile(t, root, "keep.txt", "")
		createFile(t, root, "image.png", "")

		matcher, used, err := NewMatcher(root, IgnoreRules{})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, ".gitignore"), used)

		files, err := Scan(root, Options{Matcher: matcher})
		require.NoError(t, err)
		assert.Equal(t, []string{".gitignore", "keep.txt"}, files)
	})

	t.Run("project ignore file wins over gitignore", func(t *testing.T) {
		root := t.TempDir()
		createFile(t, root, ".gitignore", "keep.txt")
		createFile(t, root, IgnoreFileName, "drop.txt")
		createFile(t, root, "keep.txt", "")
		createFile(t, root, "drop.txt", "")

		matcher, used, err := NewMatcher(root, IgnoreRules{})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, IgnoreFileName), used)

		files, err := Scan(root, Options{Matcher: matcher})
		require.NoError(t, err)
		assert.Equal(t, []string{".gitignore", "keep.txt"}, files)
	})

	t.Run("custom ignore file skips built-in list", func(t *testing.T) {
		root := t.TempDir()
		ignoreFile := filepath.Join(t.TempDir(), "custom.ignore")
		require.NoError(t, os.WriteFile(ignoreFile, []byte("*.tmp\n"), 0o644))
		createFile(t, root, "a.tmp", "")
		createFile(t, root, "b.log", "")

		matcher, _, err := NewMatcher(root, IgnoreRules{IgnoreFile: ignoreFile})
		require.NoError(t, err)

		files, err := Scan(root, Options{Matcher: matcher})
		require.NoError(t, err)
		assert.Equal(t, []string{"b.log"}, files)
	})

	t.Run("output file is ignored", func(t *testing.T) {
		root := t.TempDir()
		createFile(t, root, "out/result.xml", "")
		createFile(t, root, "main.txt", "")

		matcher, _, err := NewMatcher(root, IgnoreRules{OutputFile: filepath.Join(root, "out", "result.xml")})
		require.NoError(t, err)

		files, err := Scan(root, Options{Matcher: matcher})
		require.NoError(t, err)
		assert.Equal(t, []string{"main.txt"}, files)
	})

	t.Run("missing ignore file", func(t *testing.T) {
		_, _, err := NewMatcher(t.TempDir(), IgnoreRules{IgnoreFile: "does-not-exist"})
		assert.Error(t, err)
	})
}
