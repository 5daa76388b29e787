package sandbox

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthik-ravi-1537/mcp-demo/pkg/protocol"
)

func newTestRoot(t *testing.T) *Root {
	t.Helper()
	root, err := New(t.TempDir())
	require.NoError(t, err)
	return root
}

func assertKind(t *testing.T, err error, kind string) {
	t.Helper()
	var sbErr *Error
	require.ErrorAs(t, err, &sbErr)
	assert.Equal(t, kind, sbErr.Kind)
}

func TestNew_Validation(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	_, err = New(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = New(file)
	assert.Error(t, err)
}

func TestResolve_Traversal(t *testing.T) {
	root := newTestRoot(t)

	tests := []string{
		"../secret.txt",
		"../../etc/passwd",
		"a/../../outside",
		"/etc/passwd",
	}

	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			_, err := root.Resolve(path)
			require.Error(t, err)
			assertKind(t, err, protocol.ErrKindPathTraversal)
			assert.ErrorIs(t, err, ErrPathTraversal)
		})
	}
}

func TestResolve_InsideRoot(t *testing.T) {
	root := newTestRoot(t)

	tests := []string{
		"file.txt",
		"./file.txt",
		"sub/dir/file.txt",
		"sub/../file.txt",
	}

	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			resolved, err := root.Resolve(path)
			require.NoError(t, err)
			rel, err := filepath.Rel(root.Path(), resolved)
			require.NoError(t, err)
			assert.NotContains(t, rel, "..")
		})
	}
}

func TestResolve_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks not reliable on windows")
	}

	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("secret"), 0644))

	root := newTestRoot(t)
	require.NoError(t, os.Symlink(outside, filepath.Join(root.Path(), "escape")))

	_, err := root.Read("escape/secret.txt")
	require.Error(t, err)
	assertKind(t, err, protocol.ErrKindPathTraversal)
}

func TestReadWrite(t *testing.T) {
	root := newTestRoot(t)

	require.NoError(t, root.Write("notes/hello.txt", []byte("hello world")))

	data, err := root.Read("notes/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestRead_NotFound(t *testing.T) {
	root := newTestRoot(t)

	_, err := root.Read("missing.txt")
	require.Error(t, err)
	assertKind(t, err, protocol.ErrKindNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRead_Directory(t *testing.T) {
	root := newTestRoot(t)
	require.NoError(t, os.Mkdir(filepath.Join(root.Path(), "sub"), 0755))

	_, err := root.Read("sub")
	assert.Error(t, err)
}

func TestRead_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("permission bits not enforced")
	}

	root := newTestRoot(t)
	target := filepath.Join(root.Path(), "locked.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0000))

	_, err := root.Read("locked.txt")
	require.Error(t, err)
	assertKind(t, err, protocol.ErrKindPermissionDenied)
}

func TestDelete(t *testing.T) {
	root := newTestRoot(t)
	require.NoError(t, root.Write("doomed.txt", []byte("x")))

	require.NoError(t, root.Delete("doomed.txt"))

	exists, err := root.Exists("doomed.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	err = root.Delete("doomed.txt")
	require.Error(t, err)
	assertKind(t, err, protocol.ErrKindNotFound)
}

func TestCopy(t *testing.T) {
	root := newTestRoot(t)
	require.NoError(t, root.Write("src.txt", []byte("payload")))

	require.NoError(t, root.Copy("src.txt", "deep/dst.txt"))

	data, err := root.Read("deep/dst.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	// Source survives a copy.
	_, err = root.Read("src.txt")
	assert.NoError(t, err)
}

func TestMove(t *testing.T) {
	root := newTestRoot(t)
	require.NoError(t, root.Write("src.txt", []byte("payload")))

	require.NoError(t, root.Move("src.txt", "moved/dst.txt"))

	exists, err := root.Exists("src.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	data, err := root.Read("moved/dst.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestListDir(t *testing.T) {
	root := newTestRoot(t)
	require.NoError(t, root.Write("a.txt", []byte("a")))
	require.NoError(t, root.Write("sub/b.txt", []byte("b")))

	entries, err := root.ListDir(".", false)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byPath := map[string]Entry{}
	for _, e := range entries {
		byPath[e.Path] = e
	}
	assert.Equal(t, "file", byPath["a.txt"].Type)
	assert.Equal(t, int64(1), byPath["a.txt"].Size)
	assert.Equal(t, "directory", byPath["sub"].Type)
}

func TestListDir_Recursive(t *testing.T) {
	root := newTestRoot(t)
	require.NoError(t, root.Write("a.txt", []byte("a")))
	require.NoError(t, root.Write("sub/b.txt", []byte("b")))

	entries, err := root.ListDir(".", true)
	require.NoError(t, err)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.ElementsMatch(t, []string{"a.txt", "sub", filepath.Join("sub", "b.txt")}, paths)
}

func TestListDir_NotADirectory(t *testing.T) {
	root := newTestRoot(t)
	require.NoError(t, root.Write("a.txt", []byte("a")))

	_, err := root.ListDir("a.txt", false)
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	root := newTestRoot(t)
	require.NoError(t, root.Write("readme.md", []byte("x")))
	require.NoError(t, root.Write("docs/guide.md", []byte("x")))
	require.NoError(t, root.Write("main.go", []byte("x")))

	matches, err := root.Find("*.md")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"readme.md", filepath.Join("docs", "guide.md")}, matches)

	matches, err = root.Find("*.rs")
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = root.Find("")
	assert.Error(t, err)
}

func TestExists(t *testing.T) {
	root := newTestRoot(t)
	require.NoError(t, root.Write("here.txt", []byte("x")))

	exists, err := root.Exists("here.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = root.Exists("gone.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	// Escaping paths report false instead of erroring.
	exists, err = root.Exists("../outside.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStat(t *testing.T) {
	root := newTestRoot(t)
	require.NoError(t, root.Write("info.txt", []byte("12345")))

	info, err := root.Stat("info.txt")
	require.NoError(t, err)
	assert.Equal(t, "info.txt", info.Path)
	assert.Equal(t, "file", info.Type)
	assert.Equal(t, int64(5), info.Size)
	assert.False(t, info.Modified.IsZero())

	info, err = root.Stat(".")
	require.NoError(t, err)
	assert.Equal(t, "directory", info.Type)

	_, err = root.Stat("gone.txt")
	require.Error(t, err)
	assertKind(t, err, protocol.ErrKindNotFound)
}

func TestErrorReportsUserPath(t *testing.T) {
	root := newTestRoot(t)

	_, err := root.Read("../secret.txt")
	require.Error(t, err)

	var sbErr *Error
	require.True(t, errors.As(err, &sbErr))
	assert.Equal(t, "../secret.txt", sbErr.Path)
	assert.NotContains(t, sbErr.Error(), root.Path())
}
