// Package sandbox confines filesystem operations to a fixed root
// directory. Every user-supplied path is canonicalized (".", "..",
// symlinks) and checked against the root before any I/O happens;
// escapes fail closed with a PathTraversal error, never a warning.
package sandbox

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Root is a sandboxed filesystem root. It is fixed at construction and
// never mutated, so concurrent use needs no locking.
type Root struct {
	path string
}

// New creates a sandbox rooted at dir. The directory must exist; the
// stored root is absolute with symlinks resolved.
func New(dir string) (*Root, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("sandbox root is required")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sandbox root: %w", err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize sandbox root: %w", err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to stat sandbox root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("sandbox root is not a directory: %s", dir)
	}

	return &Root{path: canonical}, nil
}

// Path returns the canonical root directory.
func (r *Root) Path() string { return r.path }

// Resolve maps a user-supplied path onto an absolute path inside the
// root. Absolute inputs, ".." sequences and symlink indirection are all
// neutralized by canonicalization before the boundary check.
func (r *Root) Resolve(userPath string) (string, error) {
	candidate := strings.TrimSpace(userPath)
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(r.path, candidate)
	}
	candidate = filepath.Clean(candidate)

	// The target may not exist yet (writes), so canonicalize the
	// nearest existing ancestor and rejoin the remainder.
	canonical, err := canonicalize(candidate)
	if err != nil {
		return "", wrapOSError("resolve", userPath, err)
	}

	if !within(r.path, canonical) {
		return "", traversalError("resolve", userPath)
	}
	return canonical, nil
}

func canonicalize(path string) (string, error) {
	var tail []string
	current := path

	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", err
		}
		tail = append([]string{filepath.Base(current)}, tail...)
		current = parent
	}
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Entry describes one directory listing item.
type Entry struct {
	Path     string    `json:"path"`
	Type     string    `json:"type"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Info describes a single file or directory.
type Info struct {
	Path     string    `json:"path"`
	Type     string    `json:"type"`
	Size     int64     `json:"size"`
	Mode     string    `json:"mode"`
	Modified time.Time `json:"modified"`
}

// Read returns the contents of a file inside the root.
func (r *Root) Read(path string) ([]byte, error) {
	target, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, wrapOSError("read", path, err)
	}
	if info.IsDir() {
		return nil, wrapOSError("read", path, fmt.Errorf("not a file"))
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, wrapOSError("read", path, err)
	}
	return data, nil
}

// Write stores content at a path inside the root, creating parent
// directories as needed.
func (r *Root) Write(path string, content []byte) error {
	target, err := r.Resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return wrapOSError("write", path, err)
	}
	if err := os.WriteFile(target, content, 0644); err != nil {
		return wrapOSError("write", path, err)
	}
	return nil
}

// Delete removes a file or empty directory inside the root.
func (r *Root) Delete(path string) error {
	target, err := r.Resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		return wrapOSError("delete", path, err)
	}
	return nil
}

// Copy duplicates a file inside the root.
func (r *Root) Copy(src, dst string) error {
	srcTarget, err := r.Resolve(src)
	if err != nil {
		return err
	}
	dstTarget, err := r.Resolve(dst)
	if err != nil {
		return err
	}

	in, err := os.Open(srcTarget)
	if err != nil {
		return wrapOSError("copy", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dstTarget), 0755); err != nil {
		return wrapOSError("copy", dst, err)
	}
	out, err := os.Create(dstTarget)
	if err != nil {
		return wrapOSError("copy", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return wrapOSError("copy", dst, err)
	}
	if err := out.Close(); err != nil {
		return wrapOSError("copy", dst, err)
	}
	return nil
}

// Move renames a file or directory inside the root.
func (r *Root) Move(src, dst string) error {
	srcTarget, err := r.Resolve(src)
	if err != nil {
		return err
	}
	dstTarget, err := r.Resolve(dst)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dstTarget), 0755); err != nil {
		return wrapOSError("move", dst, err)
	}
	if err := os.Rename(srcTarget, dstTarget); err != nil {
		return wrapOSError("move", src, err)
	}
	return nil
}

// ListDir lists a directory inside the root. Entry paths are relative
// to the root. With recursive set, the whole subtree is walked.
func (r *Root) ListDir(path string, recursive bool) ([]Entry, error) {
	target, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, wrapOSError("list", path, err)
	}
	if !info.IsDir() {
		return nil, wrapOSError("list", path, fmt.Errorf("not a directory"))
	}

	entries := []Entry{}
	if recursive {
		err = filepath.WalkDir(target, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if p == target {
				return nil
			}
			entry, entryErr := r.entryFor(p, d)
			if entryErr != nil {
				return entryErr
			}
			entries = append(entries, entry)
			return nil
		})
		if err != nil {
			return nil, wrapOSError("list", path, err)
		}
		return entries, nil
	}

	dirEntries, err := os.ReadDir(target)
	if err != nil {
		return nil, wrapOSError("list", path, err)
	}
	for _, d := range dirEntries {
		entry, entryErr := r.entryFor(filepath.Join(target, d.Name()), d)
		if entryErr != nil {
			return nil, wrapOSError("list", path, entryErr)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *Root) entryFor(path string, d fs.DirEntry) (Entry, error) {
	rel, err := filepath.Rel(r.path, path)
	if err != nil {
		return Entry{}, err
	}
	info, err := d.Info()
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{Path: rel, Type: "file", Modified: info.ModTime()}
	if d.IsDir() {
		entry.Type = "directory"
	} else {
		entry.Size = info.Size()
	}
	return entry, nil
}

// Find walks the root and returns root-relative paths of files whose
// base name matches the glob pattern.
func (r *Root) Find(pattern string) ([]string, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("pattern is required")
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	matches := []string{}
	err := filepath.WalkDir(r.path, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ok, matchErr := filepath.Match(pattern, d.Name())
		if matchErr != nil {
			return matchErr
		}
		if ok {
			rel, relErr := filepath.Rel(r.path, p)
			if relErr != nil {
				return relErr
			}
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, wrapOSError("find", pattern, err)
	}
	return matches, nil
}

// Exists reports whether a path exists inside the root. Paths outside
// the root report false rather than failing, matching the discovery
// semantics of path_exists.
func (r *Root) Exists(path string) (bool, error) {
	target, err := r.Resolve(path)
	if err != nil {
		var kindedErr *Error
		if errors.As(err, &kindedErr) && errors.Is(kindedErr.Err, ErrPathTraversal) {
			return false, nil
		}
		return false, err
	}

	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, wrapOSError("stat", path, err)
	}
	return true, nil
}

// Stat returns metadata about a file or directory inside the root.
func (r *Root) Stat(path string) (Info, error) {
	target, err := r.Resolve(path)
	if err != nil {
		return Info{}, err
	}

	info, err := os.Stat(target)
	if err != nil {
		return Info{}, wrapOSError("stat", path, err)
	}
	rel, err := filepath.Rel(r.path, target)
	if err != nil {
		return Info{}, wrapOSError("stat", path, err)
	}

	out := Info{
		Path:     rel,
		Type:     "file",
		Mode:     info.Mode().String(),
		Modified: info.ModTime(),
	}
	if info.IsDir() {
		out.Type = "directory"
	} else {
		out.Size = info.Size()
	}
	return out, nil
}
