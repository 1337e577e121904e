// Package scratch manages per-session temporary files for image work.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"
)

// Dir is a session scoped scratch directory. Files written through it are
// tracked so Cleanup can remove them even when callers bail out early.
type Dir struct {
	path string

	mu    sync.Mutex
	files map[string]struct{}
}

// New creates <root>/<sessionID>. An empty root uses os.TempDir()/viralpost.
func New(root, sessionID string) (*Dir, error) {
	if root == "" {
		root = filepath.Join(os.TempDir(), "viralpost")
	}
	if !validName(sessionID) {
		return nil, fmt.Errorf("invalid scratch session id %q", sessionID)
	}
	root = filepath.Clean(root)
	path := filepath.Join(root, sessionID)
	// The directory must be a direct child of root; Cleanup removes it recursively.
	if filepath.Dir(path) != root {
		return nil, fmt.Errorf("scratch session id %q escapes %s", sessionID, root)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Dir{path: path, files: make(map[string]struct{})}, nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return false
	}
	return strings.IndexFunc(name, unicode.IsControl) < 0
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// Write stores data as name inside the directory and returns the full path.
func (d *Dir) Write(name string, data []byte) (string, error) {
	full := filepath.Join(d.path, filepath.Base(name))
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write scratch file: %w", err)
	}
	d.mu.Lock()
	d.files[full] = struct{}{}
	d.mu.Unlock()
	return full, nil
}

// Read returns the contents of a file previously written.
func (d *Dir) Read(full string) ([]byte, error) {
	return os.ReadFile(full)
}

// Remove deletes one file. Missing files are not an error.
func (d *Dir) Remove(full string) error {
	d.mu.Lock()
	delete(d.files, full)
	d.mu.Unlock()
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Pending reports how many written files have not been removed.
func (d *Dir) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.files)
}

// Cleanup removes every tracked file and the directory itself.
func (d *Dir) Cleanup() error {
	d.mu.Lock()
	d.files = make(map[string]struct{})
	d.mu.Unlock()
	return os.RemoveAll(d.path)
}
