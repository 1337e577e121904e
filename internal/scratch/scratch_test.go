package scratch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirLifecycle(t *testing.T) {
	root := t.TempDir()
	d, err := New(root, "session-1")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	p, err := d.Write("a.png", []byte("abc"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := d.Read(p)
	if err != nil || string(got) != "abc" {
		t.Fatalf("Read() = %q, %v", got, err)
	}
	if d.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", d.Pending())
	}

	if err := d.Remove(p); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := d.Remove(p); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", d.Pending())
	}

	if _, err := d.Write("b.png", []byte("x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := d.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(d.Path()); !os.IsNotExist(err) {
		t.Errorf("scratch dir still present: %v", err)
	}
}

func TestNewRejectsPathLikeIDs(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "tmp")
	sibling := filepath.Join(parent, "config.yaml")
	if err := os.WriteFile(sibling, []byte("server: {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"", ".", "..", "../escape", "a/b", `a\b`, "x\x00y", "tab\tid"} {
		t.Run(id, func(t *testing.T) {
			d, err := New(root, id)
			if err == nil {
				d.Cleanup()
				t.Fatalf("New(%q) expected error", id)
			}
		})
	}

	if _, err := os.Stat(sibling); err != nil {
		t.Errorf("file next to the scratch root was touched: %v", err)
	}
}

func TestCleanupStaysInsideRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "tmp")
	other, err := New(root, "other")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.Write("keep.png", []byte("x")); err != nil {
		t.Fatal(err)
	}

	d, err := New(root, "mine")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(d.Path()) != root {
		t.Errorf("Path() = %s, want a direct child of %s", d.Path(), root)
	}
	if err := d.Cleanup(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(other.Path(), "keep.png")); err != nil {
		t.Errorf("another session's file was removed: %v", err)
	}
}
