package evict

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dircap/internal/config"
)

func TestPruneCascadesThroughEmptiedAncestors(t *testing.T) {
	root := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeFile(t, filepath.Join(root, "x", "y", "z", "only.txt"), 100, base)

	cfg := &config.Config{Root: root, GoalBytes: 0}
	engine := New(cfg, quietLogger())

	if err := engine.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// The cascade empties z, then y, then x, and finally removes the
	// managed root itself.
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("Expected the fully emptied root to be removed, stat err: %v", err)
	}
}

func TestPruneStopsAtFirstNonEmptyAncestor(t *testing.T) {
	root := t.TempDir()
	t0 := time.Now().Add(-2 * time.Hour)
	t1 := time.Now().Add(-1 * time.Hour)

	writeFile(t, filepath.Join(root, "a", "b", "old.txt"), 100, t0)
	writeFile(t, filepath.Join(root, "a", "keep.txt"), 100, t1)

	cfg := &config.Config{Root: root, GoalBytes: 100}
	engine := New(cfg, quietLogger())

	if err := engine.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "a", "b")); !os.IsNotExist(err) {
		t.Errorf("Expected emptied directory a/b to be pruned")
	}
	if _, err := os.Stat(filepath.Join(root, "a", "keep.txt")); err != nil {
		t.Errorf("Expected a/keep.txt to survive: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "a")); err != nil {
		t.Errorf("Expected non-empty directory a/ to remain: %v", err)
	}
}

func TestKeepParentsLeavesEmptyDirectories(t *testing.T) {
	root := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeFile(t, filepath.Join(root, "x", "y", "only.txt"), 100, base)

	cfg := &config.Config{Root: root, GoalBytes: 0, KeepParents: true}
	engine := New(cfg, quietLogger())

	if err := engine.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "x", "y", "only.txt")); !os.IsNotExist(err) {
		t.Errorf("Expected the file to be deleted")
	}
	for _, dir := range []string{
		filepath.Join(root, "x", "y"),
		filepath.Join(root, "x"),
		root,
	} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("Expected directory %s to remain with keep-parents: %v", dir, err)
		}
	}
}
