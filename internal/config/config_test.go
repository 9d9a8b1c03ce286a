package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSize(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"512", 512},
		{"10MB", 10 * 1000 * 1000},
		{"10MiB", 10 * 1024 * 1024},
		{"1GiB", 1024 * 1024 * 1024},
		{"0", 0},
	}
	for _, c := range cases {
		got, err := ParseSize(c.in)
		if err != nil {
			t.Errorf("ParseSize(%q) failed: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseSize(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseSizeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "lots", "-5MB", "10XB"} {
		if _, err := ParseSize(in); err == nil {
			t.Errorf("ParseSize(%q) should fail", in)
		}
	}
}

func TestFinalizeNormalizesRoot(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	rel, err := filepath.Rel(wd, dir)
	if err != nil {
		t.Skipf("Cannot express %s relative to %s", dir, wd)
	}

	cfg := &Config{Root: rel, GoalBytes: 1}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if !filepath.IsAbs(cfg.Root) {
		t.Errorf("Expected an absolute root, got %s", cfg.Root)
	}
}

func TestFinalizeRejectsMissingRoot(t *testing.T) {
	cfg := &Config{Root: filepath.Join(t.TempDir(), "nope"), GoalBytes: 1}
	err := cfg.Finalize()
	if err == nil {
		t.Fatal("Expected an error for a missing root")
	}
	if !strings.Contains(err.Error(), "stat") {
		t.Errorf("Error should identify the failing operation, got: %v", err)
	}
}

func TestFinalizeRejectsNonDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := &Config{Root: file, GoalBytes: 1}
	if err := cfg.Finalize(); err == nil {
		t.Fatal("Expected an error for a non-directory root")
	}
}

func TestFinalizeRejectsEmptyRoot(t *testing.T) {
	cfg := &Config{GoalBytes: 1}
	if err := cfg.Finalize(); err == nil {
		t.Fatal("Expected an error for an empty root")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dircap.yaml")
	content := `
size: 250MB
dry_run: true
keep_parents: false
history_path: /var/lib/dircap/evictions.db
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	file, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if file.Size != "250MB" {
		t.Errorf("Expected size 250MB, got %q", file.Size)
	}
	if file.DryRun == nil || !*file.DryRun {
		t.Errorf("Expected dry_run true, got %v", file.DryRun)
	}
	if file.KeepParents == nil || *file.KeepParents {
		t.Errorf("Expected keep_parents false, got %v", file.KeepParents)
	}
	if file.HistoryPath != "/var/lib/dircap/evictions.db" {
		t.Errorf("Unexpected history_path %q", file.HistoryPath)
	}
	if file.MetricsFile != "" {
		t.Errorf("Expected unset metrics_file, got %q", file.MetricsFile)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected an error for a missing config file")
	}
}
