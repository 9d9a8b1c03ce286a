package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Config is the immutable run configuration, constructed once at startup.
type Config struct {
	// Root is the directory whose aggregate size is capped. Must exist
	// and be a directory; cleaned to absolute form by Finalize.
	Root string

	// GoalBytes is the size the tree is reduced to (or below).
	GoalBytes uint64

	// DryRun simulates deletions without mutating the filesystem.
	DryRun bool

	// KeepParents suppresses pruning of emptied ancestor directories.
	KeepParents bool

	// HistoryPath, when set, names a SQLite database recording evictions.
	HistoryPath string

	// MetricsFile, when set, names a node_exporter textfile to write run
	// metrics to on completion.
	MetricsFile string

	Verbose bool
}

// File holds defaults loaded from an optional YAML file. Explicit
// command-line flags override anything set here.
type File struct {
	Size        string `yaml:"size"`
	DryRun      *bool  `yaml:"dry_run"`
	KeepParents *bool  `yaml:"keep_parents"`
	HistoryPath string `yaml:"history_path"`
	MetricsFile string `yaml:"metrics_file"`
}

var (
	errNoRoot   = errors.New("a target directory is required")
	errNotDir   = errors.New("target is not a directory")
	errZeroPath = errors.New("path must not be empty")
)

// LoadFile reads flag defaults from a YAML file.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	return decode(f)
}

func decode(r io.Reader) (*File, error) {
	file := &File{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(file); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return file, nil
}

// ParseSize parses a human-readable byte size ("10MB", "1GiB", "512")
// into a byte count. SI suffixes are decimal, IEC suffixes binary.
func ParseSize(s string) (uint64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", s, err)
	}
	return n, nil
}

// Finalize validates the configuration and normalizes the root to a
// cleaned absolute path.
func (c *Config) Finalize() error {
	if c.Root == "" {
		return errNoRoot
	}
	root, err := cleanAbsolute(c.Root)
	if err != nil {
		return err
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", errNotDir, root)
	}
	c.Root = root
	return nil
}

func cleanAbsolute(p string) (string, error) {
	if p == "" {
		return "", errZeroPath
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return filepath.Clean(abs), nil
}
