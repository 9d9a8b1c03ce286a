package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath = errors.New("invalid path")
	ErrOutsideRoot = errors.New("outside managed root")
)

// Validator enforces the safety contract for all delete operations:
// every target must lie within the single managed root.
type Validator struct {
	Root string
}

// NewValidator creates a validator for the given managed root.
func NewValidator(root string) *Validator {
	return &Validator{Root: filepath.Clean(root)}
}

// ValidateDeleteTarget is the single source of truth for delete
// authorization. Returns a typed error on violation.
func (v *Validator) ValidateDeleteTarget(path string) error {
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}
	if !HasPathPrefix(p, v.Root) {
		return ErrOutsideRoot
	}
	return nil
}

// NormalizePath converts path to absolute, cleaned form
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	return filepath.Clean(abs), nil
}

// HasPathPrefix reports whether path is root itself or lies beneath it.
// The root satisfying its own prefix is deliberate: ancestor pruning may
// remove the managed root once it empties.
func HasPathPrefix(path, root string) bool {
	root = filepath.Clean(root)
	path = filepath.Clean(path)
	if path == root {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return !startsWithDotDot(rel)
}

func startsWithDotDot(rel string) bool {
	if rel == ".." {
		return true
	}
	prefix := ".." + string(os.PathSeparator)
	return strings.HasPrefix(rel, prefix)
}
