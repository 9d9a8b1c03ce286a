package walk

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Entry describes one filesystem object found beneath the managed root.
// Metadata is captured at walk time via lstat; symlinks are reported as
// themselves, never followed.
type Entry struct {
	Path    string
	Mode    fs.FileMode
	Size    int64
	ModTime time.Time
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Mode.IsDir()
}

// Counted reports whether the entry contributes to the aggregate size.
// Regular files and symlinks count; directories, devices, sockets and
// fifos do not.
func (e Entry) Counted() bool {
	return e.Mode.IsRegular() || e.Mode&fs.ModeSymlink != 0
}

// Walk returns every filesystem object strictly beneath root, in natural
// traversal order. The root itself is excluded. Any error while reading a
// directory or its metadata aborts the walk: a silently incomplete
// inventory would be worse than stopping.
func Walk(root string) ([]Entry, error) {
	var entries []Entry

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if path == root {
			return nil
		}
		entries = append(entries, Entry{
			Path:    path,
			Mode:    info.Mode(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// WalkByModTime returns the tree's entries sorted by modification time,
// oldest first. The sort is global across the whole tree, not per
// directory: eviction always targets the single oldest file anywhere
// under the root. Entries with equal mtimes keep their walk order.
func WalkByModTime(root string) ([]Entry, error) {
	entries, err := Walk(root)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ModTime.Before(entries[j].ModTime)
	})
	return entries, nil
}

// TotalSize sums the on-disk sizes of all counted entries.
func TotalSize(entries []Entry) uint64 {
	var total uint64
	for _, e := range entries {
		if e.Counted() {
			total += uint64(e.Size)
		}
	}
	return total
}
