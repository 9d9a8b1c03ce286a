package fsops

// Deleter abstracts filesystem delete operations
// Enables mocking in tests to prove dry-run never deletes
type Deleter interface {
	Remove(path string) error
	// RemoveDir removes a single directory. It must fail when the
	// directory is not empty; ancestor pruning relies on that failure
	// as its stop signal.
	RemoveDir(path string) error
}
