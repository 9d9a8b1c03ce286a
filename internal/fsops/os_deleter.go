package fsops

import "os"

// OSDeleter implements Deleter using real os package calls
type OSDeleter struct{}

func (OSDeleter) Remove(path string) error {
	return os.Remove(path)
}

// RemoveDir uses os.Remove, not os.RemoveAll: it fails on a non-empty
// directory, which is exactly the contract Deleter requires.
func (OSDeleter) RemoveDir(path string) error {
	return os.Remove(path)
}
