package fsops

// FakeDeleter implements Deleter for testing
// Records all delete calls without performing actual deletions
type FakeDeleter struct {
	Calls []string

	// DirErr, when set, is returned by every RemoveDir call. Lets tests
	// simulate the "directory not empty" stop signal.
	DirErr error
}

func (f *FakeDeleter) Remove(path string) error {
	f.Calls = append(f.Calls, "rm:"+path)
	return nil
}

func (f *FakeDeleter) RemoveDir(path string) error {
	if f.DirErr != nil {
		return f.DirErr
	}
	f.Calls = append(f.Calls, "rmdir:"+path)
	return nil
}
