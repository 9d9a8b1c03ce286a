package exitcodes

// Exit codes for the dircap CLI
// These codes form the operational contract with cron jobs and scripts
const (
	Success      = 0 // Successful execution, including "nothing to do"
	InvalidArgs  = 2 // Bad flags, unparsable size, or unusable target directory
	RuntimeError = 4 // I/O failure during traversal, metadata read, or deletion
)
