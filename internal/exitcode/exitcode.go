// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error: bad flags or config, an invalid
	// field value, or an unknown task id.
	UserError = 1

	// StoreError indicates the store file is corrupt or could not be
	// read or written.
	StoreError = 2
)
