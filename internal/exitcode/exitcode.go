// Package exitcode defines exit codes for the board client.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates bad arguments or a rejected request (unknown
	// task, invalid field, ambiguous reference).
	UserError = 1

	// AuthError indicates a missing password, failed login or unreadable
	// client config.
	AuthError = 2

	// BackendError indicates a server or network failure.
	BackendError = 3
)
