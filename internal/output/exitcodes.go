package output

import "errors"

// Exit codes:
// 0 = Success
// 1 = User error (bad args, unknown feature/agent, empty marker)
// 2 = System error (file unreadable/unwritable, probe failed)
// 3 = Conflict (duplicate managed block, manifest already exists)
// 4 = External tool error (package manager or delegated CLI exited non-zero)
const (
	ExitSuccess      = 0
	ExitUserError    = 1
	ExitSystemError  = 2
	ExitConflict     = 3
	ExitExternalTool = 4
)

// ExitError is an error that carries an exit code for the CLI.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As support.
func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewUserError creates an error for user-caused issues (exit code 1).
// Use for: bad arguments, unknown feature or agent names, empty markers.
func NewUserError(message string) *ExitError {
	return &ExitError{
		Code:    ExitUserError,
		Message: message,
	}
}

// NewSystemError creates an error for system failures (exit code 2).
// Use for: file I/O failures, unresolvable home or config directories.
func NewSystemError(message string) *ExitError {
	return &ExitError{
		Code:    ExitSystemError,
		Message: message,
	}
}

// NewSystemErrorWithCause creates a system error wrapping an underlying cause.
func NewSystemErrorWithCause(message string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitSystemError,
		Message: message,
		Cause:   cause,
	}
}

// NewConflictError creates an error for conflict situations (exit code 3).
// Use for: duplicate managed blocks, refusing to overwrite existing state.
func NewConflictError(message string) *ExitError {
	return &ExitError{
		Code:    ExitConflict,
		Message: message,
	}
}

// NewExternalToolError creates an error for delegated tool failures (exit
// code 4). The tool's own stderr is carried in the message verbatim so the
// operator sees exactly what the package manager reported.
func NewExternalToolError(message string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitExternalTool,
		Message: message,
		Cause:   cause,
	}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil, ExitUserError for non-ExitError errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	// Default to user error for untyped errors
	return ExitUserError
}
