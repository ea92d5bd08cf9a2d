package output

import "errors"

// Process exit statuses. Each one also appears as "code" in JSON errors.
const (
	ExitSuccess     = 0
	ExitUserError   = 1 // bad arguments, not a repository, bad config
	ExitSystemError = 2 // git failed or could not be started
	ExitConflict    = 3 // conflict detected, or another sync holds the repo
	ExitTimeout     = 4 // a git command was killed at its deadline
)

var exitKinds = map[int]string{
	ExitSuccess:     "ok",
	ExitUserError:   "user",
	ExitSystemError: "system",
	ExitConflict:    "conflict",
	ExitTimeout:     "timeout",
}

// ExitError carries the exit status a failed command should end with.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string { return e.Message }

func (e *ExitError) Unwrap() error { return e.Cause }

// Kind names the exit status: user, system, conflict or timeout.
func (e *ExitError) Kind() string {
	if kind, ok := exitKinds[e.Code]; ok {
		return kind
	}
	return "unknown"
}

func NewUserError(message string) *ExitError {
	return &ExitError{Code: ExitUserError, Message: message}
}

func NewSystemError(message string) *ExitError {
	return &ExitError{Code: ExitSystemError, Message: message}
}

// NewSystemErrorWithCause keeps cause reachable through errors.Is and errors.As.
func NewSystemErrorWithCause(message string, cause error) *ExitError {
	return &ExitError{Code: ExitSystemError, Message: message, Cause: cause}
}

func NewConflictError(message string) *ExitError {
	return &ExitError{Code: ExitConflict, Message: message}
}

func NewTimeoutError(message string) *ExitError {
	return &ExitError{Code: ExitTimeout, Message: message}
}

// asExitError finds the ExitError in err's chain. Errors without one are
// treated as user errors.
func asExitError(err error) *ExitError {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: ExitUserError, Message: err.Error(), Cause: err}
}

// GetExitCode maps err to a process exit status.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return asExitError(err).Code
}
