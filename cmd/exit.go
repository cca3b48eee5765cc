package cmd

import (
	"errors"
	"fmt"

	"github.com/danielolaszy/prtitle/internal/logging"
)

// Process exit codes.
const (
	// ExitValid means the title passed every check.
	ExitValid = 0
	// ExitInvalid means the title was rejected.
	ExitInvalid = 1
	// ExitConfig means required configuration was missing or unreadable.
	ExitConfig = 1
	// ExitFailure means no verdict could be reached (lookup failure, bad pattern).
	ExitFailure = 2
)

// ErrRejected marks a negative verdict: the command ran to completion and the
// input did not pass.
var ErrRejected = errors.New("rejected")

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by Execute to a process exit code. Errors that
// do not carry a code, such as flag parsing errors, map to ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitValid
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// LogExit records why a command ended and returns its exit code. A negative verdict
// is an ordinary outcome and is logged at info level.
func LogExit(err error) int {
	code := ExitCode(err)
	switch {
	case err == nil:
	case errors.Is(err, ErrRejected):
		logging.Info("verdict is negative", "reason", err.Error(), "exit_code", code)
	default:
		logging.Error("command execution failed", "error", err.Error(), "exit_code", code)
	}
	return code
}
