package cmdutil

import "fmt"

// ExitError carries a process exit code for a command that failed without
// a usage or runtime error, such as validate finding data-quality issues.
type ExitError struct {
	Code int
	Err  error
}

// Error implements the error interface
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap implements errors.Unwrap
func (e *ExitError) Unwrap() error {
	return e.Err
}
