package process

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// LaunchError is returned when a child process could not be started.
type LaunchError struct {
	Operation string
	Path      string
	// Tried lists every location that was checked for the executable.
	Tried []string
	Err   error
}

func (e *LaunchError) Error() string {
	msg := fmt.Sprintf("process %s failed for %s", e.Operation, e.Path)
	if len(e.Tried) > 1 {
		msg += fmt.Sprintf(" (tried: %s)", strings.Join(e.Tried, ", "))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ExecutableMissing reports whether the launch failed because the
// executable does not exist.
func (e *LaunchError) ExecutableMissing() bool {
	return errors.Is(e.Err, fs.ErrNotExist)
}

// ExecutionError is returned when a started process could not be waited on
// or its output streams could not be read.
type ExecutionError struct {
	Operation string
	Message   string
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("process %s failed: %s", e.Operation, e.Message)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
