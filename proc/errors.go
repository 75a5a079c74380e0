package proc

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyCommand is returned by RunNative before anything is spawned
// when the command line is empty.
var ErrEmptyCommand = errors.New("command line is empty")

// ErrNoEntryPoint is returned by RunEmbedded when evaluating the
// program produced a value that cannot be executed.
var ErrNoEntryPoint = errors.New("no executable entry point found")

// TimeoutError is the fatal failure produced when a native process does
// not terminate within the wait limit. It is never converted into a
// partial Result and callers must not retry it.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout after %s running command: %s", e.Timeout, e.Command)
}

// ExitStatusError reports a non-zero exit surfaced by
// RunNativeExpectSuccess. Plain RunNative never judges exit codes.
type ExitStatusError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("%s exited with value %d: %s", e.Command, e.ExitCode, e.Stderr)
}

// CommandError wraps any spawn or stream-read failure with the command
// line that triggered it.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("run %s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
