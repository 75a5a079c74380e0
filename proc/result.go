// Package proc executes programs under test, either natively as OS
// processes or in-process through an embedded engine, and collects what
// they printed together with their exit code into a comparable Result.
// It is deliberately thin: every failure is returned to the caller
// (typically a test assertion) and nothing is retried or logged here.
package proc

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
)

// Result is the immutable outcome of one program execution. The command
// that produced it is retained for diagnostics but is excluded from
// Equal and Hash: a native reference run and an embedded run of the same
// program use different command lines yet must compare as the same
// observable behavior.
type Result struct {
	command  string
	exitCode int
	stderr   string
	stdout   string
}

// NewResult constructs a Result. Field order mirrors the execution
// record: the command, its exit code, then the captured stderr and
// stdout text.
func NewResult(command string, exitCode int, stderr, stdout string) Result {
	return Result{
		command:  command,
		exitCode: exitCode,
		stderr:   stderr,
		stdout:   stdout,
	}
}

// Command returns the command line or program name used to produce the
// result. It does not participate in Equal or Hash.
func (r Result) Command() string { return r.command }

// ExitCode returns the process or entry-point exit code.
func (r Result) ExitCode() int { return r.exitCode }

// Stderr returns the fully drained error stream.
func (r Result) Stderr() string { return r.stderr }

// Stdout returns the fully drained output stream.
func (r Result) Stdout() string { return r.stdout }

// Equal reports whether both results describe the same observable
// behavior: identical exit code, stderr, and stdout. The command is
// ignored; compare Results with this method, not ==.
func (r Result) Equal(other Result) bool {
	return r.exitCode == other.exitCode &&
		r.stderr == other.stderr &&
		r.stdout == other.stdout
}

// Hash returns a stable 64-bit hash over the same fields Equal compares,
// so equal results always hash identically regardless of command.
func (r Result) Hash() uint64 {
	h := fnv.New64a()
	var code [8]byte
	binary.BigEndian.PutUint64(code[:], uint64(int64(r.exitCode)))
	_, _ = h.Write(code[:])
	_, _ = io.WriteString(h, r.stderr)
	_, _ = h.Write([]byte{0})
	_, _ = io.WriteString(h, r.stdout)
	return h.Sum64()
}

// String renders the full record, command included, for test failure
// messages.
func (r Result) String() string {
	return fmt.Sprintf("command: %s\nstderr: %s\nstdout: %s\nexit code: %d\n",
		r.command, r.stderr, r.stdout, r.exitCode)
}
