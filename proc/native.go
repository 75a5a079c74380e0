package proc

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"
)

const (
	// waitTimeout bounds every native run. A process that is still alive
	// when it expires is killed and reported as a TimeoutError.
	waitTimeout = 60 * time.Second

	// drainChunkSize is the read granularity for process output streams.
	drainChunkSize = 1024
)

type drained struct {
	text string
	err  error
}

// RunNative runs command as an OS process and collects its output. The
// command line is split on whitespace; no quoting or shell expansion is
// applied. A non-zero exit code is not an error here, it comes back in
// the Result. The run is bounded by a fixed timeout and a process that
// outlives it is killed and reported as a TimeoutError.
func RunNative(ctx context.Context, command string) (Result, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return Result{}, ErrEmptyCommand
	}

	runCtx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, parts[0], parts[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, &CommandError{Command: command, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, &CommandError{Command: command, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return Result{}, &CommandError{Command: command, Err: err}
	}

	// One goroutine per stream so a process filling both pipes cannot
	// deadlock against a single sequential reader.
	outCh := make(chan drained, 1)
	errCh := make(chan drained, 1)
	go func() {
		text, err := DrainStream(stdout)
		outCh <- drained{text: text, err: err}
	}()
	go func() {
		text, err := DrainStream(stderr)
		errCh <- drained{text: text, err: err}
	}()

	// Both pipes must be fully drained before Wait, which closes them.
	outRes := <-outCh
	errRes := <-errCh
	waitErr := cmd.Wait()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Result{}, &TimeoutError{Command: command, Timeout: waitTimeout}
	}
	if runCtx.Err() != nil {
		return Result{}, &CommandError{Command: command, Err: runCtx.Err()}
	}
	if outRes.err != nil {
		return Result{}, &CommandError{Command: command, Err: outRes.err}
	}
	if errRes.err != nil {
		return Result{}, &CommandError{Command: command, Err: errRes.err}
	}

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return Result{}, &CommandError{Command: command, Err: waitErr}
		}
		exitCode = exitErr.ExitCode()
	}
	return NewResult(command, exitCode, errRes.text, outRes.text), nil
}

// RunNativeExpectSuccess joins parts into a command line, runs it
// natively and additionally treats a non-zero exit code as an
// ExitStatusError carrying the process stderr.
func RunNativeExpectSuccess(ctx context.Context, parts ...string) (Result, error) {
	command := JoinArguments(parts...)
	result, err := RunNative(ctx, command)
	if err != nil {
		return Result{}, err
	}
	if result.ExitCode() != 0 {
		return Result{}, &ExitStatusError{
			Command:  command,
			ExitCode: result.ExitCode(),
			Stderr:   result.Stderr(),
		}
	}
	return result, nil
}

// JoinArguments renders parts as a single command line with one space
// between consecutive parts. Nothing is quoted or escaped, so a part
// containing whitespace will be re-split by RunNative.
func JoinArguments(parts ...string) string {
	return strings.Join(parts, " ")
}

// DrainStream reads r to EOF in fixed-size chunks and returns
// everything read as a string. When r is also an io.Closer it is closed
// before returning. On a read error the text collected so far is still
// returned.
func DrainStream(r io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, drainChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if err == nil {
			continue
		}
		if c, ok := r.(io.Closer); ok {
			_ = c.Close()
		}
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		return sb.String(), err
	}
}
