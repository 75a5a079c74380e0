// Package capture redirects the process-wide stdout and stderr into
// memory so that output printed by programs running embedded in this
// process can be collected like the output of a child process.
//
// The redirect swaps the os.Stdout and os.Stderr variables, so it only
// sees writers that resolve them at write time. It is process-wide
// state: captures must not be nested or run concurrently.
package capture

import (
	"io"
	"os"
	"sync"
)

type drained struct {
	text string
	err  error
}

// Capture is one active stdout/stderr redirect. It is created by Start
// and stays in effect until Release.
type Capture struct {
	origStdout *os.File
	origStderr *os.File
	outR, outW *os.File
	errR, errW *os.File
	outCh      chan drained
	errCh      chan drained

	once   sync.Once
	stdout string
	stderr string
	relErr error
}

// Start swaps os.Stdout and os.Stderr for in-memory pipes and begins
// draining them. The caller must Release the capture to restore the
// real streams, even when the code under capture fails.
func Start() (*Capture, error) {
	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return nil, err
	}

	c := &Capture{
		origStdout: os.Stdout,
		origStderr: os.Stderr,
		outR:       outR,
		outW:       outW,
		errR:       errR,
		errW:       errW,
		outCh:      make(chan drained, 1),
		errCh:      make(chan drained, 1),
	}
	os.Stdout = outW
	os.Stderr = errW

	// Drain while the capture is live so a chatty program cannot fill
	// the pipe buffer and block itself.
	go func() {
		b, err := io.ReadAll(outR)
		c.outCh <- drained{text: string(b), err: err}
	}()
	go func() {
		b, err := io.ReadAll(errR)
		c.errCh <- drained{text: string(b), err: err}
	}()
	return c, nil
}

// Release restores the real stdout and stderr and finishes collecting
// everything written during the capture. It is idempotent; repeated
// calls return the first outcome.
func (c *Capture) Release() error {
	c.once.Do(func() {
		os.Stdout = c.origStdout
		os.Stderr = c.origStderr

		// Closing the write ends delivers EOF to the drain goroutines.
		outWErr := c.outW.Close()
		errWErr := c.errW.Close()
		out := <-c.outCh
		errOut := <-c.errCh
		c.outR.Close()
		c.errR.Close()

		c.stdout = out.text
		c.stderr = errOut.text
		for _, err := range []error{out.err, errOut.err, outWErr, errWErr} {
			if err != nil {
				c.relErr = err
				break
			}
		}
	})
	return c.relErr
}

// Stdout returns the text written to stdout during the capture. It is
// complete only after Release has returned.
func (c *Capture) Stdout() string { return c.stdout }

// Stderr returns the text written to stderr during the capture. It is
// complete only after Release has returned.
func (c *Capture) Stderr() string { return c.stderr }
