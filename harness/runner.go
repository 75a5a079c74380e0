package harness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verirun/verirun/engine"
	"github.com/verirun/verirun/proc"
)

// Verdict is the outcome of one case.
type Verdict string

const (
	// VerdictPass means the embedded run matched the expectation.
	VerdictPass Verdict = "pass"
	// VerdictFail means both runs completed but the results differ.
	VerdictFail Verdict = "fail"
	// VerdictError means a run could not be completed at all.
	VerdictError Verdict = "error"
)

// ResultView is the JSON shape of a proc.Result.
type ResultView struct {
	Command  string `json:"command"`
	ExitCode int    `json:"exit_code"`
	Stderr   string `json:"stderr"`
	Stdout   string `json:"stdout"`
}

func viewOf(r proc.Result) *ResultView {
	return &ResultView{
		Command:  r.Command(),
		ExitCode: r.ExitCode(),
		Stderr:   r.Stderr(),
		Stdout:   r.Stdout(),
	}
}

// CaseReport records the outcome of one case. Digest identifies the
// observed result: cases with identical output and exit code share it
// even when their programs differ.
type CaseReport struct {
	Name    string      `json:"name"`
	Verdict Verdict     `json:"verdict"`
	Engine  string      `json:"engine,omitempty"`
	MS      int64       `json:"ms"`
	Detail  string      `json:"detail,omitempty"`
	Digest  string      `json:"digest,omitempty"`
	Got     *ResultView `json:"got,omitempty"`
	Want    *ResultView `json:"want,omitempty"`
}

// RunReport is the persistent record of one suite run. Distinct counts
// the different observed results across the completed cases.
type RunReport struct {
	ID       string       `json:"id"`
	Suite    string       `json:"suite"`
	Started  time.Time    `json:"started"`
	MS       int64        `json:"ms"`
	Passed   int          `json:"passed"`
	Failed   int          `json:"failed"`
	Errors   int          `json:"errors"`
	Distinct int          `json:"distinct"`
	Cases    []CaseReport `json:"cases"`
}

// Ok reports whether every case passed.
func (r *RunReport) Ok() bool { return r.Failed == 0 && r.Errors == 0 }

// Runner executes suites. Cases run sequentially: embedded runs capture
// the process-wide output streams, which cannot be shared.
type Runner struct {
	Engines *engine.Registry

	// Events, when non-nil, receives one entry per finished case.
	Events *EventLog
}

// RunSuite runs every case of the suite and returns the graded report.
// A cancelled context aborts the remaining cases.
func (r *Runner) RunSuite(ctx context.Context, suite *Suite) (*RunReport, error) {
	report := &RunReport{
		ID:      uuid.New().String(),
		Suite:   suite.Name,
		Started: time.Now().UTC(),
	}

	seen := make(map[string]struct{})
	for _, c := range suite.Cases {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("suite %s aborted: %w", suite.Name, err)
		}

		cr := r.runCase(ctx, c)
		report.Cases = append(report.Cases, cr)
		switch cr.Verdict {
		case VerdictPass:
			report.Passed++
		case VerdictFail:
			report.Failed++
		default:
			report.Errors++
		}
		if cr.Digest != "" {
			seen[cr.Digest] = struct{}{}
		}
		r.Events.CaseFinished(report.ID, cr)
	}

	report.Distinct = len(seen)
	report.MS = time.Since(report.Started).Milliseconds()
	return report, nil
}

func (r *Runner) runCase(ctx context.Context, c Case) (cr CaseReport) {
	start := time.Now()
	cr.Name = c.Name
	defer func() { cr.MS = time.Since(start).Milliseconds() }()

	eng, err := r.Engines.EngineFor(c.Program)
	if err != nil {
		cr.Verdict = VerdictError
		cr.Detail = err.Error()
		return cr
	}
	cr.Engine = eng.Name()

	got, err := proc.RunEmbeddedCaptured(ctx, eng, c.Program, c.Args...)
	if err != nil {
		cr.Verdict = VerdictError
		cr.Detail = err.Error()
		return cr
	}
	cr.Got = viewOf(got)
	cr.Digest = fmt.Sprintf("%016x", got.Hash())

	want, err := c.expected(ctx)
	if err != nil {
		cr.Verdict = VerdictError
		cr.Detail = fmt.Sprintf("reference run: %v", err)
		return cr
	}
	cr.Want = viewOf(want)

	if got.Equal(want) {
		cr.Verdict = VerdictPass
		return cr
	}
	cr.Verdict = VerdictFail
	cr.Detail = describeMismatch(got, want)
	return cr
}

// describeMismatch names exactly what differed, field by field.
func describeMismatch(got, want proc.Result) string {
	var parts []string
	if got.ExitCode() != want.ExitCode() {
		parts = append(parts, fmt.Sprintf("exit code %d, want %d", got.ExitCode(), want.ExitCode()))
	}
	if got.Stdout() != want.Stdout() {
		parts = append(parts, fmt.Sprintf("stdout %q, want %q", got.Stdout(), want.Stdout()))
	}
	if got.Stderr() != want.Stderr() {
		parts = append(parts, fmt.Sprintf("stderr %q, want %q", got.Stderr(), want.Stderr()))
	}
	return strings.Join(parts, "; ")
}
