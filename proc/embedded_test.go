package proc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verirun/verirun/engine"
)

type fakeValue struct {
	canExecute bool
	code       int
	stdout     string
	stderr     string
	execErr    error
	executed   bool
	gotArgs    []string
}

func (v *fakeValue) CanExecute() bool { return v.canExecute }

func (v *fakeValue) Execute(args ...string) (int, error) {
	v.executed = true
	v.gotArgs = args
	// Resolve the streams at call time, like a real engine binding.
	if v.stdout != "" {
		fmt.Fprint(os.Stdout, v.stdout)
	}
	if v.stderr != "" {
		fmt.Fprint(os.Stderr, v.stderr)
	}
	return v.code, v.execErr
}

type fakeContext struct {
	eng    *fakeEngine
	closed bool
}

func (c *fakeContext) Eval(src engine.Source) (engine.Value, error) {
	if c.eng.evalErr != nil {
		return nil, c.eng.evalErr
	}
	return c.eng.value, nil
}

func (c *fakeContext) Close() error {
	c.closed = true
	return nil
}

type fakeEngine struct {
	value   *fakeValue
	evalErr error
	lastCtx *fakeContext
}

func (*fakeEngine) Name() string         { return "fake" }
func (*fakeEngine) Extensions() []string { return []string{"fake"} }
func (*fakeEngine) Close() error         { return nil }

func (e *fakeEngine) NewContext(ctx context.Context) (engine.Context, error) {
	e.lastCtx = &fakeContext{eng: e}
	return e.lastCtx, nil
}

func writeProgram(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.fake")
	if err := os.WriteFile(path, []byte("program body\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunEmbedded_ExitCode(t *testing.T) {
	eng := &fakeEngine{value: &fakeValue{canExecute: true, code: 7}}
	code, err := RunEmbedded(context.Background(), eng, writeProgram(t), "a", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 7 {
		t.Errorf("exit code = %d, want 7", code)
	}
	if got := eng.value.gotArgs; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("args = %q, want [a b]", got)
	}
	if !eng.lastCtx.closed {
		t.Error("engine context was not closed")
	}
}

func TestRunEmbedded_NoEntryPoint(t *testing.T) {
	eng := &fakeEngine{value: &fakeValue{canExecute: false}}
	_, err := RunEmbedded(context.Background(), eng, writeProgram(t))
	if !errors.Is(err, ErrNoEntryPoint) {
		t.Fatalf("error = %v, want ErrNoEntryPoint", err)
	}
	if !eng.lastCtx.closed {
		t.Error("engine context was not closed after failure")
	}
}

func TestRunEmbedded_MissingProgram(t *testing.T) {
	eng := &fakeEngine{value: &fakeValue{canExecute: true}}
	_, err := RunEmbedded(context.Background(), eng, filepath.Join(t.TempDir(), "absent.fake"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("error = %v, want wrapped fs.ErrNotExist", err)
	}
}

func TestRunEmbeddedCaptured(t *testing.T) {
	t.Setenv(EnvAOTImage, "")

	eng := &fakeEngine{value: &fakeValue{
		canExecute: true,
		code:       5,
		stdout:     "captured out",
		stderr:     "captured err",
	}}
	program := writeProgram(t)
	res, err := RunEmbeddedCaptured(context.Background(), eng, program)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode() != 5 {
		t.Errorf("ExitCode = %d, want 5", res.ExitCode())
	}
	if res.Stdout() != "captured out" {
		t.Errorf("Stdout = %q, want %q", res.Stdout(), "captured out")
	}
	if res.Stderr() != "captured err" {
		t.Errorf("Stderr = %q, want %q", res.Stderr(), "captured err")
	}
	if res.Command() != "prog.fake" {
		t.Errorf("Command = %q, want base name %q", res.Command(), "prog.fake")
	}
}

func TestRunEmbeddedCaptured_ReleasesOnFailure(t *testing.T) {
	t.Setenv(EnvAOTImage, "")

	orig := os.Stdout
	eng := &fakeEngine{value: &fakeValue{canExecute: true, execErr: errors.New("guest blew up")}}
	_, err := RunEmbeddedCaptured(context.Background(), eng, writeProgram(t))
	if err == nil {
		t.Fatal("expected execution error")
	}
	if os.Stdout != orig {
		t.Fatal("os.Stdout not restored after failed run")
	}
}

func TestRunEmbeddedCaptured_ImageRedirect(t *testing.T) {
	t.Setenv(EnvAOTImage, "echo")
	t.Setenv(EnvAOTArgs, "")

	eng := &fakeEngine{value: &fakeValue{canExecute: true}}
	program := writeProgram(t)
	abs, err := filepath.Abs(program)
	if err != nil {
		t.Fatal(err)
	}

	res, err := RunEmbeddedCaptured(context.Background(), eng, program, "x", "y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eng.value.executed {
		t.Error("embedded engine ran despite image redirect")
	}
	want := "echo " + abs + " x y"
	if res.Command() != want {
		t.Errorf("Command = %q, want %q", res.Command(), want)
	}
	if !strings.Contains(res.Stdout(), abs) {
		t.Errorf("Stdout = %q, want to contain the program path", res.Stdout())
	}
}

func TestRunEmbeddedCaptured_ImageExtraArgs(t *testing.T) {
	t.Setenv(EnvAOTImage, "echo")
	t.Setenv(EnvAOTArgs, "--flag value")

	program := writeProgram(t)
	abs, err := filepath.Abs(program)
	if err != nil {
		t.Fatal(err)
	}

	eng := &fakeEngine{value: &fakeValue{canExecute: true}}
	res, err := RunEmbeddedCaptured(context.Background(), eng, program, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Extra image arguments sit between the image and the program path.
	want := "echo --flag value " + abs + " x"
	if res.Command() != want {
		t.Errorf("Command = %q, want %q", res.Command(), want)
	}
}
