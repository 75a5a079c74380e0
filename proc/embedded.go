package proc

import (
	"context"
	"path/filepath"

	"github.com/verirun/verirun/capture"
	"github.com/verirun/verirun/engine"
)

// RunEmbedded evaluates the program at programFile inside eng and
// invokes its entry point with args, returning the program's exit code.
// Evaluation happens in a fresh engine context that is closed before
// returning. A program whose evaluation result is not executable fails
// with ErrNoEntryPoint.
func RunEmbedded(ctx context.Context, eng engine.Engine, programFile string, args ...string) (int, error) {
	src, err := engine.Load(programFile)
	if err != nil {
		return 0, err
	}
	ectx, err := eng.NewContext(ctx)
	if err != nil {
		return 0, err
	}
	defer ectx.Close()

	value, err := ectx.Eval(src)
	if err != nil {
		return 0, err
	}
	if !value.CanExecute() {
		return 0, ErrNoEntryPoint
	}
	return value.Execute(args...)
}

// RunEmbeddedCaptured runs the program like RunEmbedded but captures
// everything it writes to the process stdout and stderr into a Result.
// The Result's command is the program's base name.
//
// When an ahead-of-time image is configured in the environment, the run
// is redirected to it as a native process instead: the command line is
// the image, the optional extra image arguments, the absolute program
// path and then args. Capture is not engaged on that path because the
// child's streams are collected by RunNative.
func RunEmbeddedCaptured(ctx context.Context, eng engine.Engine, programFile string, args ...string) (Result, error) {
	if image := aotImage(); image != "" {
		return runImage(ctx, image, programFile, args)
	}

	capt, err := capture.Start()
	if err != nil {
		return Result{}, err
	}
	code, runErr := RunEmbedded(ctx, eng, programFile, args...)
	relErr := capt.Release()
	if runErr != nil {
		return Result{}, runErr
	}
	if relErr != nil {
		return Result{}, relErr
	}
	return NewResult(filepath.Base(programFile), code, capt.Stderr(), capt.Stdout()), nil
}

func runImage(ctx context.Context, image, programFile string, args []string) (Result, error) {
	abs, err := filepath.Abs(programFile)
	if err != nil {
		return Result{}, &CommandError{Command: programFile, Err: err}
	}
	parts := []string{image}
	if extra := aotArgs(); extra != "" {
		parts = append(parts, extra)
	}
	parts = append(parts, abs)
	parts = append(parts, args...)
	return RunNative(ctx, JoinArguments(parts...))
}
