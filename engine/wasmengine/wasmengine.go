// Package wasmengine runs WebAssembly guest programs on the wazero
// runtime with WASI preview 1 bindings. A program is a WASI command
// module: its _start export is the entry point and its exit code is
// whatever it passes to proc_exit, or 0 when _start returns normally.
package wasmengine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/verirun/verirun/engine"
)

// Engine implements engine.Engine for WebAssembly modules.
type Engine struct {
	cache wazero.CompilationCache
}

// New returns the WebAssembly engine. Module compilations are cached
// and shared across contexts until Close.
func New() *Engine {
	return &Engine{cache: wazero.NewCompilationCache()}
}

func (*Engine) Name() string { return "wasm" }

func (*Engine) Extensions() []string { return []string{"wasm"} }

func (e *Engine) Close() error {
	return e.cache.Close(context.Background())
}

// NewContext creates a runtime that honours ctx: cancelling it aborts
// in-flight guest calls.
func (e *Engine) NewContext(ctx context.Context) (engine.Context, error) {
	cfg := wazero.NewRuntimeConfig().
		WithCompilationCache(e.cache).
		WithCloseOnContextDone(true)
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	return &Context{ctx: ctx, rt: rt}, nil
}

// Context owns one wazero runtime.
type Context struct {
	ctx context.Context
	rt  wazero.Runtime
}

// Eval compiles src without instantiating it.
func (c *Context) Eval(src engine.Source) (engine.Value, error) {
	compiled, err := c.rt.CompileModule(c.ctx, src.Code)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", src.Path, err)
	}
	return &value{ctx: c, program: src.Path, compiled: compiled}, nil
}

func (c *Context) Close() error {
	return c.rt.Close(context.Background())
}

// value is a compiled module awaiting instantiation.
type value struct {
	ctx      *Context
	program  string
	compiled wazero.CompiledModule
}

// CanExecute reports whether the module is a WASI command, that is,
// whether it exports _start.
func (v *value) CanExecute() bool {
	_, ok := v.compiled.ExportedFunctions()["_start"]
	return ok
}

// Execute instantiates the module and runs _start. The guest sees
// argv[0] as the program's base name followed by args, and writes
// straight to the process stdout and stderr current at call time, so
// an active capture collects its output.
func (v *value) Execute(args ...string) (int, error) {
	cfg := wazero.NewModuleConfig().
		WithName("").
		WithStdout(os.Stdout).
		WithStderr(os.Stderr).
		WithArgs(append([]string{filepath.Base(v.program)}, args...)...).
		WithStartFunctions()

	mod, err := v.ctx.rt.InstantiateModule(v.ctx.ctx, v.compiled, cfg)
	if err != nil {
		return exitCode(v.ctx.ctx, err)
	}
	defer mod.Close(v.ctx.ctx)

	start := mod.ExportedFunction("_start")
	if start == nil {
		return 0, fmt.Errorf("%s has no _start export", v.program)
	}
	_, err = start.Call(v.ctx.ctx)
	return exitCode(v.ctx.ctx, err)
}

// exitCode maps the error from a guest call to the guest's exit code.
// proc_exit surfaces as sys.ExitError even for code 0. Runtime-forced
// exits caused by context cancellation are reported as the context's
// error, not as a guest exit.
func exitCode(ctx context.Context, err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *sys.ExitError
	if !errors.As(err, &exitErr) {
		return 0, err
	}
	switch exitErr.ExitCode() {
	case sys.ExitCodeContextCanceled, sys.ExitCodeDeadlineExceeded:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
	}
	return int(exitErr.ExitCode()), nil
}
