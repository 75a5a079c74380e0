// Package jsengine runs JavaScript guest programs on the goja
// interpreter. A program is expected to evaluate to its entry point, a
// function whose integer return value becomes the exit code.
package jsengine

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dop251/goja"

	"github.com/verirun/verirun/engine"
)

// Engine implements engine.Engine for JavaScript sources.
type Engine struct{}

// New returns the JavaScript engine.
func New() *Engine { return &Engine{} }

func (*Engine) Name() string { return "js" }

func (*Engine) Extensions() []string { return []string{"js"} }

func (*Engine) Close() error { return nil }

// NewContext builds a fresh goja runtime with the host bindings guest
// programs rely on: console.log and print write to stdout,
// console.error writes to stderr.
func (*Engine) NewContext(ctx context.Context) (engine.Context, error) {
	vm := goja.New()

	// The stream is resolved at call time so that output lands in an
	// active capture instead of whatever handle was current at bind time.
	writeLine := func(stream func() *os.File) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, 0, len(call.Arguments))
			for _, arg := range call.Arguments {
				parts = append(parts, arg.String())
			}
			fmt.Fprintln(stream(), strings.Join(parts, " "))
			return goja.Undefined()
		}
	}
	stdout := func() *os.File { return os.Stdout }
	stderr := func() *os.File { return os.Stderr }

	console := vm.NewObject()
	if err := console.Set("log", writeLine(stdout)); err != nil {
		return nil, err
	}
	if err := console.Set("error", writeLine(stderr)); err != nil {
		return nil, err
	}
	if err := vm.Set("console", console); err != nil {
		return nil, err
	}
	if err := vm.Set("print", writeLine(stdout)); err != nil {
		return nil, err
	}

	return &Context{ctx: ctx, vm: vm}, nil
}

// Context is one isolated goja runtime.
type Context struct {
	ctx context.Context
	vm  *goja.Runtime
}

// Eval evaluates src and returns its final value.
func (c *Context) Eval(src engine.Source) (engine.Value, error) {
	val, err := c.run(func() (goja.Value, error) {
		return c.vm.RunScript(src.Path, string(src.Code))
	})
	if err != nil {
		return nil, err
	}
	return &value{ctx: c, program: src.Path, val: val}, nil
}

func (c *Context) Close() error { return nil }

// run executes fn on a separate goroutine and interrupts the runtime
// when the context ends first.
func (c *Context) run(fn func() (goja.Value, error)) (goja.Value, error) {
	done := make(chan struct{})
	var (
		val    goja.Value
		runErr error
	)
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok {
					runErr = err
				} else {
					runErr = fmt.Errorf("panic: %v", r)
				}
			}
		}()
		val, runErr = fn()
	}()

	select {
	case <-done:
	case <-c.ctx.Done():
		c.vm.Interrupt("interrupted")
		<-done
		runErr = c.ctx.Err()
	}
	return val, runErr
}

// value wraps a goja evaluation result.
type value struct {
	ctx     *Context
	program string
	val     goja.Value
}

func (v *value) CanExecute() bool {
	_, ok := goja.AssertFunction(v.val)
	return ok
}

// Execute invokes the program with args and converts its return value
// to an exit code. A program that returns nothing exits 0. Arguments
// are visible both as call parameters and through the argv global,
// where argv[0] is the program path.
func (v *value) Execute(args ...string) (int, error) {
	fn, ok := goja.AssertFunction(v.val)
	if !ok {
		return 0, fmt.Errorf("%s is not executable", v.program)
	}

	argv := make([]any, 0, len(args)+1)
	argv = append(argv, v.program)
	callArgs := make([]goja.Value, 0, len(args))
	for _, arg := range args {
		argv = append(argv, arg)
		callArgs = append(callArgs, v.ctx.vm.ToValue(arg))
	}
	if err := v.ctx.vm.Set("argv", argv); err != nil {
		return 0, err
	}

	ret, err := v.ctx.run(func() (goja.Value, error) {
		return fn(goja.Undefined(), callArgs...)
	})
	if err != nil {
		return 0, err
	}
	if ret == nil {
		return 0, nil
	}
	return int(ret.ToInteger()), nil
}
