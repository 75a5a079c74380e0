// Package engine abstracts the in-process language runtimes that
// evaluate and execute guest programs during verification runs.
package engine

import (
	"context"
	"os"
)

// Source is one guest program, fully read into memory.
type Source struct {
	// Path is where the program was loaded from. It names the program
	// in error messages and run reports.
	Path string
	// Code is the raw program text or binary.
	Code []byte
}

// Load reads the program at path into a Source.
func Load(path string) (Source, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return Source{}, err
	}
	return Source{Path: path, Code: code}, nil
}

// Engine is an embedded language runtime. Implementations are safe to
// share, but the contexts they hand out are not.
type Engine interface {
	// Name identifies the engine in reports and registry errors.
	Name() string

	// Extensions lists the program file extensions, without the leading
	// dot, that this engine claims.
	Extensions() []string

	// NewContext creates an isolated evaluation context. Cancelling ctx
	// interrupts evaluation and execution inside it.
	NewContext(ctx context.Context) (Context, error)

	// Close releases resources shared across the engine's contexts.
	Close() error
}

// Context is one isolated evaluation environment. A context is not safe
// for concurrent use and must be closed when done with it.
type Context interface {
	// Eval evaluates src and returns the resulting value.
	Eval(src Source) (Value, error)

	// Close releases the context's runtime resources.
	Close() error
}

// Value is what evaluating a program produced.
type Value interface {
	// CanExecute reports whether the value can be invoked as a program
	// entry point.
	CanExecute() bool

	// Execute invokes the value with the given program arguments and
	// returns the program's exit code.
	Execute(args ...string) (int, error)
}
