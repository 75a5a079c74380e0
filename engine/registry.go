package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// ErrUnknownExtension is wrapped into the error returned by EngineFor
// when no registered engine claims the program's file extension.
var ErrUnknownExtension = errors.New("no engine registered for extension")

// Registry dispatches program files to engines by file extension.
type Registry struct {
	mu      sync.RWMutex
	byExt   map[string]Engine
	engines []Engine
}

// NewRegistry constructs a registry from the supplied engines. Every
// extension may be claimed by at most one engine.
func NewRegistry(engines ...Engine) (*Registry, error) {
	reg := &Registry{
		byExt: make(map[string]Engine, len(engines)),
	}

	for _, eng := range engines {
		if eng == nil {
			return nil, fmt.Errorf("engine cannot be nil")
		}
		if eng.Name() == "" {
			return nil, fmt.Errorf("engine missing name")
		}
		exts := eng.Extensions()
		if len(exts) == 0 {
			return nil, fmt.Errorf("engine %q claims no extensions", eng.Name())
		}
		for _, ext := range exts {
			ext = strings.ToLower(ext)
			if prev, exists := reg.byExt[ext]; exists {
				return nil, fmt.Errorf("extension %q claimed by both %q and %q", ext, prev.Name(), eng.Name())
			}
			reg.byExt[ext] = eng
		}
		reg.engines = append(reg.engines, eng)
	}

	if len(reg.engines) == 0 {
		return nil, fmt.Errorf("at least one engine must be registered")
	}

	return reg, nil
}

// EngineFor returns the engine claiming the extension of path.
func (r *Registry) EngineFor(path string) (Engine, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	r.mu.RLock()
	eng, ok := r.byExt[ext]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownExtension, ext)
	}
	return eng, nil
}

// Engines returns the registered engines in registration order.
func (r *Registry) Engines() []Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Engine, len(r.engines))
	copy(out, r.engines)
	return out
}

// Close releases resources held by each engine.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for _, eng := range r.engines {
		if err := eng.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", eng.Name(), err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
