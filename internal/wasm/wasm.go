// Package wasm runs reference codec builds compiled to WebAssembly so the
// native implementation can be checked against them byte for byte. It wraps
// wazero, instantiating one guest module per Runtime and exposing the small
// call and memory surface the conformance fixtures need.
package wasm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

var (
	// ErrNoModule is returned when a call needs an instantiated module and
	// none has been loaded.
	ErrNoModule = errors.New("wasm: no module loaded")
	// ErrModuleLoaded is returned by LoadModule when the runtime already
	// holds an instance; a Runtime hosts exactly one guest.
	ErrModuleLoaded = errors.New("wasm: module already loaded")
	// ErrNoFunction is returned when the guest does not export the
	// requested function.
	ErrNoFunction = errors.New("wasm: exported function not found")
	// ErrNoMemory is returned when the guest exports no linear memory.
	ErrNoMemory = errors.New("wasm: module exports no memory")
	// ErrBounds is returned for guest memory access outside the current
	// memory size.
	ErrBounds = errors.New("wasm: memory access out of bounds")
	// ErrMemoryLimit is returned when a write would grow guest memory past
	// the configured limit.
	ErrMemoryLimit = errors.New("wasm: memory limit exceeded")
)

// Config bounds a guest module's resources.
type Config struct {
	// MemoryLimitPages caps guest linear memory, in 64 KiB pages.
	MemoryLimitPages uint32
	// CallTimeout bounds a single guest function call.
	CallTimeout time.Duration
}

// DefaultConfig allows 64 MiB of guest memory and 30 second calls, enough
// for every conformance fixture while keeping a runaway guest contained.
func DefaultConfig() *Config {
	return &Config{
		MemoryLimitPages: 1024,
		CallTimeout:      30 * time.Second,
	}
}

// Runtime hosts one WebAssembly guest module.
type Runtime struct {
	cfg *Config

	mu       sync.RWMutex
	runtime  wazero.Runtime
	instance api.Module
	memory   api.Memory
}

// NewRuntime creates an empty runtime. Load a guest with LoadModule before
// calling anything else.
func NewRuntime(ctx context.Context, cfg *Config) *Runtime {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	rcfg := wazero.NewRuntimeConfig().WithMemoryLimitPages(cfg.MemoryLimitPages)
	return &Runtime{
		cfg:     cfg,
		runtime: wazero.NewRuntimeWithConfig(ctx, rcfg),
	}
}

// LoadModule compiles and instantiates a guest module. WASI preview 1 is
// provided because reference codecs are usually built for wasm32-wasi
// targets; guests that never import it are unaffected.
func (r *Runtime) LoadModule(ctx context.Context, wasmBytes []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.instance != nil {
		return ErrModuleLoaded
	}

	compiled, err := r.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return fmt.Errorf("wasm: compile module: %w", err)
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r.runtime); err != nil {
		return fmt.Errorf("wasm: instantiate wasi: %w", err)
	}

	instance, err := r.runtime.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName("fixture"))
	if err != nil {
		return fmt.Errorf("wasm: instantiate module: %w", err)
	}

	memory := instance.Memory()
	if memory == nil {
		_ = instance.Close(ctx)
		return ErrNoMemory
	}

	r.instance = instance
	r.memory = memory
	return nil
}

// CallFunction invokes an exported guest function under the configured
// timeout. Parameters and results use the raw wasm calling convention.
func (r *Runtime) CallFunction(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	r.mu.RLock()
	instance := r.instance
	r.mu.RUnlock()

	if instance == nil {
		return nil, ErrNoModule
	}
	fn := instance.ExportedFunction(name)
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoFunction, name)
	}

	callCtx := ctx
	if r.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.cfg.CallTimeout)
		defer cancel()
	}

	results, err := fn.Call(callCtx, params...)
	if err != nil {
		return nil, fmt.Errorf("wasm: call %q: %w", name, err)
	}
	return results, nil
}

// ListExports names the guest's exported functions, for diagnostics when a
// fixture does not follow the expected layout.
func (r *Runtime) ListExports() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.instance == nil {
		return nil, ErrNoModule
	}
	var exports []string
	for name := range r.instance.ExportedFunctionDefinitions() {
		exports = append(exports, name)
	}
	return exports, nil
}

// Close releases the guest instance and the underlying runtime.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.instance = nil
	r.memory = nil
	if err := r.runtime.Close(ctx); err != nil {
		return fmt.Errorf("wasm: close runtime: %w", err)
	}
	return nil
}
