package wasm

import (
	"context"
	"fmt"
	"os"
)

// A conformance fixture is a reference codec built for wasm32-wasi that
// exports:
//
//	mp_alloc(len u32) -> ptr u32
//	    reserve len bytes of guest memory for an input message
//	mp_roundtrip(ptr u32, len u32) -> u64
//	    decode one message and re-encode it; returns (outPtr<<32)|outLen,
//	    or 0 when the reference codec rejects the input
//
// Matching re-encoded bytes prove both sides agree on every marker, width
// and length in the message.
type Fixture struct {
	rt *Runtime
}

// LoadFixture reads a compiled fixture from disk and instantiates it.
func LoadFixture(ctx context.Context, path string, cfg *Config) (*Fixture, error) {
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wasm: read fixture: %w", err)
	}
	rt := NewRuntime(ctx, cfg)
	if err := rt.LoadModule(ctx, wasmBytes); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return &Fixture{rt: rt}, nil
}

// RoundTrip hands msg to the reference codec and returns its re-encoding.
// ok is false when the reference codec rejects the message.
func (f *Fixture) RoundTrip(ctx context.Context, msg []byte) (out []byte, ok bool, err error) {
	ptr, err := f.alloc(ctx, uint32(len(msg)))
	if err != nil {
		return nil, false, err
	}
	if err := f.rt.WriteToMemoryAt(ptr, msg); err != nil {
		return nil, false, err
	}

	results, err := f.rt.CallFunction(ctx, "mp_roundtrip", uint64(ptr), uint64(len(msg)))
	if err != nil {
		return nil, false, err
	}
	if len(results) != 1 {
		return nil, false, fmt.Errorf("wasm: mp_roundtrip returned %d results, want 1", len(results))
	}
	packed := results[0]
	if packed == 0 {
		return nil, false, nil
	}

	outPtr := uint32(packed >> 32)
	outLen := uint32(packed)
	out, err = f.rt.ReadFromMemory(outPtr, outLen)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Runtime exposes the underlying runtime for tests that need the raw call
// surface.
func (f *Fixture) Runtime() *Runtime {
	return f.rt
}

// Close releases the guest.
func (f *Fixture) Close(ctx context.Context) error {
	return f.rt.Close(ctx)
}

func (f *Fixture) alloc(ctx context.Context, n uint32) (uint32, error) {
	results, err := f.rt.CallFunction(ctx, "mp_alloc", uint64(n))
	if err != nil {
		return 0, err
	}
	if len(results) != 1 {
		return 0, fmt.Errorf("wasm: mp_alloc returned %d results, want 1", len(results))
	}
	return uint32(results[0]), nil
}
