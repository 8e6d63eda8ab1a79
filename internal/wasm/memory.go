package wasm

import "fmt"

const wasmPageSize = 65536

// ReadFromMemory copies size bytes of guest memory starting at ptr. The
// copy matters: guest memory may be remapped when the guest grows it, so
// views into it must not outlive the call.
func (r *Runtime) ReadFromMemory(ptr, size uint32) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.memory == nil {
		return nil, ErrNoModule
	}
	if uint64(ptr)+uint64(size) > uint64(r.memory.Size()) {
		return nil, fmt.Errorf("%w: read %d bytes at %#x, memory size %d",
			ErrBounds, size, ptr, r.memory.Size())
	}
	view, ok := r.memory.Read(ptr, size)
	if !ok {
		return nil, fmt.Errorf("%w: read %d bytes at %#x", ErrBounds, size, ptr)
	}
	out := make([]byte, len(view))
	copy(out, view)
	return out, nil
}

// WriteToMemoryAt writes data into guest memory at a guest-chosen address,
// typically one returned by the guest's allocator export.
func (r *Runtime) WriteToMemoryAt(ptr uint32, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.memory == nil {
		return ErrNoModule
	}
	if uint64(ptr)+uint64(len(data)) > uint64(r.memory.Size()) {
		return fmt.Errorf("%w: write %d bytes at %#x, memory size %d",
			ErrBounds, len(data), ptr, r.memory.Size())
	}
	if !r.memory.Write(ptr, data) {
		return fmt.Errorf("%w: write %d bytes at %#x", ErrBounds, len(data), ptr)
	}
	return nil
}

// WriteToMemory appends data past the guest's current memory end, growing
// memory as needed, and returns the address it was written at. This suits
// guests without an allocator export; the region is not reclaimed.
func (r *Runtime) WriteToMemory(data []byte) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.memory == nil {
		return 0, ErrNoModule
	}

	ptr := r.memory.Size()
	if len(data) == 0 {
		return ptr, nil
	}

	need := uint64(ptr) + uint64(len(data))
	limit := uint64(r.cfg.MemoryLimitPages) * wasmPageSize
	if need > limit {
		return 0, fmt.Errorf("%w: need %d bytes, limit %d", ErrMemoryLimit, need, limit)
	}

	deltaPages := uint32((need - uint64(ptr) + wasmPageSize - 1) / wasmPageSize)
	if _, ok := r.memory.Grow(deltaPages); !ok {
		return 0, fmt.Errorf("%w: grow by %d pages refused", ErrMemoryLimit, deltaPages)
	}
	if !r.memory.Write(ptr, data) {
		return 0, fmt.Errorf("%w: write %d bytes at %#x", ErrBounds, len(data), ptr)
	}
	return ptr, nil
}
