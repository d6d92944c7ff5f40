package ui

import "sync"

// Ref is a mutable box whose identity is stable for the lifetime of the
// owning component. Writing to it never triggers a re-render. Access is
// guarded so effects and goroutines they spawn can share one safely.
type Ref[T any] struct {
	mu    sync.RWMutex
	value T
}

// Get returns the current value.
func (r *Ref[T]) Get() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set replaces the current value.
func (r *Ref[T]) Set(v T) {
	r.mu.Lock()
	r.value = v
	r.mu.Unlock()
}

// UseRef declares a ref slot initialized to initial on the first render.
func UseRef[T any](initial T) *Ref[T] {
	inst := current("UseRef")
	inst.track(hookRef)
	raw, fresh := inst.nextSlot()
	if fresh {
		ref := &Ref[T]{value: initial}
		inst.setSlot(ref)
		return ref
	}
	ref, ok := raw.(*Ref[T])
	if !ok {
		panic(slotMismatch("UseRef", raw))
	}
	return ref
}
