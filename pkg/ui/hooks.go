package ui

// Cleanup is returned by an effect body to undo its work. It runs before
// the effect re-runs and when the owning component unmounts.
type Cleanup func()

type stateSlot[T any] struct {
	value  T
	setter *SetState[T]
}

// SetState updates a state slot and schedules a re-render of its owner.
// Setters are stable across renders: the same pointer is returned from
// every UseState call for a given slot, so it is safe to capture in
// closures and pass as a dependency.
type SetState[T any] struct {
	inst *instance
	slot *stateSlot[T]
}

// Set replaces the slot's value. Updates coalesce: any number of Set calls
// before the next flush produce a single re-render, and calls made during
// a flush schedule the following one.
func (s *SetState[T]) Set(v T) {
	s.inst.rt.Dispatch(func() {
		s.slot.value = v
		s.inst.rt.markDirty(s.inst)
	})
}

// Update replaces the value by applying fn to the current one. Because the
// closure runs on the loop, chained Update calls observe each other's
// results even within one batch.
func (s *SetState[T]) Update(fn func(T) T) {
	s.inst.rt.Dispatch(func() {
		s.slot.value = fn(s.slot.value)
		s.inst.rt.markDirty(s.inst)
	})
}

// Get reads the current value from the loop's point of view. Intended for
// event handlers and effects; render code should use the value returned by
// UseState instead. After the runtime is closed Get returns the zero value
// of T.
func (s *SetState[T]) Get() T {
	var v T
	s.inst.rt.call(func() error {
		v = s.slot.value
		return nil
	})
	return v
}

// UseState declares a state slot holding a value of type T. The first
// render stores initial; later renders return whatever the setter last
// wrote.
func UseState[T any](initial T) (T, *SetState[T]) {
	return UseStateLazy(func() T { return initial })
}

// UseStateLazy is UseState with a deferred initializer, for initial values
// that are expensive to build. init runs once, on the first render.
func UseStateLazy[T any](init func() T) (T, *SetState[T]) {
	inst := current("UseState")
	inst.track(hookState)
	raw, fresh := inst.nextSlot()
	if fresh {
		slot := &stateSlot[T]{value: init()}
		slot.setter = &SetState[T]{inst: inst, slot: slot}
		inst.setSlot(slot)
		return slot.value, slot.setter
	}
	slot, ok := raw.(*stateSlot[T])
	if !ok {
		panic(slotMismatch("UseState", raw))
	}
	return slot.value, slot.setter
}

type effectSlot struct {
	fn      func() Cleanup
	deps    []any
	hasDeps bool
	cleanup Cleanup
	queued  bool
}

// UseEffect schedules fn to run after the current pass commits. With nil
// deps it runs after every render of the component; with an empty non-nil
// slice it runs once on mount; otherwise it re-runs when any dep changes.
// The returned Cleanup runs before each re-run and on unmount.
func UseEffect(fn func() Cleanup, deps []any) {
	inst := current("UseEffect")
	inst.track(hookEffect)
	raw, fresh := inst.nextSlot()
	if fresh {
		es := &effectSlot{fn: fn, deps: deps, hasDeps: deps != nil}
		inst.setSlot(es)
		inst.queueEffect(es)
		return
	}
	es, ok := raw.(*effectSlot)
	if !ok {
		panic(slotMismatch("UseEffect", raw))
	}
	changed := !es.hasDeps || !depsEqual(es.deps, deps)
	es.fn = fn
	es.deps = deps
	es.hasDeps = deps != nil
	if changed {
		inst.queueEffect(es)
	}
}

type memoSlot struct {
	value any
	deps  []any
}

// UseMemo caches the result of compute, re-running it only when deps
// change. Nil deps recompute every render.
func UseMemo[T any](compute func() T, deps []any) T {
	inst := current("UseMemo")
	inst.track(hookMemo)
	raw, fresh := inst.nextSlot()
	if fresh {
		ms := &memoSlot{value: compute(), deps: deps}
		inst.setSlot(ms)
		return ms.value.(T)
	}
	ms, ok := raw.(*memoSlot)
	if !ok {
		panic(slotMismatch("UseMemo", raw))
	}
	if deps == nil || !depsEqual(ms.deps, deps) {
		ms.value = compute()
	}
	ms.deps = deps
	return ms.value.(T)
}

// UseCallback returns a stable function identity that only changes when
// deps change. Useful for props equality on memoized children.
func UseCallback[F any](fn F, deps []any) F {
	inst := current("UseCallback")
	inst.track(hookCallback)
	raw, fresh := inst.nextSlot()
	if fresh {
		ms := &memoSlot{value: fn, deps: deps}
		inst.setSlot(ms)
		return fn
	}
	ms, ok := raw.(*memoSlot)
	if !ok {
		panic(slotMismatch("UseCallback", raw))
	}
	if deps == nil || !depsEqual(ms.deps, deps) {
		ms.value = fn
	}
	ms.deps = deps
	return ms.value.(F)
}
