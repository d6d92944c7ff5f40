package ui

import "sort"

// passMark snapshots allocation state at the start of a render pass so an
// aborted pass can be rolled back without touching earlier passes' work.
type passMark struct {
	born    int
	effects int
}

func (r *Runtime) beginPass() passMark {
	return passMark{born: len(r.born), effects: len(r.effectQueue)}
}

// commitPass forgets a completed pass's allocations; they are now owned by
// the committed tree.
func (r *Runtime) commitPass(m passMark) {
	r.born = r.born[:m.born]
}

// abortPass undoes a panicking pass: effects it queued are dropped before
// they ever run and instances it allocated are freed. Instances mounted by
// earlier passes keep their queued effects.
func (r *Runtime) abortPass(m passMark) {
	for _, inst := range r.effectQueue[m.effects:] {
		inst.effectsQueued = false
		for _, es := range inst.pending {
			es.queued = false
		}
		inst.pending = nil
	}
	r.effectQueue = r.effectQueue[:m.effects]
	for i := len(r.born) - 1; i >= m.born; i-- {
		r.freeInstance(r.born[i])
	}
	r.born = r.born[:m.born]
}

// markDirty queues an instance for re-render on the next flush. Safe to
// call only from the loop goroutine; setters get there through Dispatch.
func (r *Runtime) markDirty(inst *instance) {
	if inst == nil || !inst.alive || inst.dirty {
		return
	}
	inst.dirty = true
	r.dirty = append(r.dirty, inst)
	r.scheduleFlush()
}

// scheduleFlush arms the flush channel. One flush serves any number of
// pending updates; flushCh has capacity one so the send never blocks.
func (r *Runtime) scheduleFlush() {
	if r.flushQueued {
		return
	}
	r.flushQueued = true
	select {
	case r.flushCh <- struct{}{}:
	default:
	}
}

// runFlush performs one update pass: re-render every dirty instance in
// depth order, run queued effects, then release flush waiters. Setter
// calls made during the pass land in the next flush.
func (r *Runtime) runFlush() {
	// Drain queued dispatches first so events delivered before the flush
	// signal are folded into this pass.
	for {
		select {
		case fn := <-r.ops:
			fn()
		default:
			goto drained
		}
	}
drained:
	r.flushQueued = false

	batch := r.dirty
	r.dirty = nil

	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].depth < batch[j].depth
	})

	for _, inst := range batch {
		if !inst.alive || !inst.dirty {
			continue
		}
		inst.dirty = false
		func() {
			m := r.beginPass()
			defer func() {
				if rec := recover(); rec != nil {
					r.abortPass(m)
					r.reportError(recoveredError(rec))
					return
				}
				r.commitPass(m)
			}()
			r.rerender(inst)
		}()
	}

	r.runEffects()
	r.releaseWaiters()
}

// rerender re-runs a single mounted component and reconciles its output
// against its committed subtree.
func (r *Runtime) rerender(inst *instance) {
	c := inst.node
	if c == nil {
		return
	}
	out := r.renderInstance(inst)
	c.child = r.patchSubtree(c.child, out, c.hostParent, c)
}

// runEffects drains the effect queue in the order instances were enqueued,
// which is parent-first because parents render before their children.
// Effects queued while running (by setters triggering synchronously) wait
// for the next pass.
func (r *Runtime) runEffects() {
	queue := r.effectQueue
	r.effectQueue = nil
	for _, inst := range queue {
		inst.effectsQueued = false
		pending := inst.pending
		inst.pending = nil
		if !inst.alive {
			continue
		}
		for _, es := range pending {
			es.queued = false
			func() {
				defer func() {
					if rec := recover(); rec != nil {
						r.reportError(recoveredError(rec))
					}
				}()
				if es.cleanup != nil {
					cleanup := es.cleanup
					es.cleanup = nil
					cleanup()
				}
				if c := es.fn(); c != nil {
					es.cleanup = c
				}
			}()
		}
	}
}

// releaseWaiters wakes everything blocked on Flushed for this pass. If new
// work arrived mid-flush the waiters still release; Flushed promises one
// pass, not quiescence.
func (r *Runtime) releaseWaiters() {
	waiters := r.flushWaiters
	r.flushWaiters = nil
	for _, ch := range waiters {
		close(ch)
	}
}
