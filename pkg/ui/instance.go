package ui

import (
	"reflect"

	qerrors "github.com/quill-ui/quill/internal/errors"
	"github.com/quill-ui/quill/pkg/vdom"
)

// hookKind identifies the type of hook call for order validation.
type hookKind uint8

const (
	hookState hookKind = iota + 1
	hookEffect
	hookMemo
	hookCallback
	hookRef
	hookContext
)

// String returns a human-readable name for the hook kind.
func (k hookKind) String() string {
	switch k {
	case hookState:
		return "UseState"
	case hookEffect:
		return "UseEffect"
	case hookMemo:
		return "UseMemo"
	case hookCallback:
		return "UseCallback"
	case hookRef:
		return "UseRef"
	case hookContext:
		return "UseContext"
	default:
		return "Unknown"
	}
}

// instance is the persistent identity of a mounted component: its hook
// slots, its place in the ownership chain, and its scheduling flags.
//
// Instances live in the runtime's arena and refer to each other by index,
// not by pointer, so ownership cycles (child -> parent -> child via context
// lookups) never form and teardown stays explicit.
type instance struct {
	rt     *Runtime
	id     int // index in rt.instances
	parent int // index of the owning component instance, -1 for a root
	depth  int

	fn    vdom.ComponentFunc
	fnPC  uintptr
	key   string
	props vdom.Props

	alive bool
	dirty bool

	// node is the committed component node this instance renders into.
	node *committed

	// Hook slots, one per hook call, addressed by call order.
	slots   []any
	slotIdx int

	// values holds context values this instance provides to descendants.
	values map[any]any

	// pending are effect slots queued to run after the current pass
	// commits, in declaration order.
	pending       []*effectSlot
	effectsQueued bool

	// Debug-mode hook order validation.
	hookKinds []hookKind
	hookIdx   int
	rendered  bool
}

// newInstance allocates an instance in the arena.
func (r *Runtime) newInstance(fn vdom.ComponentFunc, key string, parent int) *instance {
	inst := &instance{
		rt:     r,
		parent: parent,
		fn:     fn,
		fnPC:   funcPC(fn),
		key:    key,
		alive:  true,
	}
	if p := r.instanceAt(parent); p != nil {
		inst.depth = p.depth + 1
	}
	if n := len(r.freeIDs); n > 0 {
		inst.id = r.freeIDs[n-1]
		r.freeIDs = r.freeIDs[:n-1]
		r.instances[inst.id] = inst
	} else {
		inst.id = len(r.instances)
		r.instances = append(r.instances, inst)
	}
	r.born = append(r.born, inst)
	return inst
}

// instanceAt resolves an arena index, returning nil for -1 or freed slots.
func (r *Runtime) instanceAt(id int) *instance {
	if id < 0 || id >= len(r.instances) {
		return nil
	}
	return r.instances[id]
}

// freeInstance runs the instance's effect cleanups and releases its arena
// slot. Cleanups run before any host detachment; the committer guarantees
// that ordering.
func (r *Runtime) freeInstance(inst *instance) {
	if inst == nil || !inst.alive {
		return
	}
	inst.alive = false
	for _, slot := range inst.slots {
		if es, ok := slot.(*effectSlot); ok && es.cleanup != nil {
			cleanup := es.cleanup
			es.cleanup = nil
			cleanup()
		}
	}
	inst.slots = nil
	inst.values = nil
	inst.pending = nil
	inst.props = nil
	inst.node = nil
	r.instances[inst.id] = nil
	r.freeIDs = append(r.freeIDs, inst.id)
}

// renderInstance invokes the component function with hook plumbing set up.
// Panics from the component propagate to the caller; the committed tree has
// not been touched at that point.
func (r *Runtime) renderInstance(inst *instance) *vdom.VNode {
	prev := setCurrent(inst)
	defer setCurrent(prev)

	inst.beginRender()
	out := inst.fn(inst.props)
	inst.endRender()

	if out == nil {
		out = vdom.Fragment()
	}
	return out
}

func (inst *instance) beginRender() {
	inst.slotIdx = 0
	inst.hookIdx = 0
}

// endRender validates the hook contract after a successful render. The
// slot-count check is always on; per-call kind validation requires debug
// mode because it records the first render's hook sequence.
func (inst *instance) endRender() {
	if inst.rendered && inst.slotIdx != len(inst.slots) {
		panic(qerrors.Newf("E002", "component rendered %d hooks, previously %d",
			inst.slotIdx, len(inst.slots)))
	}
	inst.rendered = true
}

// track records or validates one hook call.
func (inst *instance) track(kind hookKind) {
	if !inst.rt.debug {
		return
	}
	if !inst.rendered {
		inst.hookKinds = append(inst.hookKinds, kind)
	} else {
		if inst.hookIdx >= len(inst.hookKinds) {
			panic(qerrors.Newf("E002", "extra %s call at hook index %d", kind, inst.hookIdx))
		}
		if expected := inst.hookKinds[inst.hookIdx]; expected != kind {
			panic(qerrors.Newf("E002", "hook %d changed from %s to %s", inst.hookIdx, expected, kind))
		}
	}
	inst.hookIdx++
}

// nextSlot advances to the next hook slot. The second result is true when
// this is the slot's first render and the hook must create and store its
// state via setSlot.
func (inst *instance) nextSlot() (any, bool) {
	idx := inst.slotIdx
	inst.slotIdx++
	if idx < len(inst.slots) {
		return inst.slots[idx], false
	}
	return nil, true
}

// setSlot stores the state for the slot just returned by nextSlot.
func (inst *instance) setSlot(v any) {
	inst.slots = append(inst.slots, v)
}

// queueEffect schedules an effect slot to run after this pass commits.
func (inst *instance) queueEffect(es *effectSlot) {
	if es.queued {
		return
	}
	es.queued = true
	inst.pending = append(inst.pending, es)
	if !inst.effectsQueued {
		inst.effectsQueued = true
		inst.rt.effectQueue = append(inst.rt.effectQueue, inst)
	}
}

// slotMismatch builds the fail-fast error for a slot holding a different
// hook's state than the caller expects.
func slotMismatch(hook string, got any) error {
	return qerrors.Newf("E004", "%s found slot of type %T", hook, got)
}

// funcPC returns a comparable identity for a component function.
func funcPC(fn vdom.ComponentFunc) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}
