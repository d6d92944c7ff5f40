package ui

import (
	"runtime"
	"sync"

	qerrors "github.com/quill-ui/quill/internal/errors"
)

// renderingInstances maps goroutine ID to the component instance currently
// rendering on that goroutine. Each runtime renders on its own loop
// goroutine, so keying by goroutine keeps independent runtimes isolated
// while letting hooks stay plain package-level functions.
var renderingInstances sync.Map

// goroutineID extracts the current goroutine's ID from the runtime stack.
// Implementation detail; never exposed.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack begins "goroutine <id> ".
	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// current returns the instance rendering on this goroutine, or panics with
// E001: hooks are callable only inside a component render window.
func current(hook string) *instance {
	if v, ok := renderingInstances.Load(goroutineID()); ok {
		if inst, ok := v.(*instance); ok && inst != nil {
			return inst
		}
	}
	panic(qerrors.Newf("E001", "%s called outside a component render", hook))
}

// setCurrent installs inst as the rendering instance for this goroutine and
// returns the previous one for restoration.
func setCurrent(inst *instance) *instance {
	gid := goroutineID()
	var prev *instance
	if v, ok := renderingInstances.Load(gid); ok {
		prev, _ = v.(*instance)
	}
	if inst == nil {
		renderingInstances.Delete(gid)
	} else {
		renderingInstances.Store(gid, inst)
	}
	return prev
}
