package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/quill-ui/quill/pkg/dom"
	"github.com/quill-ui/quill/pkg/vdom"
)

// ErrClosed is returned by entry points invoked after Close.
var ErrClosed = errors.New("ui: runtime closed")

// Runtime owns a host document, the component instance table, the dirty
// set, and the committed trees for each mount root. All of its mutable
// state is confined to a single event-loop goroutine; public methods
// marshal onto it.
type Runtime struct {
	doc     *dom.Document
	logger  *slog.Logger
	onError func(error)
	debug   bool

	ops     chan func()
	flushCh chan struct{}
	done    chan struct{}
	closed  sync.Once
	loopGID atomic.Uint64

	// Everything below is loop-owned.
	instances    []*instance
	freeIDs      []int
	roots        map[*dom.Node]*committed
	dirty        []*instance
	flushQueued  bool
	flushWaiters []chan struct{}
	effectQueue  []*instance

	// born tracks instances allocated by the render pass in progress so an
	// aborted pass can free them. Empty between passes.
	born []*instance
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for flush errors and debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// WithErrorHandler sets the handler invoked when a scheduled flush panics.
// The default logs the error. The committed tree is left as it was before
// the failing pass in either case.
func WithErrorHandler(fn func(error)) Option {
	return func(r *Runtime) { r.onError = fn }
}

// WithDebug enables hook-order validation: the first render of each
// component records its hook sequence, and later renders that diverge
// panic with E002 instead of silently corrupting slots.
func WithDebug(on bool) Option {
	return func(r *Runtime) { r.debug = on }
}

// New creates a runtime with an empty document and starts its event loop.
// Callers must Close the runtime when done with it.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		doc:     dom.NewDocument(),
		logger:  slog.Default(),
		ops:     make(chan func(), 64),
		flushCh: make(chan struct{}, 1),
		done:    make(chan struct{}),
		roots:   make(map[*dom.Node]*committed),
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.loop()
	return r
}

// Document returns the host document owned by this runtime.
func (r *Runtime) Document() *dom.Document { return r.doc }

// Close stops the event loop. Pending work is dropped.
func (r *Runtime) Close() {
	r.closed.Do(func() { close(r.done) })
}

// Dispatch runs fn on the runtime's event loop. It is the only legal way to
// touch the document or dispatch host events from other goroutines. When
// called from the loop itself (from an event handler or effect), fn runs
// inline.
func (r *Runtime) Dispatch(fn func()) {
	if r.onLoop() {
		fn()
		return
	}
	select {
	case r.ops <- fn:
	case <-r.done:
	}
}

// Render mounts or updates tree under target. It returns only after the
// host tree reflects tree and the effects queued by this pass have run. A
// panic raised by construction or by a component render function is
// converted to an error; in that case the previously committed tree is left
// in place, instances the aborted pass allocated are freed, and effects it
// queued never run.
func (r *Runtime) Render(tree *vdom.VNode, target *dom.Node) error {
	if tree == nil {
		return errors.New("ui: Render called with nil tree")
	}
	if target == nil {
		return errors.New("ui: Render called with nil target")
	}
	return r.call(func() (err error) {
		m := r.beginPass()
		defer func() {
			if rec := recover(); rec != nil {
				r.abortPass(m)
				err = renderError(rec)
				return
			}
			r.commitPass(m)
		}()
		if prev, ok := r.roots[target]; ok {
			r.roots[target] = r.patch(prev, tree, -1)
		} else {
			c := r.mount(tree, -1)
			r.attachNode(c, target, nil)
			r.roots[target] = c
		}
		r.runEffects()
		return nil
	})
}

// RenderToNode mounts tree detached from any existing root and returns the
// container element holding the result. Used for isolated mounting, e.g.
// building a subtree inside an event handler.
func (r *Runtime) RenderToNode(tree *vdom.VNode) (*dom.Node, error) {
	if tree == nil {
		return nil, errors.New("ui: RenderToNode called with nil tree")
	}
	var host *dom.Node
	err := r.call(func() (err error) {
		m := r.beginPass()
		defer func() {
			if rec := recover(); rec != nil {
				r.abortPass(m)
				err = renderError(rec)
				return
			}
			r.commitPass(m)
		}()
		container := r.doc.CreateElement("div")
		c := r.mount(tree, -1)
		r.attachNode(c, container, nil)
		r.roots[container] = c
		r.runEffects()
		host = container
		return nil
	})
	if err != nil {
		return nil, err
	}
	return host, nil
}

// Unmount removes a previously rendered root: effect cleanups run, host
// nodes detach, and the root's component instances are discarded.
func (r *Runtime) Unmount(target *dom.Node) error {
	return r.call(func() error {
		if c, ok := r.roots[target]; ok {
			delete(r.roots, target)
			r.unmount(c)
		}
		return nil
	})
}

// Flushed returns a channel that closes once the currently scheduled flush
// (if any) has committed and run its effects. If nothing is pending the
// channel closes immediately. This is the synchronization point tests use
// instead of sleeping.
func (r *Runtime) Flushed() <-chan struct{} {
	ch := make(chan struct{})
	r.Dispatch(func() {
		if r.flushQueued || len(r.dirty) > 0 {
			r.flushWaiters = append(r.flushWaiters, ch)
		} else {
			close(ch)
		}
	})
	return ch
}

// call runs fn on the loop and waits for its result.
func (r *Runtime) call(fn func() error) error {
	if r.onLoop() {
		return fn()
	}
	errc := make(chan error, 1)
	select {
	case r.ops <- func() { errc <- fn() }:
	case <-r.done:
		return ErrClosed
	}
	select {
	case err := <-errc:
		return err
	case <-r.done:
		return ErrClosed
	}
}

func (r *Runtime) loop() {
	r.loopGID.Store(goroutineID())
	for {
		select {
		case fn := <-r.ops:
			fn()
		case <-r.flushCh:
			r.runFlush()
		case <-r.done:
			return
		}
	}
}

func (r *Runtime) onLoop() bool {
	return r.loopGID.Load() == goroutineID()
}

// reportError delivers a flush failure to the configured handler.
func (r *Runtime) reportError(err error) {
	if r.onError != nil {
		r.onError(err)
		return
	}
	r.logger.Error("ui: flush failed", "err", err)
}

func renderError(rec any) error {
	if e, ok := rec.(error); ok {
		return e
	}
	return fmt.Errorf("ui: render panic: %v", rec)
}

func recoveredError(rec any) error {
	if e, ok := rec.(error); ok {
		return e
	}
	return fmt.Errorf("ui: flush panic: %v\n%s", rec, debug.Stack())
}
