package ui

import "github.com/quill-ui/quill/pkg/vdom"

// Props consumed by the provider component. Namespaced so they cannot
// collide with user props.
const (
	ctxKeyProp   = "quill:context"
	ctxValueProp = "quill:context-value"
)

// Context carries a value of type T down the component tree without
// threading it through props. Each Context value is its own key: two
// contexts created with the same type and default are still distinct.
type Context[T any] struct {
	def T
}

// CreateContext returns a new context whose Use falls back to def when no
// provider is found above the calling component.
func CreateContext[T any](def T) *Context[T] {
	return &Context[T]{def: def}
}

// Provider returns a node that makes value available to every component
// underneath it. Nested providers of the same context shadow outer ones.
func (c *Context[T]) Provider(value T, children ...any) *vdom.VNode {
	return vdom.H(provide, vdom.Props{ctxKeyProp: any(c), ctxValueProp: any(value)}, children...)
}

// Use reads the nearest provided value, or the context default. It must be
// called during render; the lookup walks the owner chain, so it reflects
// the provider active at this component's position in the tree.
func (c *Context[T]) Use() T {
	inst := current("UseContext")
	inst.track(hookContext)
	for p := inst; p != nil; p = inst.rt.instanceAt(p.parent) {
		if p.values != nil {
			if v, ok := p.values[any(c)]; ok {
				return v.(T)
			}
		}
	}
	return c.def
}

// UseContext is the free-function form of Use.
func UseContext[T any](c *Context[T]) T {
	return c.Use()
}

// provide is the component behind every Provider node. It rebuilds the
// instance's value map each render so a patched-in different context never
// leaves a stale entry behind.
func provide(props vdom.Props) *vdom.VNode {
	inst := current("Provider")
	inst.values = map[any]any{props[ctxKeyProp]: props[ctxValueProp]}
	children, _ := props["children"].([]*vdom.VNode)
	return vdom.Fragment(children)
}
