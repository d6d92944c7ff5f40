package dom

import "strings"

// Event is a host event delivered to a node's listener: a browser event
// mirrored by the live-session server, or a synthetic event in tests.
type Event struct {
	Type   string // "click", "input", ...
	Target *Node
	Value  string // input value for value-carrying events
}

// Listener handles an event dispatched to a node.
type Listener func(Event)

// SetListener registers the listener for an event type, replacing any
// previous one. The name may be given in prop form ("onclick") or bare
// ("click").
func (n *Node) SetListener(name string, fn Listener) {
	if fn == nil {
		n.RemoveListener(name)
		return
	}
	if n.listeners == nil {
		n.listeners = make(map[string]Listener)
	}
	n.listeners[normalizeEvent(name)] = fn
}

// RemoveListener removes the listener for an event type.
func (n *Node) RemoveListener(name string) {
	delete(n.listeners, normalizeEvent(name))
}

// HasListener reports whether a listener is registered for the event type.
func (n *Node) HasListener(name string) bool {
	_, ok := n.listeners[normalizeEvent(name)]
	return ok
}

// ListenerNames returns the registered event types.
func (n *Node) ListenerNames() []string {
	names := make([]string, 0, len(n.listeners))
	for name := range n.listeners {
		names = append(names, name)
	}
	return names
}

// Dispatch invokes the listener registered for ev.Type, filling in the
// target. It returns false when no listener is registered. Dispatch runs
// the listener synchronously on the calling goroutine, which must be the
// runtime event loop that owns this document.
func (n *Node) Dispatch(ev Event) bool {
	fn, ok := n.listeners[normalizeEvent(ev.Type)]
	if !ok {
		return false
	}
	ev.Target = n
	fn(ev)
	return true
}

// normalizeEvent maps "onClick", "ONCLICK", and "click" to "click".
func normalizeEvent(name string) string {
	name = strings.ToLower(name)
	return strings.TrimPrefix(name, "on")
}
