package uitest

import (
	"strings"
	"testing"
	"time"

	"github.com/quill-ui/quill/pkg/dom"
	"github.com/quill-ui/quill/pkg/ui"
	"github.com/quill-ui/quill/pkg/vdom"
)

// Harness wires a Runtime, its document, and a mount root together for a
// test. The runtime closes automatically when the test ends.
//
// Example:
//
//	h := uitest.New(t)
//	h.Render(vdom.H(Counter, nil))
//	h.ClickFirst("button")
//	h.WaitFlush()
//	uitest.ExpectText(t, h.Root, "Count: 1")
type Harness struct {
	T    testing.TB
	RT   *ui.Runtime
	Doc  *dom.Document
	Root *dom.Node
}

// New creates a harness with debug-mode hook validation enabled, since
// tests are exactly where hook-order mistakes should surface.
func New(t testing.TB, opts ...ui.Option) *Harness {
	t.Helper()
	rt := ui.New(append([]ui.Option{ui.WithDebug(true)}, opts...)...)
	t.Cleanup(rt.Close)
	return &Harness{
		T:    t,
		RT:   rt,
		Doc:  rt.Document(),
		Root: rt.Document().Body(),
	}
}

// Render mounts tree at the harness root, failing the test on error.
func (h *Harness) Render(tree *vdom.VNode) {
	h.T.Helper()
	if err := h.RT.Render(tree, h.Root); err != nil {
		h.T.Fatalf("render: %v", err)
	}
}

// Unmount tears down the harness root.
func (h *Harness) Unmount() {
	h.T.Helper()
	if err := h.RT.Unmount(h.Root); err != nil {
		h.T.Fatalf("unmount: %v", err)
	}
}

// WaitFlush blocks until the pending update pass (if any) has committed
// and its effects have run.
func (h *Harness) WaitFlush() {
	h.T.Helper()
	select {
	case <-h.RT.Flushed():
	case <-time.After(5 * time.Second):
		h.T.Fatal("timed out waiting for flush")
	}
}

// Click dispatches a click event to the given node on the runtime loop.
func (h *Harness) Click(n *dom.Node) {
	h.T.Helper()
	if n == nil {
		h.T.Fatal("Click: nil node")
	}
	h.RT.Dispatch(func() {
		n.Dispatch(dom.Event{Type: "click", Target: n})
	})
}

// ClickFirst clicks the first element with the given tag under the root.
func (h *Harness) ClickFirst(tag string) {
	h.T.Helper()
	n := h.FindTag(tag)
	if n == nil {
		h.T.Fatalf("ClickFirst: no <%s> under root:\n%s", tag, h.HTML())
	}
	h.Click(n)
}

// Input dispatches an input event carrying value to the given node.
func (h *Harness) Input(n *dom.Node, value string) {
	h.T.Helper()
	h.RT.Dispatch(func() {
		n.Dispatch(dom.Event{Type: "input", Target: n, Value: value})
	})
}

// FindTag returns the first element with the given tag under the root, in
// document order, or nil.
func (h *Harness) FindTag(tag string) *dom.Node {
	return findTag(h.Root, tag)
}

// FindAttr returns the first element whose attribute matches, or nil.
func (h *Harness) FindAttr(name, value string) *dom.Node {
	return findFunc(h.Root, func(n *dom.Node) bool {
		v, ok := n.Attr(name)
		return ok && v == value
	})
}

// Text returns the concatenated text content of the root.
func (h *Harness) Text() string {
	return h.Root.TextContent()
}

// HTML returns the root's serialized markup.
func (h *Harness) HTML() string {
	return h.Root.OuterHTML()
}

func findTag(n *dom.Node, tag string) *dom.Node {
	return findFunc(n, func(c *dom.Node) bool {
		return c.Type() == dom.ElementNode && c.Tag() == tag
	})
}

func findFunc(n *dom.Node, pred func(*dom.Node) bool) *dom.Node {
	for _, c := range n.Children() {
		if pred(c) {
			return c
		}
		if found := findFunc(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// RenderToString mounts tree on a throwaway runtime and returns its
// markup. Convenient for pure-markup assertions that need no interaction.
func RenderToString(t testing.TB, tree *vdom.VNode) string {
	t.Helper()
	rt := ui.New()
	defer rt.Close()
	n, err := rt.RenderToNode(tree)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return n.OuterHTML()
}

// ExpectContains asserts that haystack contains needle. Pairs with
// RenderToString for markup checks without a harness.
func ExpectContains(t testing.TB, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("expected %q in:\n%s", needle, truncate(haystack, 500))
	}
}

// ExpectText asserts that a node's text content contains expected.
//
// Example:
//
//	uitest.ExpectText(t, h.Root, "Welcome back")
func ExpectText(t testing.TB, n *dom.Node, expected string) {
	t.Helper()
	got := n.TextContent()
	if !strings.Contains(got, expected) {
		t.Errorf("expected text to contain %q, got %q", expected, got)
	}
}

// ExpectHTML asserts that a node's markup contains expected.
func ExpectHTML(t testing.TB, n *dom.Node, expected string) {
	t.Helper()
	got := n.OuterHTML()
	if !strings.Contains(got, expected) {
		t.Errorf("expected markup to contain %q, got:\n%s", expected, truncate(got, 500))
	}
}

// ExpectNoHTML asserts that a node's markup does not contain unexpected.
func ExpectNoHTML(t testing.TB, n *dom.Node, unexpected string) {
	t.Helper()
	got := n.OuterHTML()
	if strings.Contains(got, unexpected) {
		t.Errorf("expected markup to NOT contain %q, got:\n%s", unexpected, truncate(got, 500))
	}
}

// ExpectAttr asserts that an element carries the given attribute value.
func ExpectAttr(t testing.TB, n *dom.Node, name, value string) {
	t.Helper()
	got, ok := n.Attr(name)
	if !ok {
		t.Errorf("expected attribute %s=%q, attribute missing", name, value)
		return
	}
	if got != value {
		t.Errorf("expected attribute %s=%q, got %q", name, value, got)
	}
}

// CollectMutations registers an observer on the harness document and
// returns a function that drains what it has seen so far. Register before
// the render whose mutations you want to count.
func (h *Harness) CollectMutations() func() []dom.Mutation {
	var muts []dom.Mutation
	h.Doc.Observe(func(m dom.Mutation) {
		muts = append(muts, m)
	})
	return func() []dom.Mutation {
		ch := make(chan []dom.Mutation, 1)
		h.RT.Dispatch(func() {
			out := muts
			muts = nil
			ch <- out
		})
		return <-ch
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
