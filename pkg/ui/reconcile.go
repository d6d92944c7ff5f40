package ui

import (
	"fmt"
	"strings"

	"github.com/quill-ui/quill/pkg/dom"
	"github.com/quill-ui/quill/pkg/vdom"
)

// committed is one node of the live tree: the pairing of a description
// node with the host node (or component instance) it produced. The
// committed tree is what diffs run against; the description tree itself is
// never mutated.
type committed struct {
	kind  vdom.Kind
	vnode *vdom.VNode

	// host is the document node for text and element kinds.
	host *dom.Node
	// children mirrors vnode.Children for element and fragment kinds.
	children []*committed
	// child is the rendered output subtree for component kinds.
	child *committed
	// inst is the component instance, component kind only.
	inst *instance

	// hostParent is the document node this subtree's top-level hosts live
	// under. Nil until attached.
	hostParent *dom.Node
	parentC    *committed
}

// mount builds a committed subtree for vn, fully detached from the
// document. Element children are assembled under their (detached) element
// so a later attach surfaces the whole subtree with one insert. owner is
// the arena index of the nearest enclosing component, -1 at a root.
//
// A panic from a component function aborts the mount before anything
// touches the document.
func (r *Runtime) mount(vn *vdom.VNode, owner int) *committed {
	c := &committed{kind: vn.Kind, vnode: vn}
	switch vn.Kind {
	case vdom.KindText:
		c.host = r.doc.CreateText(vn.Text)
	case vdom.KindElement:
		c.host = r.doc.CreateElement(vn.Tag)
		for name, v := range vn.Props {
			if name == "key" {
				continue
			}
			r.setProp(c.host, name, v)
		}
		for _, cv := range vn.Children {
			cc := r.mount(cv, owner)
			cc.parentC = c
			r.attachNode(cc, c.host, nil)
			c.children = append(c.children, cc)
		}
	case vdom.KindFragment:
		for _, cv := range vn.Children {
			cc := r.mount(cv, owner)
			cc.parentC = c
			c.children = append(c.children, cc)
		}
	case vdom.KindComponent:
		inst := r.newInstance(vn.Fn, vn.Key, owner)
		inst.props = effectiveProps(vn)
		inst.node = c
		c.inst = inst
		out := r.renderInstance(inst)
		c.child = r.mount(out, inst.id)
		c.child.parentC = c
	}
	return c
}

// attachNode places a mounted subtree's top-level hosts under parent,
// before the given sibling (nil appends). Fragments and components attach
// their contents recursively since they have no host of their own.
func (r *Runtime) attachNode(c *committed, parent *dom.Node, before *dom.Node) {
	c.hostParent = parent
	switch c.kind {
	case vdom.KindText, vdom.KindElement:
		parent.InsertBefore(c.host, before)
	case vdom.KindFragment:
		for _, cc := range c.children {
			r.attachNode(cc, parent, before)
		}
	case vdom.KindComponent:
		if c.child != nil {
			r.attachNode(c.child, parent, before)
		}
	}
}

// patch reconciles a committed subtree against a new description. Shape
// changes (different kind, tag, component identity, or key) replace the
// subtree; everything else is updated in place with the fewest document
// mutations that produce the new description.
func (r *Runtime) patch(old *committed, vn *vdom.VNode, owner int) *committed {
	if !sameShape(old, vn) {
		return r.replace(old, vn, owner)
	}
	switch vn.Kind {
	case vdom.KindText:
		if old.vnode.Text != vn.Text {
			old.host.SetText(vn.Text)
		}
	case vdom.KindElement:
		r.patchProps(old.host, old.vnode.Props, vn.Props)
		old.children = r.patchChildren(old, old.children, vn.Children, old.host, owner)
		r.ensureOrder(old.children, old.host, nil)
	case vdom.KindFragment:
		old.children = r.patchChildren(old, old.children, vn.Children, old.hostParent, owner)
		r.ensureOrder(old.children, old.hostParent, r.anchorAfter(old))
	case vdom.KindComponent:
		inst := old.inst
		inst.props = effectiveProps(vn)
		inst.dirty = false
		out := r.renderInstance(inst)
		old.child = r.patchSubtree(old.child, out, old.hostParent, old)
	}
	old.vnode = vn
	return old
}

// patchSubtree reconciles a component's single output subtree, handling
// the first render of the slot.
func (r *Runtime) patchSubtree(old *committed, vn *vdom.VNode, hostParent *dom.Node, parentC *committed) *committed {
	if old == nil {
		c := r.mount(vn, ownerOf(parentC))
		c.parentC = parentC
		r.attachNode(c, hostParent, r.anchorAfter(parentC))
		return c
	}
	nc := r.patch(old, vn, ownerOf(parentC))
	nc.parentC = parentC
	return nc
}

// replace swaps a committed subtree for one of a different shape. The
// replacement mounts detached, attaches where the old one stood, and only
// then is the old subtree torn down, so siblings never shift.
func (r *Runtime) replace(old *committed, vn *vdom.VNode, owner int) *committed {
	c := r.mount(vn, owner)
	c.parentC = old.parentC
	anchor := r.firstHost(old)
	if anchor == nil {
		anchor = r.anchorAfter(old)
	}
	r.attachNode(c, old.hostParent, anchor)
	r.unmount(old)
	return c
}

// patchChildren matches new child descriptions against committed children.
// Keyed children match by key anywhere in the list; unkeyed children match
// the next unclaimed unkeyed sibling in order. Unmatched descriptions
// mount fresh (attachment is deferred to ensureOrder so they insert
// directly at their final position); unmatched committed children unmount.
func (r *Runtime) patchChildren(parentC *committed, olds []*committed, vns []*vdom.VNode, hostParent *dom.Node, owner int) []*committed {
	var byKey map[string]*committed
	var unkeyed []*committed
	for _, c := range olds {
		if c.vnode.Key != "" {
			if byKey == nil {
				byKey = make(map[string]*committed, len(olds))
			}
			if _, dup := byKey[c.vnode.Key]; !dup {
				byKey[c.vnode.Key] = c
			}
		} else {
			unkeyed = append(unkeyed, c)
		}
	}

	used := make(map[*committed]bool, len(olds))
	result := make([]*committed, 0, len(vns))
	cursor := 0
	for _, vn := range vns {
		var match *committed
		if vn.Key != "" {
			if c, ok := byKey[vn.Key]; ok && !used[c] {
				match = c
			}
		} else {
			for cursor < len(unkeyed) && used[unkeyed[cursor]] {
				cursor++
			}
			if cursor < len(unkeyed) {
				match = unkeyed[cursor]
				cursor++
			}
		}
		if match != nil {
			used[match] = true
			nc := r.patch(match, vn, owner)
			nc.parentC = parentC
			result = append(result, nc)
		} else {
			c := r.mount(vn, owner)
			c.parentC = parentC
			result = append(result, c)
		}
	}

	for _, c := range olds {
		if !used[c] {
			r.unmount(c)
		}
	}
	return result
}

// ensureOrder walks the reconciled children back to front, attaching fresh
// mounts and moving only hosts whose next sibling is wrong. An untouched
// list produces zero mutations.
func (r *Runtime) ensureOrder(children []*committed, hostParent *dom.Node, tail *dom.Node) {
	anchor := tail
	for i := len(children) - 1; i >= 0; i-- {
		c := children[i]
		if c.hostParent == nil {
			r.attachNode(c, hostParent, anchor)
			if h := r.firstHost(c); h != nil {
				anchor = h
			}
			continue
		}
		hosts := r.hosts(c)
		for j := len(hosts) - 1; j >= 0; j-- {
			h := hosts[j]
			if h.NextSibling() != anchor {
				hostParent.InsertBefore(h, anchor)
			}
			anchor = h
		}
	}
}

// anchorAfter finds the host node immediately following c's position, used
// as the insertion anchor for subtrees that currently have no hosts of
// their own. Returns nil when c is last within its host parent.
func (r *Runtime) anchorAfter(c *committed) *dom.Node {
	cur := c
	for {
		p := cur.parentC
		if p == nil {
			return nil
		}
		if p.kind == vdom.KindElement || p.kind == vdom.KindFragment {
			idx := -1
			for i, sib := range p.children {
				if sib == cur {
					idx = i
					break
				}
			}
			for i := idx + 1; idx >= 0 && i < len(p.children); i++ {
				if h := r.firstHost(p.children[i]); h != nil {
					return h
				}
			}
		}
		if p.kind == vdom.KindElement {
			return nil
		}
		cur = p
	}
}

// unmount tears a committed subtree down: effect cleanups first, deepest
// instances before their owners, then the top-level hosts detach from the
// document.
func (r *Runtime) unmount(c *committed) {
	hosts := r.hosts(c)
	r.dispose(c)
	for _, h := range hosts {
		if p := h.Parent(); p != nil {
			p.RemoveChild(h)
		}
	}
}

func (r *Runtime) dispose(c *committed) {
	switch c.kind {
	case vdom.KindElement, vdom.KindFragment:
		for _, cc := range c.children {
			r.dispose(cc)
		}
	case vdom.KindComponent:
		if c.child != nil {
			r.dispose(c.child)
		}
		r.freeInstance(c.inst)
	}
}

// hosts collects the top-level document nodes of a committed subtree, in
// document order. Text and element nodes contribute themselves; fragments
// and components contribute whatever their contents produced.
func (r *Runtime) hosts(c *committed) []*dom.Node {
	var out []*dom.Node
	r.appendHosts(c, &out)
	return out
}

func (r *Runtime) appendHosts(c *committed, out *[]*dom.Node) {
	switch c.kind {
	case vdom.KindText, vdom.KindElement:
		*out = append(*out, c.host)
	case vdom.KindFragment:
		for _, cc := range c.children {
			r.appendHosts(cc, out)
		}
	case vdom.KindComponent:
		if c.child != nil {
			r.appendHosts(c.child, out)
		}
	}
}

func (r *Runtime) firstHost(c *committed) *dom.Node {
	switch c.kind {
	case vdom.KindText, vdom.KindElement:
		return c.host
	case vdom.KindFragment:
		for _, cc := range c.children {
			if h := r.firstHost(cc); h != nil {
				return h
			}
		}
	case vdom.KindComponent:
		if c.child != nil {
			return r.firstHost(c.child)
		}
	}
	return nil
}

// sameShape reports whether a committed node can be patched in place by
// the given description.
func sameShape(c *committed, vn *vdom.VNode) bool {
	old := c.vnode
	if old.Kind != vn.Kind || old.Key != vn.Key {
		return false
	}
	switch vn.Kind {
	case vdom.KindElement:
		return old.Tag == vn.Tag
	case vdom.KindComponent:
		return funcPC(old.Fn) == funcPC(vn.Fn)
	}
	return true
}

// patchProps applies the difference between two prop maps to an element.
func (r *Runtime) patchProps(n *dom.Node, old, next vdom.Props) {
	for name := range old {
		if name == "key" {
			continue
		}
		if _, keep := next[name]; keep {
			continue
		}
		if vdom.IsListenerProp(name) {
			n.RemoveListener(eventName(name))
		} else {
			n.RemoveAttr(name)
		}
	}
	for name, nv := range next {
		if name == "key" {
			continue
		}
		if ov, had := old[name]; had && valueEqual(ov, nv) && !vdom.IsListenerProp(name) {
			continue
		}
		r.setProp(n, name, nv)
	}
}

// setProp writes one prop onto an element. Listener props install loop
// dispatching handlers; nil clears; booleans follow HTML boolean attribute
// semantics (true sets an empty value, false removes).
func (r *Runtime) setProp(n *dom.Node, name string, v any) {
	if vdom.IsListenerProp(name) {
		if v == nil {
			n.RemoveListener(eventName(name))
			return
		}
		n.SetListener(eventName(name), r.listenerFor(name, v))
		return
	}
	if v == nil {
		n.RemoveAttr(name)
		return
	}
	if b, ok := v.(bool); ok {
		if b {
			n.SetAttr(name, "")
		} else {
			n.RemoveAttr(name)
		}
		return
	}
	n.SetAttr(name, propString(v))
}

// listenerFor wraps a handler prop so it always runs on the loop
// goroutine, where state setters and document access are safe.
func (r *Runtime) listenerFor(name string, v any) dom.Listener {
	switch fn := v.(type) {
	case func(dom.Event):
		return func(e dom.Event) { r.Dispatch(func() { fn(e) }) }
	case dom.Listener:
		return func(e dom.Event) { r.Dispatch(func() { fn(e) }) }
	case func():
		return func(dom.Event) { r.Dispatch(fn) }
	}
	panic(fmt.Sprintf("ui: prop %q must be func() or func(dom.Event), got %T", name, v))
}

// eventName maps a listener prop to its event type: "onClick" -> "click".
func eventName(prop string) string {
	return strings.ToLower(strings.TrimPrefix(prop, "on"))
}

func propString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}

// effectiveProps exposes a component's description children through its
// props under the "children" key.
func effectiveProps(vn *vdom.VNode) vdom.Props {
	if len(vn.Children) == 0 {
		return vn.Props
	}
	props := make(vdom.Props, len(vn.Props)+1)
	for k, v := range vn.Props {
		props[k] = v
	}
	props["children"] = vn.Children
	return props
}

func ownerOf(c *committed) int {
	if c != nil && c.inst != nil {
		return c.inst.id
	}
	if c != nil && c.parentC != nil {
		return ownerOf(c.parentC)
	}
	return -1
}
