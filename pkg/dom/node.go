package dom

import (
	"sort"
	"strings"
)

// NodeType discriminates element and text nodes.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	default:
		return "Unknown"
	}
}

// Document is a host document: a body element plus an ID registry for every
// node currently attached under it. Nodes are created through the document
// so that IDs are unique within it.
type Document struct {
	body     *Node
	nextID   uint64
	byID     map[uint64]*Node
	observer Observer
}

// NewDocument creates an empty document with an attached body element.
func NewDocument() *Document {
	d := &Document{byID: make(map[uint64]*Node)}
	d.body = d.CreateElement("body")
	d.byID[d.body.id] = d.body
	return d
}

// Body returns the document's root element.
func (d *Document) Body() *Node { return d.body }

// ByID returns the attached node with the given ID, or nil.
func (d *Document) ByID(id uint64) *Node { return d.byID[id] }

// Observe registers fn to receive every mutation applied to attached nodes.
// Only one observer is supported; passing nil removes it.
func (d *Document) Observe(fn Observer) { d.observer = fn }

// CreateElement creates a detached element node.
func (d *Document) CreateElement(tag string) *Node {
	d.nextID++
	return &Node{doc: d, id: d.nextID, typ: ElementNode, tag: tag}
}

// CreateText creates a detached text node.
func (d *Document) CreateText(text string) *Node {
	d.nextID++
	return &Node{doc: d, id: d.nextID, typ: TextNode, text: text}
}

// Node is one node of the host tree. The runtime owns committed nodes;
// application code must not mutate them directly.
type Node struct {
	doc       *Document
	id        uint64
	typ       NodeType
	tag       string
	text      string
	attrs     map[string]string
	listeners map[string]Listener
	parent    *Node
	children  []*Node
}

// ID returns the node's document-unique identifier.
func (n *Node) ID() uint64 { return n.id }

// Type returns the node type.
func (n *Node) Type() NodeType { return n.typ }

// Tag returns the element tag name, or "" for text nodes.
func (n *Node) Tag() string { return n.tag }

// Text returns the text content of a text node.
func (n *Node) Text() string { return n.text }

// Parent returns the parent node, or nil if detached or root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children. The returned slice must not be
// modified.
func (n *Node) Children() []*Node { return n.children }

// NextSibling returns the node that follows n under its parent, or nil if
// n is last or detached.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	sibs := n.parent.children
	for i, s := range sibs {
		if s == n {
			if i+1 < len(sibs) {
				return sibs[i+1]
			}
			return nil
		}
	}
	return nil
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// AttrNames returns the node's attribute names, sorted.
func (n *Node) AttrNames() []string {
	names := make([]string, 0, len(n.attrs))
	for name := range n.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Attached reports whether the node is connected to its document's body.
func (n *Node) Attached() bool {
	for p := n; p != nil; p = p.parent {
		if p == n.doc.body {
			return true
		}
	}
	return false
}

// SetText updates a text node's content.
func (n *Node) SetText(text string) {
	if n.text == text {
		return
	}
	n.text = text
	if n.Attached() {
		n.doc.notify(Mutation{Op: MutSetText, Node: n, Value: text})
	}
}

// SetAttr sets an attribute on an element node.
func (n *Node) SetAttr(name, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	if old, ok := n.attrs[name]; ok && old == value {
		return
	}
	n.attrs[name] = value
	if n.Attached() {
		n.doc.notify(Mutation{Op: MutSetAttr, Node: n, Name: name, Value: value})
	}
}

// RemoveAttr removes an attribute from an element node.
func (n *Node) RemoveAttr(name string) {
	if _, ok := n.attrs[name]; !ok {
		return
	}
	delete(n.attrs, name)
	if n.Attached() {
		n.doc.notify(Mutation{Op: MutRemoveAttr, Node: n, Name: name})
	}
}

// AppendChild attaches child as the last child of n.
func (n *Node) AppendChild(child *Node) {
	n.InsertBefore(child, nil)
}

// InsertBefore inserts child before ref among n's children. A nil ref
// appends. If child already has a parent it is moved, and the mutation is
// reported as a move rather than a fresh insert.
func (n *Node) InsertBefore(child, ref *Node) {
	if child == nil || child == n {
		return
	}
	wasAttached := child.Attached()
	if child.parent != nil {
		child.parent.detach(child)
	}

	idx := len(n.children)
	if ref != nil {
		for i, c := range n.children {
			if c == ref {
				idx = i
				break
			}
		}
	}
	n.children = append(n.children, nil)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = child
	child.parent = n

	if !n.Attached() {
		return
	}
	child.register()
	if wasAttached {
		n.doc.notify(Mutation{Op: MutMove, Node: child, Parent: n, Index: idx})
	} else {
		n.doc.notify(Mutation{Op: MutInsert, Node: child, Parent: n, Index: idx})
	}
}

// RemoveChild detaches child from n. Listeners and attributes on the
// removed subtree are preserved, but its nodes leave the ID registry until
// reattached.
func (n *Node) RemoveChild(child *Node) {
	if child == nil || child.parent != n {
		return
	}
	attached := child.Attached()
	n.detach(child)
	if attached {
		child.unregister()
		n.doc.notify(Mutation{Op: MutRemove, Node: child, Parent: n})
	}
}

// detach splices child out of n's children without notifying.
func (n *Node) detach(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			break
		}
	}
	child.parent = nil
}

// register adds the subtree rooted at n to the document's ID registry.
func (n *Node) register() {
	n.doc.byID[n.id] = n
	for _, c := range n.children {
		c.register()
	}
}

// unregister removes the subtree rooted at n from the ID registry.
func (n *Node) unregister() {
	delete(n.doc.byID, n.id)
	for _, c := range n.children {
		c.unregister()
	}
}

// TextContent concatenates the text of all text nodes in the subtree.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.appendText(&b)
	return b.String()
}

func (n *Node) appendText(b *strings.Builder) {
	if n.typ == TextNode {
		b.WriteString(n.text)
		return
	}
	for _, c := range n.children {
		c.appendText(b)
	}
}

func (d *Document) notify(m Mutation) {
	if d.observer != nil {
		d.observer(m)
	}
}
