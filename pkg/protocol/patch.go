package protocol

import "github.com/quill-ui/quill/pkg/dom"

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	PatchSetText     PatchOp = 0x01 // Update text content
	PatchSetAttr     PatchOp = 0x02 // Set attribute
	PatchRemoveAttr  PatchOp = 0x03 // Remove attribute
	PatchInsertNode  PatchOp = 0x04 // Insert new node
	PatchRemoveNode  PatchOp = 0x05 // Remove node
	PatchMoveNode    PatchOp = 0x06 // Move node
	PatchReplaceNode PatchOp = 0x07 // Replace node
)

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchMoveNode:
		return "MoveNode"
	case PatchReplaceNode:
		return "ReplaceNode"
	default:
		return "Unknown"
	}
}

// Patch represents a single host-document operation.
type Patch struct {
	Op       PatchOp   `json:"op"`
	ID       uint64    `json:"id"`                 // target node ID
	ParentID uint64    `json:"parentId,omitempty"` // for Insert/Move
	Index    int       `json:"index,omitempty"`    // position under parent
	Name     string    `json:"name,omitempty"`     // attribute name
	Value    string    `json:"value,omitempty"`    // text or attribute value
	Node     *NodeWire `json:"node,omitempty"`     // for Insert/Replace
}

// NodeWire is the serialized form of a host node subtree, carried by
// InsertNode and ReplaceNode patches.
type NodeWire struct {
	ID       uint64            `json:"id"`
	Tag      string            `json:"tag,omitempty"`
	Text     string            `json:"text,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Events   []string          `json:"events,omitempty"` // listener names to delegate
	Children []*NodeWire       `json:"children,omitempty"`
}

// WireNode serializes a host node subtree.
func WireNode(n *dom.Node) *NodeWire {
	if n == nil {
		return nil
	}
	w := &NodeWire{ID: n.ID()}
	if n.Type() == dom.TextNode {
		w.Text = n.Text()
		return w
	}
	w.Tag = n.Tag()
	for _, name := range n.AttrNames() {
		if w.Attrs == nil {
			w.Attrs = make(map[string]string)
		}
		v, _ := n.Attr(name)
		w.Attrs[name] = v
	}
	w.Events = n.ListenerNames()
	for _, c := range n.Children() {
		w.Children = append(w.Children, WireNode(c))
	}
	return w
}

// FromMutation converts an observed document mutation into a patch.
func FromMutation(m dom.Mutation) Patch {
	switch m.Op {
	case dom.MutSetText:
		return Patch{Op: PatchSetText, ID: m.Node.ID(), Value: m.Value}
	case dom.MutSetAttr:
		return Patch{Op: PatchSetAttr, ID: m.Node.ID(), Name: m.Name, Value: m.Value}
	case dom.MutRemoveAttr:
		return Patch{Op: PatchRemoveAttr, ID: m.Node.ID(), Name: m.Name}
	case dom.MutInsert:
		return Patch{
			Op:       PatchInsertNode,
			ID:       m.Node.ID(),
			ParentID: m.Parent.ID(),
			Index:    m.Index,
			Node:     WireNode(m.Node),
		}
	case dom.MutRemove:
		return Patch{Op: PatchRemoveNode, ID: m.Node.ID()}
	case dom.MutMove:
		return Patch{
			Op:       PatchMoveNode,
			ID:       m.Node.ID(),
			ParentID: m.Parent.ID(),
			Index:    m.Index,
		}
	}
	return Patch{}
}
