package dom

// MutationOp is the kind of change applied to an attached node.
type MutationOp uint8

const (
	MutSetText MutationOp = iota + 1
	MutSetAttr
	MutRemoveAttr
	MutInsert
	MutRemove
	MutMove
)

// String returns the string representation of the MutationOp.
func (op MutationOp) String() string {
	switch op {
	case MutSetText:
		return "SetText"
	case MutSetAttr:
		return "SetAttr"
	case MutRemoveAttr:
		return "RemoveAttr"
	case MutInsert:
		return "Insert"
	case MutRemove:
		return "Remove"
	case MutMove:
		return "Move"
	default:
		return "Unknown"
	}
}

// Mutation describes one change to the attached tree. Which fields are set
// depends on Op: Node and Value for SetText; Node, Name, and Value for
// SetAttr; Node and Name for RemoveAttr; Node, Parent, and Index for Insert
// and Move; Node and Parent for Remove.
type Mutation struct {
	Op     MutationOp
	Node   *Node
	Parent *Node
	Index  int
	Name   string
	Value  string
}

// Observer receives mutations as they are applied. It is called
// synchronously on the mutating goroutine; observers must not mutate the
// document reentrantly.
type Observer func(Mutation)
