package vdom

// Kind is the node type discriminator.
type Kind uint8

const (
	KindText      Kind = iota // Plain text node
	KindElement               // <div>, <button>, etc.
	KindComponent             // Function component invocation
	KindFragment              // Grouping without wrapper
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindElement:
		return "Element"
	case KindComponent:
		return "Component"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// Props holds attributes, event handlers, and component inputs.
type Props map[string]any

// ComponentFunc is a stateless render function. It receives the props from
// the component's VNode and returns the node's description subtree. State
// lives in hook slots owned by the runtime, not in the function itself.
type ComponentFunc func(Props) *VNode

// VNode is one node of the description tree.
//
// Which fields are meaningful depends on Kind: Text for KindText; Tag,
// Props, and Children for KindElement; Fn, Props, and Key for
// KindComponent; Children for KindFragment. A VNode must not be mutated
// after construction.
type VNode struct {
	Kind     Kind
	Tag      string        // Element tag name (e.g., "div")
	Props    Props         // Attributes, event handlers, component props
	Children []*VNode      // Child nodes (element and fragment)
	Key      string        // Reconciliation key among siblings
	Text     string        // For KindText
	Fn       ComponentFunc // For KindComponent
}

// IsListenerProp reports whether a prop key names an event handler
// ("onclick", "oninput", ...). Case-insensitive on the prefix so that
// onClick and ONCLICK are treated the same.
func IsListenerProp(key string) bool {
	if len(key) <= 2 {
		return false
	}
	return (key[0] == 'o' || key[0] == 'O') && (key[1] == 'n' || key[1] == 'N')
}
