package vdom

// If returns node when condition is true, nil otherwise.
// Nil children are dropped by H and Fragment, so this composes inline:
//
//	vdom.H("div", nil,
//	    vdom.If(loggedIn, vdom.Text("Welcome back")),
//	)
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// IfElse returns ifTrue when condition is true, ifFalse otherwise.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When lazily builds node only when condition is true. Use instead of If
// when constructing the node would dereference state that may not exist.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to child nodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	nodes := make([]*VNode, 0, len(items))
	for i, item := range items {
		if n := fn(item, i); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}
