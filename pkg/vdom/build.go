package vdom

import "fmt"

// H constructs a description node. A string tag produces an element node; a
// ComponentFunc (or any func(Props) *VNode) produces a component node.
// Anything else is a programmer error and panics immediately rather than
// silently rendering nothing.
//
// Children may be *VNode, []*VNode, string (shorthand for a text node), or
// nil (ignored, which allows conditional children inline).
//
// A "key" prop is lifted onto VNode.Key and used for keyed child
// reconciliation; it is not passed through as an attribute.
func H(tagOrComponent any, props Props, children ...any) *VNode {
	switch t := tagOrComponent.(type) {
	case string:
		node := &VNode{
			Kind:  KindElement,
			Tag:   t,
			Props: props,
		}
		node.Key = liftKey(props)
		appendChildren(node, children)
		return node
	case ComponentFunc:
		return component(t, props, children)
	case func(Props) *VNode:
		return component(ComponentFunc(t), props, children)
	default:
		panic(fmt.Sprintf("vdom: H called with %T; want a tag string or a func(Props) *VNode", tagOrComponent))
	}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	node := &VNode{Kind: KindFragment}
	appendChildren(node, children)
	return node
}

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

func component(fn ComponentFunc, props Props, children []any) *VNode {
	if fn == nil {
		panic("vdom: H called with a nil component function")
	}
	node := &VNode{
		Kind:  KindComponent,
		Fn:    fn,
		Props: props,
		Key:   liftKey(props),
	}
	appendChildren(node, children)
	return node
}

func liftKey(props Props) string {
	if props == nil {
		return ""
	}
	switch k := props["key"].(type) {
	case string:
		return k
	case fmt.Stringer:
		return k.String()
	case int:
		return fmt.Sprintf("%d", k)
	default:
		return ""
	}
}

func appendChildren(node *VNode, children []any) {
	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case string:
			node.Children = append(node.Children, Text(v))
		default:
			panic(fmt.Sprintf("vdom: invalid child of type %T; want *VNode, []*VNode, or string", child))
		}
	}
}
