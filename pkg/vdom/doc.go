// Package vdom defines the immutable description tree for the Quill UI
// runtime.
//
// A VNode describes what should exist on screen: a piece of text, a host
// element with attributes and children, a component invocation, or a
// fragment grouping siblings without a wrapper. Trees are values: they are
// built fresh on every render and never mutated afterwards. The ui package
// diffs successive trees against the committed host document.
//
// Trees are built with H and Fragment:
//
//	vdom.H("div", vdom.Props{"class": "panel"},
//	    vdom.H("h1", nil, "Sources"),
//	    vdom.H(SourceList, vdom.Props{"sources": sources, "key": "list"}),
//	)
package vdom
