// Package el provides named element constructors over pkg/vdom, so panel
// code reads as markup:
//
//	el.Div(vdom.Props{"class": "panel"},
//	    el.H1(nil, "Quill"),
//	    el.Ul(nil, items),
//	)
//
// Every constructor is vdom.H with the tag baked in; the package adds no
// behavior of its own.
package el
