// Package ui is the Quill rendering runtime: a virtual-tree reconciler and
// a hooks-based state engine committing into a dom.Document.
//
// A Runtime owns one host document, one table of component instances, and
// one event-loop goroutine on which every render, commit, and effect runs.
// Multiple runtimes are fully independent, which is what makes parallel
// tests and multiple mount roots possible.
//
//	rt := ui.New()
//	defer rt.Close()
//
//	counter := func(p vdom.Props) *vdom.VNode {
//	    count, setCount := ui.UseState(0)
//	    return vdom.H("button",
//	        vdom.Props{"onclick": func(dom.Event) { setCount.Update(func(n int) int { return n + 1 }) }},
//	        vdom.Textf("Count: %d", count),
//	    )
//	}
//
//	rt.Render(vdom.H(counter, nil), rt.Document().Body())
//
// Hooks (UseState, UseEffect, UseMemo, UseCallback, UseRef, Context.Use)
// are callable only while a component renders, and must be called in the
// same order and count on every render of that component. Violations panic
// with coded errors rather than corrupting state silently.
//
// State setters never re-render synchronously. Each setter call marks its
// component dirty and schedules a flush; all setter calls made within one
// turn of the event loop are coalesced into a single re-render pass.
// Setters that fire while a flush is running schedule the next flush rather
// than growing the current one.
package ui
