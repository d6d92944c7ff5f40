package el

import "github.com/quill-ui/quill/pkg/vdom"

// Aliases for the vdom primitives, so call sites need one import.
type (
	VNode = vdom.VNode
	Props = vdom.Props
)

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode { return vdom.Fragment(children...) }

// Text creates a text node.
func Text(s string) *VNode { return vdom.Text(s) }

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode { return vdom.Textf(format, args...) }

// Document sections.

func Header(props Props, children ...any) *VNode { return vdom.H("header", props, children...) }
func Footer(props Props, children ...any) *VNode { return vdom.H("footer", props, children...) }
func Main(props Props, children ...any) *VNode   { return vdom.H("main", props, children...) }
func Nav(props Props, children ...any) *VNode    { return vdom.H("nav", props, children...) }
func Section(props Props, children ...any) *VNode {
	return vdom.H("section", props, children...)
}
func Article(props Props, children ...any) *VNode {
	return vdom.H("article", props, children...)
}
func Aside(props Props, children ...any) *VNode { return vdom.H("aside", props, children...) }

// Headings.

func H1(props Props, children ...any) *VNode { return vdom.H("h1", props, children...) }
func H2(props Props, children ...any) *VNode { return vdom.H("h2", props, children...) }
func H3(props Props, children ...any) *VNode { return vdom.H("h3", props, children...) }
func H4(props Props, children ...any) *VNode { return vdom.H("h4", props, children...) }

// Grouping content.

func Div(props Props, children ...any) *VNode { return vdom.H("div", props, children...) }
func P(props Props, children ...any) *VNode   { return vdom.H("p", props, children...) }
func Pre(props Props, children ...any) *VNode { return vdom.H("pre", props, children...) }
func Ul(props Props, children ...any) *VNode  { return vdom.H("ul", props, children...) }
func Ol(props Props, children ...any) *VNode  { return vdom.H("ol", props, children...) }
func Li(props Props, children ...any) *VNode  { return vdom.H("li", props, children...) }

// Inline text.

func A(props Props, children ...any) *VNode      { return vdom.H("a", props, children...) }
func Span(props Props, children ...any) *VNode   { return vdom.H("span", props, children...) }
func Em(props Props, children ...any) *VNode     { return vdom.H("em", props, children...) }
func Strong(props Props, children ...any) *VNode { return vdom.H("strong", props, children...) }
func Code(props Props, children ...any) *VNode   { return vdom.H("code", props, children...) }
func Small(props Props, children ...any) *VNode  { return vdom.H("small", props, children...) }

// Forms.

func Form(props Props, children ...any) *VNode  { return vdom.H("form", props, children...) }
func Label(props Props, children ...any) *VNode { return vdom.H("label", props, children...) }
func Input(props Props) *VNode                  { return vdom.H("input", props) }
func Textarea(props Props, children ...any) *VNode {
	return vdom.H("textarea", props, children...)
}
func Button(props Props, children ...any) *VNode {
	return vdom.H("button", props, children...)
}
func Select(props Props, children ...any) *VNode {
	return vdom.H("select", props, children...)
}
func Option(props Props, children ...any) *VNode {
	return vdom.H("option", props, children...)
}

// Tables.

func Table(props Props, children ...any) *VNode { return vdom.H("table", props, children...) }
func Thead(props Props, children ...any) *VNode { return vdom.H("thead", props, children...) }
func Tbody(props Props, children ...any) *VNode { return vdom.H("tbody", props, children...) }
func Tr(props Props, children ...any) *VNode    { return vdom.H("tr", props, children...) }
func Th(props Props, children ...any) *VNode    { return vdom.H("th", props, children...) }
func Td(props Props, children ...any) *VNode    { return vdom.H("td", props, children...) }

// Media.

func Img(props Props) *VNode { return vdom.H("img", props) }
func Hr(props Props) *VNode  { return vdom.H("hr", props) }
func Br() *VNode             { return vdom.H("br", nil) }
