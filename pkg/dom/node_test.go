package dom

import (
	"reflect"
	"testing"
)

func TestInsertRemoveAndRegistry(t *testing.T) {
	d := NewDocument()
	div := d.CreateElement("div")
	txt := d.CreateText("hi")
	div.AppendChild(txt)

	if d.ByID(div.ID()) != nil {
		t.Fatal("detached node present in registry")
	}

	d.Body().AppendChild(div)
	if d.ByID(div.ID()) != div || d.ByID(txt.ID()) != txt {
		t.Fatal("attached subtree not registered")
	}

	d.Body().RemoveChild(div)
	if d.ByID(div.ID()) != nil || d.ByID(txt.ID()) != nil {
		t.Fatal("removed subtree still registered")
	}
	if div.Parent() != nil {
		t.Fatal("removed node still has a parent")
	}
}

func TestInsertBeforeOrdersChildren(t *testing.T) {
	d := NewDocument()
	parent := d.CreateElement("ul")
	d.Body().AppendChild(parent)

	a := d.CreateElement("li")
	b := d.CreateElement("li")
	c := d.CreateElement("li")
	parent.AppendChild(a)
	parent.AppendChild(c)
	parent.InsertBefore(b, c)

	got := parent.Children()
	want := []*Node{a, b, c}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("child order wrong: got %v want %v", ids(got), ids(want))
	}
}

func TestInsertBeforeMovesExistingChild(t *testing.T) {
	d := NewDocument()
	parent := d.CreateElement("ul")
	d.Body().AppendChild(parent)
	a := d.CreateElement("li")
	b := d.CreateElement("li")
	parent.AppendChild(a)
	parent.AppendChild(b)

	var muts []Mutation
	d.Observe(func(m Mutation) { muts = append(muts, m) })

	parent.InsertBefore(b, a) // reorder to [b, a]

	if len(parent.Children()) != 2 || parent.Children()[0] != b {
		t.Fatal("move did not reorder children")
	}
	if len(muts) != 1 || muts[0].Op != MutMove {
		t.Fatalf("mutations = %v, want single Move", muts)
	}
}

func TestMutationsOnlyForAttachedNodes(t *testing.T) {
	d := NewDocument()
	var muts []Mutation
	d.Observe(func(m Mutation) { muts = append(muts, m) })

	div := d.CreateElement("div")
	div.SetAttr("class", "x") // detached: no mutation
	if len(muts) != 0 {
		t.Fatalf("detached SetAttr observed: %v", muts)
	}

	d.Body().AppendChild(div)
	div.SetAttr("class", "y")
	div.SetAttr("class", "y") // no-op, same value
	div.RemoveAttr("class")

	ops := make([]MutationOp, len(muts))
	for i, m := range muts {
		ops[i] = m.Op
	}
	want := []MutationOp{MutInsert, MutSetAttr, MutRemoveAttr}
	if !reflect.DeepEqual(ops, want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
}

func TestSetTextNotifies(t *testing.T) {
	d := NewDocument()
	txt := d.CreateText("a")
	d.Body().AppendChild(txt)

	var got *Mutation
	d.Observe(func(m Mutation) { got = &m })
	txt.SetText("b")

	if got == nil || got.Op != MutSetText || got.Value != "b" {
		t.Fatalf("mutation = %+v, want SetText b", got)
	}
	if txt.Text() != "b" {
		t.Fatalf("Text = %q", txt.Text())
	}
}

func TestDispatch(t *testing.T) {
	d := NewDocument()
	btn := d.CreateElement("button")

	var clicks int
	btn.SetListener("onclick", func(ev Event) {
		if ev.Target != btn {
			t.Error("wrong target")
		}
		clicks++
	})

	if !btn.Dispatch(Event{Type: "click"}) {
		t.Fatal("Dispatch returned false with listener registered")
	}
	if btn.Dispatch(Event{Type: "input"}) {
		t.Fatal("Dispatch returned true with no listener")
	}
	if clicks != 1 {
		t.Fatalf("clicks = %d", clicks)
	}

	btn.RemoveListener("click")
	if btn.Dispatch(Event{Type: "click"}) {
		t.Fatal("listener survived removal")
	}
}

func TestTextContentAndOuterHTML(t *testing.T) {
	d := NewDocument()
	div := d.CreateElement("div")
	div.SetAttr("class", "panel")
	span := d.CreateElement("span")
	span.AppendChild(d.CreateText("a & b"))
	div.AppendChild(span)
	div.AppendChild(d.CreateText("!"))

	if got := div.TextContent(); got != "a & b!" {
		t.Errorf("TextContent = %q", got)
	}
	want := `<div class="panel"><span>a &amp; b</span>!</div>`
	if got := div.OuterHTML(); got != want {
		t.Errorf("OuterHTML = %q, want %q", got, want)
	}
}

func ids(nodes []*Node) []uint64 {
	out := make([]uint64, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}
