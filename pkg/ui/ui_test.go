package ui_test

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/quill-ui/quill/pkg/dom"
	"github.com/quill-ui/quill/pkg/ui"
	"github.com/quill-ui/quill/pkg/uitest"
	"github.com/quill-ui/quill/pkg/vdom"
)

func TestCounterClick(t *testing.T) {
	h := uitest.New(t)

	counter := func(props vdom.Props) *vdom.VNode {
		n, setN := ui.UseState(0)
		return vdom.H("div", nil,
			vdom.H("span", nil, vdom.Textf("Count: %d", n)),
			vdom.H("button", vdom.Props{"onClick": func() { setN.Set(n + 1) }}, "+"),
		)
	}

	h.Render(vdom.H(counter, nil))
	uitest.ExpectText(t, h.Root, "Count: 0")

	h.ClickFirst("button")
	h.WaitFlush()
	uitest.ExpectText(t, h.Root, "Count: 1")

	h.ClickFirst("button")
	h.WaitFlush()
	uitest.ExpectText(t, h.Root, "Count: 2")
}

func TestSetStateBatches(t *testing.T) {
	h := uitest.New(t)

	var renders int32
	var setN *ui.SetState[int]
	comp := func(props vdom.Props) *vdom.VNode {
		atomic.AddInt32(&renders, 1)
		n, s := ui.UseState(0)
		setN = s
		return vdom.H("div", nil, vdom.Textf("n=%d", n))
	}

	h.Render(vdom.H(comp, nil))
	if got := atomic.LoadInt32(&renders); got != 1 {
		t.Fatalf("renders after mount = %d, want 1", got)
	}

	h.RT.Dispatch(func() {
		setN.Set(1)
		setN.Set(2)
		setN.Update(func(v int) int { return v + 1 })
	})
	h.WaitFlush()

	if got := atomic.LoadInt32(&renders); got != 2 {
		t.Errorf("renders after batch = %d, want 2 (one pass for three sets)", got)
	}
	uitest.ExpectText(t, h.Root, "n=3")
	if got := setN.Get(); got != 3 {
		t.Errorf("Get() = %d, want 3", got)
	}
}

func TestRerenderSameTreeNoMutations(t *testing.T) {
	h := uitest.New(t)

	page := func() *vdom.VNode {
		return vdom.H("div", vdom.Props{"class": "page"},
			vdom.H("h1", nil, "Title"),
			vdom.Fragment(
				vdom.H("p", nil, "one"),
				vdom.H("p", nil, "two"),
			),
		)
	}

	h.Render(page())
	drain := h.CollectMutations()
	drain()

	h.Render(page())
	if muts := drain(); len(muts) != 0 {
		t.Errorf("identical re-render produced %d mutations, want 0: %+v", len(muts), muts)
	}
}

func TestKeyedReorderReusesHosts(t *testing.T) {
	h := uitest.New(t)

	list := func(keys ...string) *vdom.VNode {
		var items []*vdom.VNode
		for _, k := range keys {
			items = append(items, vdom.H("li", vdom.Props{"key": k}, strings.ToUpper(k)))
		}
		return vdom.H("ul", nil, items)
	}

	h.Render(list("a", "b", "c"))
	idByKey := map[string]uint64{}
	ul := h.FindTag("ul")
	for _, li := range ul.Children() {
		idByKey[strings.ToLower(li.TextContent())] = li.ID()
	}

	drain := h.CollectMutations()
	drain()

	h.Render(list("c", "a", "b"))

	if got := ul.TextContent(); got != "CAB" {
		t.Fatalf("order after reorder = %q, want CAB", got)
	}
	for _, li := range ul.Children() {
		k := strings.ToLower(li.TextContent())
		if li.ID() != idByKey[k] {
			t.Errorf("key %q got a new host node, want reuse", k)
		}
	}
	for _, m := range drain() {
		if m.Op != dom.MutMove {
			t.Errorf("reorder produced op %v, want moves only", m.Op)
		}
	}
}

func TestKeyedInsertIsSingleMutation(t *testing.T) {
	h := uitest.New(t)

	list := func(keys ...string) *vdom.VNode {
		var items []*vdom.VNode
		for _, k := range keys {
			items = append(items, vdom.H("li", vdom.Props{"key": k}, k))
		}
		return vdom.H("ul", nil, items)
	}

	h.Render(list("a", "c"))
	drain := h.CollectMutations()
	drain()

	h.Render(list("a", "b", "c"))

	muts := drain()
	if len(muts) != 1 || muts[0].Op != dom.MutInsert {
		t.Errorf("middle insert produced %+v, want exactly one insert", muts)
	}
	uitest.ExpectText(t, h.Root, "abc")
}

func TestEffectLifecycle(t *testing.T) {
	h := uitest.New(t)

	var mounts, cleanups int32
	comp := func(props vdom.Props) *vdom.VNode {
		ui.UseEffect(func() ui.Cleanup {
			atomic.AddInt32(&mounts, 1)
			return func() { atomic.AddInt32(&cleanups, 1) }
		}, []any{})
		return vdom.H("div", nil, "x")
	}

	h.Render(vdom.H(comp, nil))
	if m := atomic.LoadInt32(&mounts); m != 1 {
		t.Fatalf("mounts = %d, want 1", m)
	}

	// Empty deps: a re-render does not re-run the effect.
	h.Render(vdom.H(comp, nil))
	if m := atomic.LoadInt32(&mounts); m != 1 {
		t.Errorf("mounts after re-render = %d, want 1", m)
	}
	if c := atomic.LoadInt32(&cleanups); c != 0 {
		t.Errorf("cleanups before unmount = %d, want 0", c)
	}

	h.Unmount()
	if c := atomic.LoadInt32(&cleanups); c != 1 {
		t.Errorf("cleanups after unmount = %d, want 1", c)
	}
}

func TestEffectDepsRerun(t *testing.T) {
	h := uitest.New(t)

	var runs int32
	comp := func(props vdom.Props) *vdom.VNode {
		n := props["n"].(int)
		ui.UseEffect(func() ui.Cleanup {
			atomic.AddInt32(&runs, 1)
			return nil
		}, []any{n})
		return vdom.H("div", nil, vdom.Textf("%d", n))
	}

	h.Render(vdom.H(comp, vdom.Props{"n": 1}))
	h.Render(vdom.H(comp, vdom.Props{"n": 1}))
	if r := atomic.LoadInt32(&runs); r != 1 {
		t.Errorf("runs with unchanged dep = %d, want 1", r)
	}
	h.Render(vdom.H(comp, vdom.Props{"n": 2}))
	if r := atomic.LoadInt32(&runs); r != 2 {
		t.Errorf("runs after dep change = %d, want 2", r)
	}
}

func TestEffectSetStateSchedulesNextFlush(t *testing.T) {
	h := uitest.New(t)

	comp := func(props vdom.Props) *vdom.VNode {
		n, setN := ui.UseState(0)
		ui.UseEffect(func() ui.Cleanup {
			if n == 0 {
				setN.Set(1)
			}
			return nil
		}, []any{n})
		return vdom.H("div", nil, vdom.Textf("n=%d", n))
	}

	h.Render(vdom.H(comp, nil))
	h.WaitFlush()
	uitest.ExpectText(t, h.Root, "n=1")
}

func TestUseMemoRecomputesOnDepChange(t *testing.T) {
	h := uitest.New(t)

	var computes int32
	comp := func(props vdom.Props) *vdom.VNode {
		a := props["a"].(int)
		doubled := ui.UseMemo(func() int {
			atomic.AddInt32(&computes, 1)
			return a * 2
		}, []any{a})
		return vdom.H("div", nil, vdom.Textf("%d", doubled))
	}

	h.Render(vdom.H(comp, vdom.Props{"a": 3, "b": 1}))
	h.Render(vdom.H(comp, vdom.Props{"a": 3, "b": 2}))
	if c := atomic.LoadInt32(&computes); c != 1 {
		t.Errorf("computes with stable dep = %d, want 1", c)
	}
	h.Render(vdom.H(comp, vdom.Props{"a": 4, "b": 2}))
	if c := atomic.LoadInt32(&computes); c != 2 {
		t.Errorf("computes after dep change = %d, want 2", c)
	}
	uitest.ExpectText(t, h.Root, "8")
}

func TestUseCallbackCachesIdentity(t *testing.T) {
	h := uitest.New(t)

	var cb func() int
	var setN *ui.SetState[int]
	comp := func(props vdom.Props) *vdom.VNode {
		n, s := ui.UseState(0)
		setN = s
		// Empty deps: the first closure is kept forever, capturing n=0.
		cb = ui.UseCallback(func() int { return n }, []any{})
		return vdom.H("div", nil, vdom.Textf("%d", n))
	}

	h.Render(vdom.H(comp, nil))
	h.RT.Dispatch(func() { setN.Set(5) })
	h.WaitFlush()

	uitest.ExpectText(t, h.Root, "5")
	if got := cb(); got != 0 {
		t.Errorf("cached callback saw n=%d, want 0 (first render's closure)", got)
	}
}

func TestUseRefStableAndSilent(t *testing.T) {
	h := uitest.New(t)

	var renders int32
	var ref *ui.Ref[int]
	var setN *ui.SetState[int]
	comp := func(props vdom.Props) *vdom.VNode {
		atomic.AddInt32(&renders, 1)
		_, s := ui.UseState(0)
		setN = s
		ref = ui.UseRef(10)
		return vdom.H("div", nil, "x")
	}

	h.Render(vdom.H(comp, nil))
	first := ref
	ref.Set(99)
	h.WaitFlush()
	if r := atomic.LoadInt32(&renders); r != 1 {
		t.Errorf("renders after ref write = %d, want 1 (refs never schedule)", r)
	}

	h.RT.Dispatch(func() { setN.Set(1) })
	h.WaitFlush()
	if ref != first {
		t.Error("ref identity changed across renders")
	}
	if got := ref.Get(); got != 99 {
		t.Errorf("ref value = %d, want 99", got)
	}
}

func TestContextProviderAndDefault(t *testing.T) {
	h := uitest.New(t)
	theme := ui.CreateContext("light")

	label := func(props vdom.Props) *vdom.VNode {
		return vdom.H("span", nil, theme.Use())
	}

	h.Render(vdom.H("div", nil,
		theme.Provider("dark", vdom.H(label, nil)),
		vdom.H(label, nil),
	))

	spans := h.Root.Children()[0].Children()
	if got := spans[0].TextContent(); got != "dark" {
		t.Errorf("provided value = %q, want dark", got)
	}
	if got := spans[1].TextContent(); got != "light" {
		t.Errorf("default value = %q, want light", got)
	}
}

func TestContextNestedShadowing(t *testing.T) {
	h := uitest.New(t)
	theme := ui.CreateContext("light")

	label := func(props vdom.Props) *vdom.VNode {
		return vdom.H("span", nil, ui.UseContext(theme))
	}

	h.Render(theme.Provider("dark",
		theme.Provider("solarized", vdom.H(label, nil)),
		vdom.H(label, nil),
	))

	uitest.ExpectText(t, h.Root, "solarized")
	uitest.ExpectText(t, h.Root, "dark")
}

func TestFragmentMountsWithoutWrapper(t *testing.T) {
	h := uitest.New(t)

	h.Render(vdom.Fragment(
		vdom.H("span", nil, "a"),
		vdom.H("span", nil, "b"),
	))

	kids := h.Root.Children()
	if len(kids) != 2 {
		t.Fatalf("root has %d children, want 2 (no wrapper element)", len(kids))
	}
	for _, k := range kids {
		if k.Tag() != "span" {
			t.Errorf("child tag = %q, want span", k.Tag())
		}
	}
}

func TestShapeChangeReplacesSubtree(t *testing.T) {
	h := uitest.New(t)

	var cleanups int32
	inner := func(props vdom.Props) *vdom.VNode {
		ui.UseEffect(func() ui.Cleanup {
			return func() { atomic.AddInt32(&cleanups, 1) }
		}, []any{})
		return vdom.H("em", nil, "inner")
	}

	page := func(wide bool) *vdom.VNode {
		if wide {
			return vdom.H("div", nil, vdom.H(inner, nil))
		}
		return vdom.H("section", nil, "empty")
	}

	h.Render(page(true))
	divID := h.FindTag("div").ID()

	h.Render(page(false))
	if h.FindTag("div") != nil {
		t.Error("old div still attached after shape change")
	}
	if h.FindTag("section") == nil {
		t.Fatal("replacement section not mounted")
	}
	if c := atomic.LoadInt32(&cleanups); c != 1 {
		t.Errorf("cleanups after replace = %d, want 1 (inner unmounted)", c)
	}

	h.Render(page(true))
	if h.FindTag("div").ID() == divID {
		t.Error("replacement reused the destroyed host node")
	}
}

func TestAttrPatchingAndBooleans(t *testing.T) {
	h := uitest.New(t)

	h.Render(vdom.H("input", vdom.Props{"type": "text", "disabled": true, "value": 5}))
	input := h.FindTag("input")
	uitest.ExpectAttr(t, input, "disabled", "")
	uitest.ExpectAttr(t, input, "value", "5")

	h.Render(vdom.H("input", vdom.Props{"type": "text", "disabled": false}))
	if _, ok := input.Attr("disabled"); ok {
		t.Error("disabled=false still present, want removed")
	}
	if _, ok := input.Attr("value"); ok {
		t.Error("dropped prop still present, want removed")
	}
}

func TestHookOutsideRenderPanics(t *testing.T) {
	defer func() {
		rec := recover()
		if rec == nil {
			t.Fatal("UseState outside render did not panic")
		}
		if err, ok := rec.(error); !ok || !strings.Contains(err.Error(), "E001") {
			t.Errorf("panic = %v, want E001 error", rec)
		}
	}()
	ui.UseState(0)
}

func TestHookOrderChangePanicsInDebug(t *testing.T) {
	errCh := make(chan error, 1)
	h := uitest.New(t, ui.WithErrorHandler(func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}))

	var setN *ui.SetState[int]
	comp := func(props vdom.Props) *vdom.VNode {
		n, s := ui.UseState(0)
		setN = s
		if n == 0 {
			ui.UseRef(0)
		} else {
			ui.UseMemo(func() int { return 1 }, nil)
		}
		return vdom.H("div", nil, vdom.Textf("%d", n))
	}

	h.Render(vdom.H(comp, nil))
	h.RT.Dispatch(func() { setN.Set(1) })
	h.WaitFlush()

	select {
	case err := <-errCh:
		if !strings.Contains(err.Error(), "E002") {
			t.Errorf("flush error = %v, want E002", err)
		}
	default:
		t.Error("hook order change did not surface an error")
	}
}

func TestRenderPanicLeavesTreeIntact(t *testing.T) {
	h := uitest.New(t)

	h.Render(vdom.H("div", nil, "stable"))

	boom := func(props vdom.Props) *vdom.VNode {
		panic(errors.New("kaboom"))
	}
	if err := h.RT.Render(vdom.H(boom, nil), h.Root); err == nil {
		t.Fatal("Render with panicking component returned nil error")
	}
	uitest.ExpectText(t, h.Root, "stable")
}

func TestAbortedMountDiscardsSiblingEffects(t *testing.T) {
	h := uitest.New(t)

	var runs, cleanups int32
	good := func(props vdom.Props) *vdom.VNode {
		ui.UseEffect(func() ui.Cleanup {
			atomic.AddInt32(&runs, 1)
			return func() { atomic.AddInt32(&cleanups, 1) }
		}, []any{})
		return vdom.H("span", nil, "good")
	}
	boom := func(props vdom.Props) *vdom.VNode {
		panic(errors.New("kaboom"))
	}

	err := h.RT.Render(vdom.Fragment(vdom.H(good, nil), vdom.H(boom, nil)), h.Root)
	if err == nil {
		t.Fatal("Render with panicking sibling returned nil error")
	}
	if r := atomic.LoadInt32(&runs); r != 0 {
		t.Fatalf("effect runs after aborted mount = %d, want 0", r)
	}

	// A later clean pass must not run effects queued by the aborted one.
	h.Render(vdom.H("div", nil, "clean"))
	if r := atomic.LoadInt32(&runs); r != 0 {
		t.Errorf("effect runs after later pass = %d, want 0", r)
	}
	if c := atomic.LoadInt32(&cleanups); c != 0 {
		t.Errorf("cleanups = %d, want 0", c)
	}
	uitest.ExpectText(t, h.Root, "clean")
}

func TestAbortedFlushDiscardsNewChildEffects(t *testing.T) {
	errCh := make(chan error, 1)
	h := uitest.New(t, ui.WithErrorHandler(func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}))

	var runs int32
	good := func(props vdom.Props) *vdom.VNode {
		ui.UseEffect(func() ui.Cleanup {
			atomic.AddInt32(&runs, 1)
			return nil
		}, []any{})
		return vdom.H("span", nil, "good")
	}
	boom := func(props vdom.Props) *vdom.VNode {
		panic(errors.New("kaboom"))
	}

	var setN *ui.SetState[int]
	parent := func(props vdom.Props) *vdom.VNode {
		n, s := ui.UseState(0)
		setN = s
		if n == 0 {
			return vdom.H("div", nil, "idle")
		}
		return vdom.H("div", nil, vdom.H(good, nil), vdom.H(boom, nil))
	}

	h.Render(vdom.H(parent, nil))
	setN.Set(1)
	h.WaitFlush()

	select {
	case <-errCh:
	default:
		t.Fatal("panicking re-render did not surface an error")
	}
	if r := atomic.LoadInt32(&runs); r != 0 {
		t.Fatalf("effect runs after aborted flush = %d, want 0", r)
	}

	// Later flushes must not run the discarded effect either.
	setN.Set(0)
	h.WaitFlush()
	uitest.ExpectText(t, h.Root, "idle")
	if r := atomic.LoadInt32(&runs); r != 0 {
		t.Errorf("effect runs after recovery flush = %d, want 0", r)
	}
}

func TestRenderAfterCloseFails(t *testing.T) {
	rt := ui.New()
	rt.Close()
	err := rt.Render(vdom.H("div", nil), rt.Document().Body())
	if !errors.Is(err, ui.ErrClosed) {
		t.Errorf("Render after Close = %v, want ErrClosed", err)
	}
}

func TestSetStateGetAfterClose(t *testing.T) {
	h := uitest.New(t)

	var setN *ui.SetState[int]
	comp := func(props vdom.Props) *vdom.VNode {
		_, s := ui.UseState(41)
		setN = s
		return vdom.H("div", nil)
	}
	h.Render(vdom.H(comp, nil))

	setN.Set(42)
	if got := setN.Get(); got != 42 {
		t.Fatalf("Get = %d, want 42", got)
	}

	h.RT.Close()
	if got := setN.Get(); got != 0 {
		t.Errorf("Get after Close = %d, want zero value", got)
	}
}

func TestComponentChildrenProp(t *testing.T) {
	h := uitest.New(t)

	card := func(props vdom.Props) *vdom.VNode {
		children, _ := props["children"].([]*vdom.VNode)
		return vdom.H("div", vdom.Props{"class": "card"}, children)
	}

	h.Render(vdom.H(card, nil, vdom.H("p", nil, "body")))
	uitest.ExpectHTML(t, h.Root, `<div class="card"><p>body</p></div>`)
}
