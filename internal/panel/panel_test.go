package panel

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/quill-ui/quill/pkg/ai"
	"github.com/quill-ui/quill/pkg/permit"
	"github.com/quill-ui/quill/pkg/store"
	"github.com/quill-ui/quill/pkg/uitest"
	"github.com/quill-ui/quill/pkg/vdom"
)

// waitText polls the rendered tree (through the runtime loop) until it
// contains want. Panel work crosses goroutines, so tests wait on outcomes
// rather than flush counts.
func waitText(t *testing.T, h *uitest.Harness, want string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	var last string
	for time.Now().Before(deadline) {
		ch := make(chan string, 1)
		h.RT.Dispatch(func() { ch <- h.Root.TextContent() })
		last = <-ch
		if strings.Contains(last, want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q, last saw:\n%s", want, last)
}

func seedSources(t *testing.T, st store.Store, notebook string, sources ...Source) {
	t.Helper()
	ctx := context.Background()
	for _, s := range sources {
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatal(err)
		}
		err = st.Put(ctx, &store.Record{
			Key:     "source/" + s.ID,
			Value:   data,
			Indexes: map[string]string{"notebook": notebook},
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestPanelLoadsSources(t *testing.T) {
	st := store.NewMemoryStore()
	seedSources(t, st, "nb_1",
		Source{ID: "src_1", Title: "Attention Is All You Need"},
		Source{ID: "src_2", Title: "Bitter Lesson"},
	)

	p := New(Deps{
		Store:    st,
		AI:       ai.Script("unused"),
		Permit:   permit.AllowAll(),
		Notebook: "nb_1",
	})
	h := uitest.New(t)
	h.Render(vdom.H(p.Root, nil))

	waitText(t, h, "Attention Is All You Need")
	waitText(t, h, "Bitter Lesson")
}

func TestPanelEmptySourceList(t *testing.T) {
	p := New(Deps{
		Store:  store.NewMemoryStore(),
		AI:     ai.Script("unused"),
		Permit: permit.AllowAll(),
	})
	h := uitest.New(t)
	h.Render(vdom.H(p.Root, nil))
	waitText(t, h, "No sources yet")
}

func TestChatStreamsReplyAndPersists(t *testing.T) {
	st := store.NewMemoryStore()
	p := New(Deps{
		Store:    st,
		AI:       ai.Script("the answer is graph paper"),
		Permit:   permit.AllowAll(),
		Notebook: "nb_1",
	})
	h := uitest.New(t)
	h.Render(vdom.H(p.Root, nil))

	input := h.FindTag("input")
	if input == nil {
		t.Fatal("no composer input")
	}
	h.Input(input, "what should I buy?")
	h.WaitFlush()
	h.Click(h.FindAttr("class", "send"))

	waitText(t, h, "what should I buy?")
	waitText(t, h, "the answer is graph paper")

	// The turn persists the transcript.
	deadline := time.Now().Add(3 * time.Second)
	for {
		rec, err := st.Get(context.Background(), "chat/nb_1")
		if err == nil {
			var msgs []ai.Message
			if err := json.Unmarshal(rec.Value, &msgs); err != nil {
				t.Fatalf("bad transcript: %v", err)
			}
			if len(msgs) != 2 || msgs[1].Role != "assistant" {
				t.Errorf("transcript = %+v", msgs)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("transcript never persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestChatDeniedByPermit(t *testing.T) {
	p := New(Deps{
		Store:  store.NewMemoryStore(),
		AI:     ai.Script("should never stream"),
		Permit: permit.DenyAll(),
	})
	h := uitest.New(t)
	h.Render(vdom.H(p.Root, nil))

	h.Input(h.FindTag("input"), "hello")
	h.WaitFlush()
	h.Click(h.FindAttr("class", "send"))

	waitText(t, h, "That request was not permitted.")
}

func TestChatApprovalPrompt(t *testing.T) {
	p := New(Deps{
		Store:  store.NewMemoryStore(),
		AI:     ai.Script("approved reply"),
		Permit: &permit.RuleChecker{Default: permit.Ask},
	})
	h := uitest.New(t)
	h.Render(vdom.H(p.Root, nil))

	h.Input(h.FindTag("input"), "do the thing")
	h.WaitFlush()
	h.Click(h.FindAttr("class", "send"))

	waitText(t, h, "Allow chat on")
	h.Click(h.FindAttr("class", "allow"))
	waitText(t, h, "approved reply")
}

func TestChatApprovalDenied(t *testing.T) {
	p := New(Deps{
		Store:  store.NewMemoryStore(),
		AI:     ai.Script("should never stream"),
		Permit: &permit.RuleChecker{Default: permit.Ask},
	})
	h := uitest.New(t)
	h.Render(vdom.H(p.Root, nil))

	h.Input(h.FindTag("input"), "do the thing")
	h.WaitFlush()
	h.Click(h.FindAttr("class", "send"))

	waitText(t, h, "Allow chat on")
	h.Click(h.FindAttr("class", "deny"))
	waitText(t, h, "That request was not permitted.")
}

func TestSourceSelection(t *testing.T) {
	st := store.NewMemoryStore()
	seedSources(t, st, "nb_1", Source{ID: "src_1", Title: "Paper"})
	p := New(Deps{Store: st, AI: ai.Script("x"), Permit: permit.AllowAll(), Notebook: "nb_1"})

	h := uitest.New(t)
	h.Render(vdom.H(p.Root, nil))
	waitText(t, h, "Paper")

	h.Click(h.FindAttr("class", "source"))
	h.WaitFlush()
	if h.FindAttr("class", "source selected") == nil {
		t.Error("clicked source not marked selected")
	}
}
