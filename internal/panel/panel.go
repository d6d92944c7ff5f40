// Package panel implements the notebook/chat panel: a keyed source list,
// a chat transcript that streams model output, and an approval prompt for
// gated actions. Components reach their collaborators (store, ai, permit)
// only through the Deps struct; the UI core knows nothing about them.
package panel

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/quill-ui/quill/el"
	"github.com/quill-ui/quill/pkg/ai"
	"github.com/quill-ui/quill/pkg/dom"
	"github.com/quill-ui/quill/pkg/permit"
	"github.com/quill-ui/quill/pkg/store"
	"github.com/quill-ui/quill/pkg/ui"
	"github.com/quill-ui/quill/pkg/vdom"
)

// Source is one collected item in a notebook.
type Source struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// Deps are the panel's collaborators.
type Deps struct {
	Store    store.Store
	AI       ai.Client
	Permit   permit.Checker
	Logger   *slog.Logger
	Notebook string
}

// Panel binds components to their collaborators. Its methods are the
// component functions; method values on the same Panel share identity, so
// re-renders patch in place.
type Panel struct {
	deps Deps
}

// New creates a panel over the given collaborators.
func New(deps Deps) *Panel {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Notebook == "" {
		deps.Notebook = "nb_default"
	}
	return &Panel{deps: deps}
}

// approvalRequest is a pending interactive permission check. The approval
// prompt answers on the channel.
type approvalRequest struct {
	query  permit.Query
	answer chan bool
}

// Root is the panel's root component.
func (p *Panel) Root(props vdom.Props) *vdom.VNode {
	sources, setSources := ui.UseState([]Source(nil))

	ui.UseEffect(func() ui.Cleanup {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			recs, err := p.deps.Store.ByIndex(ctx, "notebook", p.deps.Notebook)
			if err != nil {
				p.deps.Logger.Error("loading sources failed", "notebook", p.deps.Notebook, "err", err)
				return
			}
			list := make([]Source, 0, len(recs))
			for _, rec := range recs {
				var s Source
				if err := json.Unmarshal(rec.Value, &s); err != nil {
					p.deps.Logger.Warn("bad source record", "key", rec.Key, "err", err)
					continue
				}
				list = append(list, s)
			}
			sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
			setSources.Set(list)
		}()
		return ui.Cleanup(cancel)
	}, []any{})

	return el.Div(vdom.Props{"class": "panel"},
		el.H1(nil, "Quill"),
		vdom.H(p.sourceList, vdom.Props{"sources": sources}),
		vdom.H(p.chat, nil),
	)
}

// sourceList renders the notebook's sources as a keyed list with a
// selectable row.
func (p *Panel) sourceList(props vdom.Props) *vdom.VNode {
	sources, _ := props["sources"].([]Source)
	selected, setSelected := ui.UseState("")

	items := vdom.Range(sources, func(s Source, _ int) *vdom.VNode {
		class := "source"
		if s.ID == selected {
			class = "source selected"
		}
		return el.Li(vdom.Props{
			"key":     s.ID,
			"class":   class,
			"onClick": func() { setSelected.Set(s.ID) },
		}, s.Title)
	})

	return el.Ul(vdom.Props{"class": "sources"},
		vdom.If(len(sources) == 0, el.Li(vdom.Props{"class": "empty"}, "No sources yet")),
		items,
	)
}

// chat renders the transcript, the composer, and the approval prompt.
func (p *Panel) chat(props vdom.Props) *vdom.VNode {
	msgs, setMsgs := ui.UseState([]ai.Message(nil))
	draft, setDraft := ui.UseState("")
	streaming, setStreaming := ui.UseState("")
	pending, setPending := ui.UseState[*approvalRequest](nil)
	busy := ui.UseRef(false)

	send := func() {
		text := strings.TrimSpace(draft)
		if text == "" || busy.Get() {
			return
		}
		busy.Set(true)
		setDraft.Set("")
		history := append(append([]ai.Message(nil), msgs...), ai.Message{Role: "user", Content: text})
		setMsgs.Set(history)
		go p.runTurn(history, setMsgs, setStreaming, setPending, busy)
	}

	transcript := vdom.Range(msgs, func(m ai.Message, i int) *vdom.VNode {
		return el.P(vdom.Props{"key": i, "class": "msg " + m.Role}, m.Content)
	})

	return el.Div(vdom.Props{"class": "chat"},
		el.Div(vdom.Props{"class": "transcript"},
			transcript,
			vdom.If(streaming != "", el.P(vdom.Props{"class": "msg assistant streaming"}, streaming)),
		),
		vdom.H(p.approval, vdom.Props{"request": pending}),
		el.Div(vdom.Props{"class": "composer"},
			el.Input(vdom.Props{
				"value":   draft,
				"onInput": func(e dom.Event) { setDraft.Set(e.Value) },
			}),
			el.Button(vdom.Props{"class": "send", "onClick": send}, "Send"),
		),
	)
}

// approval shows the pending permission query, if any.
func (p *Panel) approval(props vdom.Props) *vdom.VNode {
	req, _ := props["request"].(*approvalRequest)
	if req == nil {
		return vdom.Fragment()
	}
	answer := func(ok bool) func() {
		return func() {
			select {
			case req.answer <- ok:
			default:
			}
		}
	}
	return el.Div(vdom.Props{"class": "approval"},
		el.P(nil, vdom.Textf("Allow %s on %s?", req.query.Action, req.query.Resource)),
		el.Button(vdom.Props{"class": "allow", "onClick": answer(true)}, "Allow"),
		el.Button(vdom.Props{"class": "deny", "onClick": answer(false)}, "Deny"),
	)
}

// runTurn executes one chat turn off the runtime loop: permission check,
// model stream, transcript update, persistence. State flows back through
// setters, which are safe from this goroutine.
func (p *Panel) runTurn(
	history []ai.Message,
	setMsgs *ui.SetState[[]ai.Message],
	setStreaming *ui.SetState[string],
	setPending *ui.SetState[*approvalRequest],
	busy *ui.Ref[bool],
) {
	defer busy.Set(false)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	approver := permit.ApproverFunc(func(ctx context.Context, q permit.Query) (bool, error) {
		req := &approvalRequest{query: q, answer: make(chan bool, 1)}
		setPending.Set(req)
		defer setPending.Set(nil)
		select {
		case ok := <-req.answer:
			return ok, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	})

	q := permit.Query{Actor: "panel", Action: "chat", Resource: "notebook/" + p.deps.Notebook + "/chat"}
	ok, err := permit.Resolve(ctx, p.deps.Permit, approver, q)
	if err != nil {
		p.deps.Logger.Warn("permission check failed", "err", err)
	}
	if !ok {
		p.appendMessage(setMsgs, ai.Message{Role: "assistant", Content: "That request was not permitted."})
		return
	}

	stream, err := p.deps.AI.Stream(ctx, ai.Request{Messages: history})
	if err != nil {
		p.deps.Logger.Error("stream failed to start", "err", err)
		p.appendMessage(setMsgs, ai.Message{Role: "assistant", Content: "The model is unavailable."})
		return
	}

	var b strings.Builder
	final := ""
	for {
		ev, err := stream.Recv(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			p.deps.Logger.Warn("stream interrupted", "err", err)
			break
		}
		switch ev.Type {
		case ai.EventTextDelta:
			b.WriteString(ev.Text)
			setStreaming.Set(b.String())
		case ai.EventToolUse:
			p.deps.Logger.Info("tool use", "tool", ev.Tool.Name)
		case ai.EventResult:
			final = ev.Done.Text
		}
	}
	if final == "" {
		final = b.String()
	}
	setStreaming.Set("")
	reply := ai.Message{Role: "assistant", Content: final}
	p.appendMessage(setMsgs, reply)
	p.persistTranscript(ctx, append(history, reply))
}

func (p *Panel) appendMessage(setMsgs *ui.SetState[[]ai.Message], m ai.Message) {
	setMsgs.Update(func(msgs []ai.Message) []ai.Message {
		return append(append([]ai.Message(nil), msgs...), m)
	})
}

func (p *Panel) persistTranscript(ctx context.Context, msgs []ai.Message) {
	data, err := json.Marshal(msgs)
	if err != nil {
		p.deps.Logger.Error("transcript encode failed", "err", err)
		return
	}
	rec := &store.Record{
		Key:     "chat/" + p.deps.Notebook,
		Value:   data,
		Indexes: map[string]string{"notebook": p.deps.Notebook},
	}
	if err := p.deps.Store.Put(ctx, rec); err != nil {
		p.deps.Logger.Error("transcript save failed", "err", err)
	}
}
