package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quill-ui/quill/pkg/protocol"
	"github.com/quill-ui/quill/pkg/server"
	"github.com/quill-ui/quill/pkg/ui"
	"github.com/quill-ui/quill/pkg/vdom"
)

func counterPanel(props vdom.Props) *vdom.VNode {
	n, setN := ui.UseState(0)
	return vdom.H("div", nil,
		vdom.H("span", nil, vdom.Textf("Count: %d", n)),
		vdom.H("button", vdom.Props{"onClick": func() { setN.Set(n + 1) }}, "+"),
	)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := server.New(counterPanel, server.Config{},
		server.WithMetrics(server.NewMetrics(prometheus.NewRegistry())))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dialLive(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readPatches reads frames until a patches frame arrives.
func readPatches(t *testing.T, conn *websocket.Conn) *protocol.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		frame, err := protocol.DecodeFrame(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if frame.Type == protocol.FramePatches {
			return frame
		}
	}
}

// findWire walks a serialized subtree for the first node with the tag.
func findWire(w *protocol.NodeWire, tag string) *protocol.NodeWire {
	if w == nil {
		return nil
	}
	if w.Tag == tag {
		return w
	}
	for _, c := range w.Children {
		if found := findWire(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestLiveSessionInitialRender(t *testing.T) {
	ts := newTestServer(t)
	conn := dialLive(t, ts)

	frame := readPatches(t, conn)
	if len(frame.Patches) == 0 {
		t.Fatal("initial frame has no patches")
	}
	p := frame.Patches[0]
	if p.Op != protocol.PatchInsertNode || p.Node == nil {
		t.Fatalf("first patch = %+v, want insert with node", p)
	}
	if findWire(p.Node, "button") == nil {
		t.Errorf("initial tree missing button: %+v", p.Node)
	}
}

func TestLiveSessionClickRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	conn := dialLive(t, ts)

	initial := readPatches(t, conn)
	button := findWire(initial.Patches[0].Node, "button")
	if button == nil {
		t.Fatal("no button in initial tree")
	}

	data, err := protocol.EncodeFrame(protocol.EventFrame(protocol.Event{
		Name: "click",
		ID:   button.ID,
	}))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}

	update := readPatches(t, conn)
	var sawText bool
	for _, p := range update.Patches {
		if p.Op == protocol.PatchSetText && p.Value == "Count: 1" {
			sawText = true
		}
	}
	if !sawText {
		t.Errorf("update frame = %+v, want SetText to Count: 1", update.Patches)
	}
}

func TestLiveSessionUnknownTargetGetsDispatchError(t *testing.T) {
	ts := newTestServer(t)
	conn := dialLive(t, ts)
	readPatches(t, conn)

	data, err := protocol.EncodeFrame(protocol.EventFrame(protocol.Event{
		Name: "click",
		ID:   999999,
	}))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		frame, err := protocol.DecodeFrame(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if frame.Type == protocol.FrameError {
			if frame.Error.Code != "E402" {
				t.Errorf("error code = %s, want E402", frame.Error.Code)
			}
			return
		}
	}
}

func TestLiveSessionRejectsMalformedFrame(t *testing.T) {
	ts := newTestServer(t)
	conn := dialLive(t, ts)
	readPatches(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{{{")); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		frame, err := protocol.DecodeFrame(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if frame.Type == protocol.FrameError {
			if frame.Error.Code != "E101" {
				t.Errorf("error code = %s, want E101", frame.Error.Code)
			}
			return
		}
	}
}
