package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quill-ui/quill/pkg/dom"
	"github.com/quill-ui/quill/pkg/protocol"
	"github.com/quill-ui/quill/pkg/ui"
	"github.com/quill-ui/quill/pkg/vdom"
)

// Session is one live panel connection: a private runtime and document,
// the websocket, and the patch stream between them.
type Session struct {
	id     string
	server *Server
	conn   *websocket.Conn
	logger *slog.Logger
	rt     *ui.Runtime

	// writeMu serializes conn writes; the websocket forbids concurrent
	// writers.
	writeMu sync.Mutex
	seq     atomic.Uint64

	// pending accumulates patches observed from the document until the
	// flusher drains them into one frame.
	pendingMu sync.Mutex
	pending   []protocol.Patch
	notifyCh  chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

func newSession(id string, server *Server, conn *websocket.Conn) *Session {
	s := &Session{
		id:       id,
		server:   server,
		conn:     conn,
		logger:   server.logger.With("session", id),
		notifyCh: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	s.rt = ui.New(
		ui.WithLogger(s.logger),
		ui.WithDebug(server.cfg.Debug),
		ui.WithErrorHandler(func(err error) {
			server.metrics.Errors.WithLabelValues("flush").Inc()
			s.logger.Error("flush failed", "err", err)
			s.sendError("E401", err.Error())
		}),
	)
	s.rt.Document().Observe(func(m dom.Mutation) {
		s.pendingMu.Lock()
		s.pending = append(s.pending, protocol.FromMutation(m))
		s.pendingMu.Unlock()
		select {
		case s.notifyCh <- struct{}{}:
		default:
		}
	})
	return s
}

// run mounts the root component and pumps frames until the connection
// drops. It blocks for the life of the session.
func (s *Session) run() {
	defer s.Close()

	s.logger.Info("session started")
	go s.patchLoop()
	go s.pingLoop()

	if err := s.rt.Render(vdom.H(s.server.root, nil), s.rt.Document().Body()); err != nil {
		s.logger.Error("mount failed", "err", err)
		s.server.metrics.Errors.WithLabelValues("mount").Inc()
		s.sendError("E401", "panel failed to mount")
		return
	}
	s.flushPatches()

	s.readLoop()
	s.logger.Info("session ended")
}

// readLoop decodes incoming frames until the socket closes.
func (s *Session) readLoop() {
	s.conn.SetReadLimit(protocol.MaxFrameSize)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("read failed", "err", err)
				s.server.metrics.Errors.WithLabelValues("read").Inc()
			}
			return
		}
		frame, err := protocol.DecodeFrame(data)
		if err != nil {
			s.logger.Warn("bad frame", "err", err)
			s.server.metrics.Errors.WithLabelValues("frame").Inc()
			s.sendError("E101", "malformed frame")
			continue
		}
		switch frame.Type {
		case protocol.FrameEvent:
			s.handleEvent(*frame.Event)
		case protocol.FramePing:
			s.writeFrame(&protocol.Frame{Type: protocol.FramePong})
		}
	}
}

// handleEvent dispatches one client event onto the runtime loop and waits
// for the resulting pass to commit.
func (s *Session) handleEvent(ev protocol.Event) {
	_, span := s.server.tracer.Start(context.Background(), "session.event",
		trace.WithAttributes(
			attribute.String("event.name", ev.Name),
			attribute.Int64("event.target", int64(ev.ID)),
		))
	defer span.End()
	s.server.metrics.Events.WithLabelValues(ev.Name).Inc()
	start := time.Now()

	s.rt.Dispatch(func() {
		defer func() {
			if rec := recover(); rec != nil {
				s.server.metrics.Errors.WithLabelValues("handler_panic").Inc()
				err := fmt.Errorf("handler panic: %v", rec)
				s.logger.Error("event handler panicked", "event", ev.Name, "err", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "handler panic")
				s.sendError("E402", "event handler failed")
			}
		}()
		n := s.rt.Document().ByID(ev.ID)
		if n == nil || !n.HasListener(ev.Name) {
			s.server.metrics.Errors.WithLabelValues("no_handler").Inc()
			s.sendError("E402", fmt.Sprintf("no %s handler for node %d", ev.Name, ev.ID))
			return
		}
		n.Dispatch(dom.Event{Type: ev.Name, Target: n, Value: ev.Value})
	})

	select {
	case <-s.rt.Flushed():
	case <-s.done:
	}
	s.server.metrics.EventDuration.Observe(time.Since(start).Seconds())
}

// patchLoop drains observed mutations into patch frames. It wakes when the
// observer signals and waits for the in-progress pass to finish so one
// user action becomes one frame.
func (s *Session) patchLoop() {
	for {
		select {
		case <-s.notifyCh:
		case <-s.done:
			return
		}
		select {
		case <-s.rt.Flushed():
		case <-s.done:
			return
		}
		s.flushPatches()
	}
}

func (s *Session) flushPatches() {
	s.pendingMu.Lock()
	patches := s.pending
	s.pending = nil
	s.pendingMu.Unlock()
	if len(patches) == 0 {
		return
	}
	s.server.metrics.Patches.Add(float64(len(patches)))
	s.writeFrame(protocol.PatchesFrame(s.seq.Add(1), patches))
}

func (s *Session) pingLoop() {
	ticker := time.NewTicker(s.server.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.writeFrame(&protocol.Frame{Type: protocol.FramePing})
		case <-s.done:
			return
		}
	}
}

func (s *Session) writeFrame(f *protocol.Frame) {
	data, err := protocol.EncodeFrame(f)
	if err != nil {
		s.logger.Error("encode failed", "err", err)
		s.server.metrics.Errors.WithLabelValues("encode").Inc()
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.server.metrics.Errors.WithLabelValues("write").Inc()
	}
}

func (s *Session) sendError(code, message string) {
	s.writeFrame(protocol.ErrorFrame(code, message))
}

// Runtime exposes the session's runtime, used by panel code that streams
// updates into the session from other goroutines.
func (s *Session) Runtime() *ui.Runtime { return s.rt }

// Close tears the session down: socket, runtime, loops.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
		s.rt.Close()
	})
}
