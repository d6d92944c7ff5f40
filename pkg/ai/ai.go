package ai

import (
	"context"
	"io"
	"sync"
)

// EventType discriminates stream events.
type EventType uint8

const (
	// EventTextDelta carries an incremental chunk of response text.
	EventTextDelta EventType = iota + 1
	// EventToolUse reports the model invoking a tool.
	EventToolUse
	// EventResult closes the turn with the final assembled response.
	EventResult
)

// Message is one turn of conversation context.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Request describes one model turn.
type Request struct {
	Model    string    `json:"model,omitempty"`
	Messages []Message `json:"messages"`
}

// ToolCall is the payload of an EventToolUse event.
type ToolCall struct {
	Name  string `json:"name"`
	Input string `json:"input"`
}

// Result is the payload of the final EventResult event.
type Result struct {
	Text       string `json:"text"`
	StopReason string `json:"stopReason,omitempty"`
}

// Event is one element of a response stream.
type Event struct {
	Type EventType
	Text string    // EventTextDelta
	Tool *ToolCall // EventToolUse
	Done *Result   // EventResult
}

// Client produces response streams. Implementations wrap a model API;
// ScriptedClient fakes one for tests and demos.
type Client interface {
	Stream(ctx context.Context, req Request) (*Stream, error)
}

// Stream delivers events one at a time. Recv returns io.EOF after the
// EventResult event has been consumed, or the producer's error.
type Stream struct {
	events chan Event

	mu  sync.Mutex
	err error

	cancel context.CancelFunc
}

// NewStream creates a stream and hands the caller the producer side. The
// producer must call close when it stops emitting, with a nil error on
// normal completion.
func NewStream(cancel context.CancelFunc) (*Stream, func(err error), chan<- Event) {
	s := &Stream{events: make(chan Event, 16), cancel: cancel}
	done := func(err error) {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.events)
	}
	return s, done, s.events
}

// Recv returns the next event. It blocks until the producer emits, the
// stream ends (io.EOF), or ctx is canceled.
func (s *Stream) Recv(ctx context.Context) (Event, error) {
	select {
	case ev, ok := <-s.events:
		if !ok {
			s.mu.Lock()
			err := s.err
			s.mu.Unlock()
			if err != nil {
				return Event{}, err
			}
			return Event{}, io.EOF
		}
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Close abandons the stream and cancels the producer.
func (s *Stream) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}
