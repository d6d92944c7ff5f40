package ai

import (
	"context"
	"strings"
	"time"
)

// ScriptedClient replays a fixed sequence of events for every request.
// Used in tests and the demo panel; an optional delay between events
// simulates network pacing.
type ScriptedClient struct {
	Events []Event
	Delay  time.Duration
}

// Script builds a scripted client that streams text word by word and
// finishes with a result carrying the full text.
func Script(text string) *ScriptedClient {
	var events []Event
	for _, w := range strings.SplitAfter(text, " ") {
		if w != "" {
			events = append(events, Event{Type: EventTextDelta, Text: w})
		}
	}
	events = append(events, Event{Type: EventResult, Done: &Result{Text: text, StopReason: "end_turn"}})
	return &ScriptedClient{Events: events}
}

func (c *ScriptedClient) Stream(ctx context.Context, req Request) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)
	s, done, out := NewStream(cancel)
	events := append([]Event(nil), c.Events...)
	delay := c.Delay
	go func() {
		for _, ev := range events {
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					done(ctx.Err())
					return
				}
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				done(ctx.Err())
				return
			}
		}
		done(nil)
	}()
	return s, nil
}
