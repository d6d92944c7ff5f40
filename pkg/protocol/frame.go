package protocol

import (
	"encoding/json"

	qerrors "github.com/quill-ui/quill/internal/errors"
)

// FrameType discriminates the JSON frames on a session socket.
type FrameType string

const (
	FramePatches FrameType = "patches" // server -> client
	FrameEvent   FrameType = "event"   // client -> server
	FrameError   FrameType = "error"   // server -> client
	FramePing    FrameType = "ping"
	FramePong    FrameType = "pong"
)

// MaxFrameSize bounds a single frame in either direction. Chat panels move
// text, not blobs; anything larger than this is a client bug or abuse.
const MaxFrameSize = 1 << 20

// Frame is the envelope for every message on the wire.
type Frame struct {
	Type    FrameType `json:"type"`
	Seq     uint64    `json:"seq,omitempty"`
	Patches []Patch   `json:"patches,omitempty"`
	Event   *Event    `json:"event,omitempty"`
	Error   *WireErr  `json:"error,omitempty"`
}

// Event is a client interaction targeting a host node.
type Event struct {
	Name  string `json:"name"` // "click", "input", ...
	ID    uint64 `json:"id"`   // target node ID
	Value string `json:"value,omitempty"`
}

// WireErr is the client-visible form of a session error.
type WireErr struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EncodeFrame serializes a frame, enforcing the size limit.
func EncodeFrame(f *Frame) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, qerrors.New("E101").Wrap(err)
	}
	if len(data) > MaxFrameSize {
		return nil, qerrors.Newf("E102", "encoded frame is %d bytes", len(data))
	}
	return data, nil
}

// DecodeFrame parses a frame, rejecting oversized or malformed input and
// envelopes whose type is unknown.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) > MaxFrameSize {
		return nil, qerrors.Newf("E102", "frame is %d bytes", len(data))
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, qerrors.New("E101").Wrap(err)
	}
	switch f.Type {
	case FramePatches, FrameEvent, FrameError, FramePing, FramePong:
	default:
		return nil, qerrors.Newf("E101", "unknown frame type %q", f.Type)
	}
	if f.Type == FrameEvent && f.Event == nil {
		return nil, qerrors.Newf("E101", "event frame without event body")
	}
	return &f, nil
}

// PatchesFrame builds a server -> client frame carrying a patch batch.
func PatchesFrame(seq uint64, patches []Patch) *Frame {
	return &Frame{Type: FramePatches, Seq: seq, Patches: patches}
}

// EventFrame builds a client -> server interaction frame.
func EventFrame(ev Event) *Frame {
	return &Frame{Type: FrameEvent, Event: &ev}
}

// ErrorFrame builds a server -> client error frame.
func ErrorFrame(code, message string) *Frame {
	return &Frame{Type: FrameError, Error: &WireErr{Code: code, Message: message}}
}
