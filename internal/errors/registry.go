package errors

import "fmt"

// template defines a registered error type.
type template struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]template{
	// ============================================
	// Runtime Errors (E001-E099)
	// ============================================

	"E001": {
		Category:   CategoryRuntime,
		Message:    "hook called outside a component render",
		Suggestion: "Call hooks only from inside a component function while it renders; move this call out of event handlers, goroutines, and module init.",
	},
	"E002": {
		Category:   CategoryRuntime,
		Message:    "hook order changed between renders",
		Suggestion: "Call the same hooks in the same order on every render; hoist hooks out of conditionals and loops.",
	},
	"E003": {
		Category:   CategoryRuntime,
		Message:    "invalid component reference",
		Suggestion: "Pass a tag string or a func(Props) *VNode to vdom.H.",
	},
	"E004": {
		Category:   CategoryRuntime,
		Message:    "hook slot type mismatch",
		Suggestion: "A hook at this call position previously stored a different slot type; keep hook kinds stable across renders.",
	},

	// ============================================
	// Protocol Errors (E101-E199)
	// ============================================

	"E101": {
		Category:   CategoryProtocol,
		Message:    "malformed frame",
		Suggestion: "The client sent a frame the server could not decode; check client and server protocol versions.",
	},
	"E102": {
		Category:   CategoryProtocol,
		Message:    "frame too large",
		Suggestion: "Raise MaxFrameBytes in the server config or send smaller payloads.",
	},

	// ============================================
	// Config Errors (E201-E299)
	// ============================================

	"E201": {
		Category:   CategoryConfig,
		Message:    "invalid configuration",
		Suggestion: "Check quill.json against the documented schema.",
	},

	// ============================================
	// Store Errors (E301-E399)
	// ============================================

	"E301": {
		Category:   CategoryStore,
		Message:    "record not found",
		Suggestion: "",
	},

	// ============================================
	// Session Errors (E401-E499)
	// ============================================

	"E401": {
		Category:   CategorySession,
		Message:    "session render failed",
		Suggestion: "A render pass for this session panicked; the previous view is still live. Check the server log for the component error.",
	},
	"E402": {
		Category:   CategorySession,
		Message:    "event dispatch failed",
		Suggestion: "The event targeted a node with no matching handler, or the handler panicked; check the server log.",
	},
}

// New creates a QuillError from a registered code.
// Panics if the code is not registered; codes are compile-time constants.
func New(code string) *QuillError {
	tpl, ok := registry[code]
	if !ok {
		panic(fmt.Sprintf("errors: unregistered error code %q", code))
	}
	return &QuillError{
		Code:       code,
		Category:   tpl.Category,
		Message:    tpl.Message,
		Suggestion: tpl.Suggestion,
	}
}

// Newf creates a QuillError from a registered code with extra detail.
func Newf(code, format string, args ...any) *QuillError {
	return New(code).WithDetail(format, args...)
}
