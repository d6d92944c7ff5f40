// Package dom is the in-process host document the Quill runtime commits
// into.
//
// It models the small slice of a document tree the reconciler needs:
// element and text nodes, attributes, event listeners, and child insertion,
// removal, and movement. A Document also assigns every node a stable
// numeric ID and can report each mutation to an observer; the live-session
// server uses that to mirror the committed tree to a browser as protocol
// patches.
//
// A Document and its nodes are owned by exactly one runtime event loop.
// They are not safe for concurrent use; marshal all access through
// ui.(*Runtime).Dispatch.
package dom
