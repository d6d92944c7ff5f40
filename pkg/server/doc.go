// Package server hosts live panel sessions. Each websocket connection
// gets its own ui.Runtime and host document; committed document mutations
// stream to the browser as protocol patch frames, and browser events come
// back as event frames dispatched onto the session's runtime loop.
package server
