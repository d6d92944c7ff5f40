// Package protocol defines the wire format for live panel sessions:
// server to client patch frames describing host-document mutations, and
// client to server event frames carrying user interactions.
//
// Frames are JSON. The format favors debuggability over density; a binary
// codec can replace it behind the same types if profiles ever demand it.
package protocol
