// Package ai exposes streaming model responses to the panel as an opaque
// collaborator: a client produces a stream of incremental events, and
// components consume them through props. Nothing in the UI core depends on
// this package.
package ai
