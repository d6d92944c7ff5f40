// Package errors provides structured, coded errors for Quill.
//
// Every error class the runtime or its surrounding services can raise has a
// registered code (E001, E101, ...) with a category, a message, and a fix
// suggestion. Coded errors make contract violations greppable in logs and
// let the CLI print actionable diagnostics.
package errors
