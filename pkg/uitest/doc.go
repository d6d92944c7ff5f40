// Package uitest provides helpers for testing components against a live
// runtime: a harness that owns a Runtime and mount root, synchronization
// on flush boundaries, event helpers, and assertions over rendered HTML.
package uitest
