// Package store persists panel records (notebook sources, chat
// transcripts) behind a small key-value interface with secondary indexes.
// Two backends ship: an in-memory store for tests and single-process
// deployments, and an S3 store for durable hosting.
package store
