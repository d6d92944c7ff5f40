package store

import (
	"context"
	"errors"

	qerrors "github.com/quill-ui/quill/internal/errors"
)

// Record is one stored value plus its secondary-index entries. Indexes map
// an index name to this record's value in that index, e.g.
// {"notebook": "nb_42"} to group sources by notebook.
type Record struct {
	Key     string            `json:"key"`
	Value   []byte            `json:"value"`
	Indexes map[string]string `json:"indexes,omitempty"`
}

// Store is the persistence surface the panel server talks to. All calls
// take a context; the S3 backend does real I/O.
type Store interface {
	// Get returns the record for key, or an E301 error when absent.
	Get(ctx context.Context, key string) (*Record, error)
	// Put writes the record and replaces its index entries.
	Put(ctx context.Context, rec *Record) error
	// Delete removes the record and its index entries. Deleting an absent
	// key is not an error.
	Delete(ctx context.Context, key string) error
	// ByIndex returns all records whose index entry matches value, in
	// unspecified order.
	ByIndex(ctx context.Context, index, value string) ([]*Record, error)
}

// NotFound builds the canonical absent-record error.
func NotFound(key string) error {
	return qerrors.Newf("E301", "no record for key %q", key)
}

// IsNotFound reports whether err is an absent-record error.
func IsNotFound(err error) bool {
	var qe *qerrors.QuillError
	return errors.As(err, &qe) && qe.Code == "E301"
}
