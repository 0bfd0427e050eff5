// Package metadata merges pipeline-produced fields into documents without
// clobbering fields owned by someone else.
package metadata

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
)

const (
	// FieldCreatedAt is stamped on first write and carried forward afterwards.
	FieldCreatedAt = "createdAt"
	// FieldUpdatedAt is overwritten on every write.
	FieldUpdatedAt = "updatedAt"
)

var (
	// ErrDocumentReadFailed is returned when the pre-read of the existing document fails.
	// Nothing is written in that case.
	ErrDocumentReadFailed = errors.New("document read failed")
	// ErrDocumentWriteFailed is returned when the merge write fails.
	ErrDocumentWriteFailed = errors.New("document write failed")
)

// Store reads documents and merge-writes them.
type Store interface {
	// Get returns the document data, or nil when the document does not exist.
	Get(ctx context.Context, collection, id string) (map[string]interface{}, error)
	// Merge writes data, leaving fields absent from data untouched.
	Merge(ctx context.Context, collection, id string, data map[string]interface{}) error
}

// Policy names a collection and its externally-owned fields.
type Policy struct {
	Collection string
	Preserve   []string
}

// Upserter applies patches to documents.
type Upserter struct {
	store Store
	log   zerolog.Logger
}

// New creates an Upserter backed by store.
func New(store Store, l zerolog.Logger) *Upserter {
	return &Upserter{store: store, log: l}
}

// Upsert merges patch into policy.Collection/docID and returns the payload written.
//
// For each preserved field that the patch leaves unset or empty, a non-empty
// stored value is copied into the payload. A preserved createdAt that is absent
// everywhere is stamped with the server time.
func (u *Upserter) Upsert(ctx context.Context, policy Policy, docID string, patch *Patch) (map[string]interface{}, error) {
	if patch == nil {
		patch = NewPatch()
	}

	existing, err := u.store.Get(ctx, policy.Collection, docID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrDocumentReadFailed, policy.Collection, docID, err)
	}

	payload := patch.Data()
	for _, field := range policy.Preserve {
		if patch.IsCleared(field) {
			continue
		}
		if v, ok := patch.Get(field); ok && !isEmpty(v) && v != firestore.ServerTimestamp {
			continue
		}

		if prev, ok := existing[field]; ok && !isEmpty(prev) {
			payload[field] = prev
			u.log.Debug().Str("doc", docID).Str("field", field).Msg("preserved existing value")
			continue
		}

		if field == FieldCreatedAt {
			payload[field] = firestore.ServerTimestamp
		}
	}

	if err := u.store.Merge(ctx, policy.Collection, docID, payload); err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrDocumentWriteFailed, policy.Collection, docID, err)
	}

	u.log.Debug().
		Str("collection", policy.Collection).
		Str("doc", docID).
		Strs("fields", patch.Fields()).
		Bool("created", existing == nil).
		Msg("document upserted")

	return payload, nil
}
