package metadata

import (
	"context"
	"maps"
	"time"

	"cloud.google.com/go/firestore"
)

// MemoryStore is an in-process Store with Firestore merge semantics, used for
// dry runs and tests. firestore.ServerTimestamp values are replaced by Now().
type MemoryStore struct {
	Now  func() time.Time
	docs map[string]map[string]interface{}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Now:  time.Now,
		docs: make(map[string]map[string]interface{}),
	}
}

func docPath(collection, id string) string {
	return collection + "/" + id
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, collection, id string) (map[string]interface{}, error) {
	doc, ok := s.docs[docPath(collection, id)]
	if !ok {
		return nil, nil
	}
	return maps.Clone(doc), nil
}

// Merge implements Store.
func (s *MemoryStore) Merge(_ context.Context, collection, id string, data map[string]interface{}) error {
	p := docPath(collection, id)
	doc, ok := s.docs[p]
	if !ok {
		doc = make(map[string]interface{})
		s.docs[p] = doc
	}
	for k, v := range data {
		if v == firestore.ServerTimestamp {
			v = s.Now()
		}
		doc[k] = v
	}
	return nil
}

// Put replaces a whole document, eg. to seed fixtures.
func (s *MemoryStore) Put(collection, id string, doc map[string]interface{}) {
	s.docs[docPath(collection, id)] = maps.Clone(doc)
}

// Len returns the number of stored documents.
func (s *MemoryStore) Len() int {
	return len(s.docs)
}
