package publisher

import (
	"context"
	"fmt"
	"io"
	"maps"
	"sort"
)

// Object is an object held by MemoryStore.
type Object struct {
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

// MemoryStore is an in-process ObjectStore used for dry runs and tests.
type MemoryStore struct {
	name    string
	objects map[string]Object
	writes  int
}

// NewMemoryStore creates an empty store for the named bucket.
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{
		name:    bucket,
		objects: make(map[string]Object),
	}
}

// Bucket implements ObjectStore.
func (s *MemoryStore) Bucket() string {
	return s.name
}

// Write implements ObjectStore.
func (s *MemoryStore) Write(_ context.Context, key, contentType string, r io.Reader, metadata map[string]string) error {
	if s.name == "" {
		return fmt.Errorf("%w: no bucket configured", ErrBucketUnavailable)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: (%s) %w", ErrUploadFailed, key, err)
	}
	s.objects[key] = Object{
		Data:        b,
		ContentType: contentType,
		Metadata:    maps.Clone(metadata),
	}
	s.writes++
	return nil
}

// Object returns the object stored under key.
func (s *MemoryStore) Object(key string) (Object, bool) {
	o, ok := s.objects[key]
	return o, ok
}

// Keys returns the stored object names, sorted.
func (s *MemoryStore) Keys() []string {
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Writes returns the number of successful writes.
func (s *MemoryStore) Writes() int {
	return s.writes
}
