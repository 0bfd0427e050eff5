package publisher

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSStore writes objects to a Cloud Storage bucket.
type GCSStore struct {
	name     string
	bucket   *storage.BucketHandle
	resolved bool
}

// NewGCSStore returns a store for the named bucket. The bucket is resolved on first write.
func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{
		name:   bucket,
		bucket: client.Bucket(bucket),
	}
}

// Bucket implements ObjectStore.
func (s *GCSStore) Bucket() string {
	return s.name
}

// Write implements ObjectStore. Bytes, content type and metadata are written in
// a single object write.
func (s *GCSStore) Write(ctx context.Context, key, contentType string, r io.Reader, metadata map[string]string) error {
	if err := s.resolve(ctx); err != nil {
		return err
	}

	// open writer
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = metadata

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("%w: (%s) failed to write: %w", ErrUploadFailed, key, err)
	}
	// close writer
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: (%s) failed to close writer: %w", ErrUploadFailed, key, err)
	}
	return nil
}

func (s *GCSStore) resolve(ctx context.Context) error {
	if s.resolved {
		return nil
	}
	if s.name == "" {
		return fmt.Errorf("%w: no bucket configured", ErrBucketUnavailable)
	}
	_, err := s.bucket.Attrs(ctx)
	if errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("%w: %s", ErrBucketUnavailable, s.name)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBucketUnavailable, s.name, err)
	}
	s.resolved = true
	return nil
}
