// Package publisher uploads normalized images to a bucket under a fresh public
// download token and returns the resulting URL.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cyber-nic/go-gcp-asset-pub/libs/types"
)

const (
	// TokenMetadataKey is the object metadata field read by the download endpoint.
	TokenMetadataKey = "firebaseStorageDownloadTokens"
	// DefaultBaseURL is the Firebase Storage download endpoint.
	DefaultBaseURL = "https://firebasestorage.googleapis.com/v0/b/"
)

var (
	// ErrUploadFailed is returned on any transport or permission error from the object store.
	ErrUploadFailed = errors.New("upload failed")
	// ErrBucketUnavailable is returned when the configured bucket cannot be resolved.
	ErrBucketUnavailable = errors.New("bucket unavailable")
)

// ObjectStore writes object bytes and metadata. Write replaces the object and its
// whole metadata map.
type ObjectStore interface {
	Bucket() string
	Write(ctx context.Context, key, contentType string, r io.Reader, metadata map[string]string) error
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithBaseURL overrides the download endpoint, eg. for the storage emulator.
func WithBaseURL(u string) Option {
	return func(p *Publisher) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithTokenSource overrides token generation.
func WithTokenSource(f func() (string, error)) Option {
	return func(p *Publisher) {
		p.newToken = f
	}
}

// Publisher uploads files and mints their access tokens.
type Publisher struct {
	store    ObjectStore
	baseURL  string
	newToken func() (string, error)
	log      zerolog.Logger
}

// New creates a Publisher writing to store.
func New(store ObjectStore, l zerolog.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		store:    store,
		baseURL:  DefaultBaseURL,
		newToken: newToken,
		log:      l,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// newToken returns a random (v4) UUID. uuid.NewRandom reads from crypto/rand.
func newToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Publish uploads the file at path under key. Publishing an existing key
// overwrites its bytes and replaces its token, invalidating the previous URL.
func (p *Publisher) Publish(ctx context.Context, key, path, contentType string) (*types.PublishedAsset, error) {
	bucket := p.store.Bucket()
	if bucket == "" {
		return nil, fmt.Errorf("%w: no bucket configured", ErrBucketUnavailable)
	}

	token, err := p.newToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: (%s) %v", ErrUploadFailed, path, err)
	}
	defer f.Close()

	md := map[string]string{TokenMetadataKey: token}
	if err := p.store.Write(ctx, key, contentType, f, md); err != nil {
		if errors.Is(err, ErrBucketUnavailable) || errors.Is(err, ErrUploadFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: (%s) %w", ErrUploadFailed, key, err)
	}

	res := &types.PublishedAsset{
		Bucket:      bucket,
		BlobKey:     key,
		AccessToken: token,
		PublicURL:   PublicURL(p.baseURL, bucket, key, token),
	}
	p.log.Debug().Str("bucket", bucket).Str("blob_key", key).Msg("object uploaded")
	return res, nil
}
