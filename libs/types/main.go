// Package types contains the types used by more then one package in this repo.
package types

import "time"

// Asset is a unit of work to publish.
type Asset struct {
	// Label is a human-readable name. Batch mode uses the filename stem.
	Label      string `json:"label"`
	SourcePath string `json:"source_path"`
	// BlobKey is the destination object name, always under a collection namespace
	// (eg. winnerGallery/foo.webp).
	BlobKey string `json:"blob_key"`
	DocID   string `json:"doc_id"`
}

// NormalizedImage is the local re-encoded file produced from an Asset source.
type NormalizedImage struct {
	Path        string `json:"path"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// PublishedAsset is the result of an upload. A new AccessToken is minted on every
// publish of the same BlobKey.
type PublishedAsset struct {
	Bucket      string `json:"bucket"`
	BlobKey     string `json:"blob_key"`
	AccessToken string `json:"access_token"`
	PublicURL   string `json:"public_url"`
}

// PublishedEvent is the message emitted once an asset has been published and
// its metadata document written.
type PublishedEvent struct {
	Job         string    `json:"job"`
	Label       string    `json:"label"`
	Collection  string    `json:"collection"`
	DocID       string    `json:"doc_id"`
	BlobKey     string    `json:"blob_key"`
	PublicURL   string    `json:"public_url"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	PublishedAt time.Time `json:"published_at"`
}
