// Package gallery publishes every image of a directory to the winner gallery.
package gallery

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"

	"github.com/cyber-nic/go-gcp-asset-pub/libs/metadata"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/normalizer"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/pipeline"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/types"
)

const (
	Namespace    = "winnerGallery"
	Collection   = "winnerGallery"
	MaxDimension = 900
)

// Config is the winner gallery job configuration.
type Config struct {
	SourceDir    string
	OutputDir    string
	Quality      int
	MaxDimension int
	StopOnError  bool
}

// Job returns the pipeline job for cfg.
func Job(cfg Config) pipeline.Job {
	if cfg.MaxDimension == 0 {
		cfg.MaxDimension = MaxDimension
	}
	return pipeline.Job{
		Name:      "winner-gallery",
		Namespace: Namespace,
		OutputDir: cfg.OutputDir,
		Resize:    normalizer.MaxSide(cfg.MaxDimension),
		Quality:   cfg.Quality,
		Metadata: metadata.Policy{
			Collection: Collection,
			Preserve:   []string{metadata.FieldCreatedAt},
		},
		Payload:     Payload,
		StopOnError: cfg.StopOnError,
	}
}

// Payload is the gallery document of a published photo. keywords feeds the
// front-end search.
func Payload(_ types.Asset, pub *types.PublishedAsset) *metadata.Patch {
	return metadata.NewPatch().
		Set("photoUrl", pub.PublicURL).
		Set("isPublic", true).
		Set("keywords", strings.ToLower(pub.PublicURL)).
		Set(metadata.FieldUpdatedAt, firestore.ServerTimestamp)
}

// Run publishes the directory.
func Run(ctx context.Context, p *pipeline.Pipeline, cfg Config) (*pipeline.BatchReport, error) {
	if cfg.SourceDir == "" {
		return nil, errors.New("gallery source dir required")
	}
	return p.PublishDir(ctx, Job(cfg), cfg.SourceDir)
}
