// Package promocover publishes the cover image of a promo card and points the
// card document at it. Title and subtitle are curated in the admin panel and
// are only written when given explicitly.
package promocover

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"

	"github.com/cyber-nic/go-gcp-asset-pub/libs/metadata"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/normalizer"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/pipeline"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/types"
)

const (
	Namespace    = "promoCards"
	Collection   = "promoCards"
	DefaultDocID = "prediction-game-cover"
	MaxWidth     = 1400
)

// Config is the promo cover job configuration.
type Config struct {
	Source    string
	OutputDir string
	DocID     string
	Quality   int
	MaxWidth  int
	// Title and Subtitle are written only when non-nil. A non-nil empty string
	// clears the field.
	Title    *string
	Subtitle *string
}

// Job returns the pipeline job for cfg.
func Job(cfg Config) pipeline.Job {
	if cfg.MaxWidth == 0 {
		cfg.MaxWidth = MaxWidth
	}
	return pipeline.Job{
		Name:      "promo-cover",
		Namespace: Namespace,
		OutputDir: cfg.OutputDir,
		Resize:    normalizer.MaxWidth(cfg.MaxWidth),
		Quality:   cfg.Quality,
		Metadata: metadata.Policy{
			Collection: Collection,
			Preserve:   []string{"title", "subtitle"},
		},
		Payload: func(_ types.Asset, pub *types.PublishedAsset) *metadata.Patch {
			p := metadata.NewPatch().
				Set("image", pub.PublicURL).
				Set(metadata.FieldUpdatedAt, firestore.ServerTimestamp)
			setOptional(p, "title", cfg.Title)
			setOptional(p, "subtitle", cfg.Subtitle)
			return p
		},
	}
}

func setOptional(p *metadata.Patch, field string, v *string) {
	switch {
	case v == nil:
	case *v == "":
		p.Clear(field)
	default:
		p.Set(field, *v)
	}
}

// Run publishes the cover.
func Run(ctx context.Context, p *pipeline.Pipeline, cfg Config) (*pipeline.Result, error) {
	if cfg.Source == "" {
		return nil, errors.New("promo cover source required")
	}
	if cfg.DocID == "" {
		cfg.DocID = DefaultDocID
	}

	job := Job(cfg)
	asset := job.NewAsset(cfg.Source)
	asset.Label = "promo cover " + cfg.DocID
	asset.DocID = cfg.DocID

	return p.PublishOne(ctx, job, asset)
}
