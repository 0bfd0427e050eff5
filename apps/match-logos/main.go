// Package match publishes the two team logos of a match and upserts the match
// document referencing them.
package match

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/cyber-nic/go-gcp-asset-pub/libs/metadata"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/normalizer"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/pipeline"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/types"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/utils"
)

const (
	Namespace    = "matchLogos"
	Collection   = "matches"
	MaxDimension = 900
)

// Policy keeps the creation time and the counters maintained by the app.
var Policy = metadata.Policy{
	Collection: Collection,
	Preserve:   []string{metadata.FieldCreatedAt, "predictionCount", "trends"},
}

// Team is one side of a match.
type Team struct {
	Name string
	Logo string
}

// Config is the match job configuration.
type Config struct {
	// MatchID defaults to <competition>-<start date>, eg. classico-2025-10-25.
	MatchID      string
	Competition  string
	StartTime    time.Time
	TeamA        Team
	TeamB        Team
	OutputDir    string
	Quality      int
	MaxDimension int
}

// Result holds the published logos and the match document payload.
type Result struct {
	MatchID  string                 `json:"match_id"`
	LogoA    *pipeline.Result       `json:"logo_a"`
	LogoB    *pipeline.Result       `json:"logo_b"`
	Document map[string]interface{} `json:"-"`
}

// ID returns the match document id.
func (c Config) ID() string {
	if c.MatchID != "" {
		return c.MatchID
	}
	return utils.Slug(c.Competition) + "-" + c.StartTime.UTC().Format("2006-01-02")
}

func (c Config) validate() error {
	var errs []error
	if c.Competition == "" {
		errs = append(errs, errors.New("competition required"))
	}
	if c.TeamA.Name == "" || c.TeamB.Name == "" {
		errs = append(errs, errors.New("both team names required"))
	}
	if c.TeamA.Logo == "" || c.TeamB.Logo == "" {
		errs = append(errs, errors.New("both team logos required"))
	}
	if c.StartTime.IsZero() {
		errs = append(errs, errors.New("start time required"))
	}
	return errors.Join(errs...)
}

// Job returns the logo job for cfg.
func Job(cfg Config) pipeline.Job {
	if cfg.MaxDimension == 0 {
		cfg.MaxDimension = MaxDimension
	}
	return pipeline.Job{
		Name:      "match-logos",
		Namespace: Namespace,
		OutputDir: cfg.OutputDir,
		Resize:    normalizer.MaxSide(cfg.MaxDimension),
		Quality:   cfg.Quality,
		Metadata:  Policy,
	}
}

// LogoAsset returns the asset of a team logo, keyed matchLogos/<competition>-<team>.webp.
func LogoAsset(job pipeline.Job, competition string, team Team) types.Asset {
	name := utils.Slug(competition) + "-" + utils.Slug(team.Name)
	return types.Asset{
		Label:      team.Name,
		SourcePath: team.Logo,
		BlobKey:    path.Join(job.Namespace, name+normalizer.Extension),
	}
}

// Payload is the match document written on every run. predictionCount and
// trends only seed a new document, see Policy.
func Payload(cfg Config, a, b *types.PublishedAsset) *metadata.Patch {
	return metadata.NewPatch().
		Set("teamA", cfg.TeamA.Name).
		Set("teamB", cfg.TeamB.Name).
		Set("teamALogo", a.PublicURL).
		Set("teamBLogo", b.PublicURL).
		Set("competition", cfg.Competition).
		Set("startTime", cfg.StartTime.UTC()).
		Set("predictionCount", 0).
		Set("trends", map[string]interface{}{}).
		Set(metadata.FieldUpdatedAt, firestore.ServerTimestamp)
}

// Run normalizes both logos before uploading anything, publishes them, then
// upserts the match document.
func Run(ctx context.Context, p *pipeline.Pipeline, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	job := Job(cfg)
	if err := job.Validate(); err != nil {
		return nil, err
	}
	assets := []types.Asset{
		LogoAsset(job, cfg.Competition, cfg.TeamA),
		LogoAsset(job, cfg.Competition, cfg.TeamB),
	}
	if assets[0].BlobKey == assets[1].BlobKey {
		return nil, fmt.Errorf("teams %q and %q map to the same logo key %s", cfg.TeamA.Name, cfg.TeamB.Name, assets[0].BlobKey)
	}

	images := make([]*types.NormalizedImage, len(assets))
	for i, a := range assets {
		img, err := p.Normalize(job, a)
		if err != nil {
			return nil, err
		}
		images[i] = img
	}

	results := make([]*pipeline.Result, len(assets))
	for i, a := range assets {
		pub, err := p.Publish(ctx, a, images[i])
		if err != nil {
			return nil, err
		}
		results[i] = &pipeline.Result{Asset: a, Image: images[i], Published: pub}
	}

	id := cfg.ID()
	doc, err := p.Upserter().Upsert(ctx, Policy, id, Payload(cfg, results[0].Published, results[1].Published))
	if err != nil {
		return nil, &pipeline.AssetError{Asset: "match " + id, Step: pipeline.StepUpsert, Err: err}
	}

	for _, res := range results {
		res.Asset.DocID = id
		res.Collection = Collection
		p.Report(ctx, job, res)
	}

	return &Result{MatchID: id, LogoA: results[0], LogoB: results[1], Document: doc}, nil
}
