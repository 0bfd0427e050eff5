// Package pipeline runs assets through normalize, publish and metadata upsert,
// one asset at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/cyber-nic/go-gcp-asset-pub/libs/metadata"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/normalizer"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/publisher"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/types"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/utils"
)

// Step names a pipeline stage.
type Step string

const (
	StepNormalize Step = "normalize"
	StepPublish   Step = "publish"
	StepUpsert    Step = "upsert"
)

// AssetError identifies the asset and step that failed.
type AssetError struct {
	Asset  string
	Source string
	Step   Step
	Err    error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset %s (%s): %s: %v", e.Asset, e.Source, e.Step, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a published asset.
type Result struct {
	Asset      types.Asset            `json:"asset"`
	Image      *types.NormalizedImage `json:"image"`
	Published  *types.PublishedAsset  `json:"published"`
	Collection string                 `json:"collection,omitempty"`
	Document   map[string]interface{} `json:"-"`
}

// Options are the collaborators of a Pipeline. They are created once per run
// and shared by every asset.
type Options struct {
	Normalizer *normalizer.Normalizer
	Publisher  *publisher.Publisher
	Upserter   *metadata.Upserter
	Reporter   Reporter
	Logger     zerolog.Logger
}

// Pipeline publishes assets.
type Pipeline struct {
	normalizer *normalizer.Normalizer
	publisher  *publisher.Publisher
	upserter   *metadata.Upserter
	reporter   Reporter
	log        zerolog.Logger
	now        func() time.Time
}

// New creates a Pipeline. A nil Reporter logs results.
func New(o Options) *Pipeline {
	r := o.Reporter
	if r == nil {
		r = NewLogReporter(o.Logger)
	}
	return &Pipeline{
		normalizer: o.Normalizer,
		publisher:  o.Publisher,
		upserter:   o.Upserter,
		reporter:   r,
		log:        o.Logger,
		now:        time.Now,
	}
}

// Upserter returns the metadata upserter, for jobs that write documents
// spanning several assets.
func (p *Pipeline) Upserter() *metadata.Upserter {
	return p.upserter
}

// Normalize runs the normalize step of asset.
func (p *Pipeline) Normalize(job Job, asset types.Asset) (*types.NormalizedImage, error) {
	dst := filepath.Join(job.OutputDir, path.Base(asset.BlobKey))
	img, err := p.normalizer.Normalize(asset.SourcePath, dst, job.Resize, job.Quality)
	if err != nil {
		return nil, &AssetError{Asset: asset.Label, Source: asset.SourcePath, Step: StepNormalize, Err: err}
	}
	return img, nil
}

// Publish runs the publish step of an already normalized asset.
func (p *Pipeline) Publish(ctx context.Context, asset types.Asset, img *types.NormalizedImage) (*types.PublishedAsset, error) {
	pub, err := p.publisher.Publish(ctx, asset.BlobKey, img.Path, img.ContentType)
	if err != nil {
		return nil, &AssetError{Asset: asset.Label, Source: asset.SourcePath, Step: StepPublish, Err: err}
	}
	p.log.Info().Str("asset", asset.Label).Str("blob_key", pub.BlobKey).Str("url", pub.PublicURL).Msg("uploaded")
	return pub, nil
}

// Stage normalizes and publishes asset without touching metadata.
func (p *Pipeline) Stage(ctx context.Context, job Job, asset types.Asset) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	img, err := p.Normalize(job, asset)
	if err != nil {
		return nil, err
	}
	pub, err := p.Publish(ctx, asset, img)
	if err != nil {
		return nil, err
	}
	return &Result{Asset: asset, Image: img, Published: pub}, nil
}

// PublishOne normalizes, publishes and upserts the metadata of a single asset.
// Any failure aborts the asset; nothing is retried.
func (p *Pipeline) PublishOne(ctx context.Context, job Job, asset types.Asset) (*Result, error) {
	res, err := p.Stage(ctx, job, asset)
	if err != nil {
		return nil, err
	}

	patch := metadata.NewPatch()
	if job.Payload != nil {
		patch = job.Payload(asset, res.Published)
	}
	doc, err := p.upserter.Upsert(ctx, job.Metadata, asset.DocID, patch)
	if err != nil {
		return nil, &AssetError{Asset: asset.Label, Source: asset.SourcePath, Step: StepUpsert, Err: err}
	}
	res.Collection = job.Metadata.Collection
	res.Document = doc

	p.log.Info().
		Str("asset", asset.Label).
		Str("collection", job.Metadata.Collection).
		Str("doc", asset.DocID).
		Msg("document upserted")

	p.Report(ctx, job, res)
	return res, nil
}

// BatchReport lists the published and failed assets of a directory run.
type BatchReport struct {
	Dir       string        `json:"dir"`
	Skipped   []string      `json:"skipped"`
	Published []*Result     `json:"published"`
	Failed    []*AssetError `json:"-"`
	Errors    []string      `json:"errors"`
}

// Err joins the per-asset failures, or returns nil when every asset was published.
func (r *BatchReport) Err() error {
	errs := make([]error, len(r.Failed))
	for i, e := range r.Failed {
		errs[i] = e
	}
	return errors.Join(errs...)
}

func (r *BatchReport) fail(err error) {
	var ae *AssetError
	if !errors.As(err, &ae) {
		ae = &AssetError{Err: err}
	}
	r.Failed = append(r.Failed, ae)
	r.Errors = append(r.Errors, ae.Error())
}

// PublishDir publishes every supported image directly inside dir, in name
// order. Subdirectories, other extensions and names that are only an
// extension (".jpg") are skipped. A failed asset is
// recorded and the batch moves on unless job.StopOnError is set, in which case
// the failure is returned.
func (p *Pipeline) PublishDir(ctx context.Context, job Job, dir string) (*BatchReport, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", normalizer.ErrSourceNotFound, dir, err)
	}

	report := &BatchReport{Dir: dir}
	for _, e := range entries {
		if e.IsDir() || !normalizer.IsSupported(e.Name()) || utils.FileStem(e.Name()) == "" {
			report.Skipped = append(report.Skipped, e.Name())
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		asset := job.NewAsset(filepath.Join(dir, e.Name()))
		res, err := p.PublishOne(ctx, job, asset)
		if err != nil {
			p.log.Error().Err(err).Str("asset", asset.Label).Msg("asset failed")
			report.fail(err)
			if job.StopOnError {
				return report, err
			}
			continue
		}
		report.Published = append(report.Published, res)
	}

	p.log.Info().
		Str("dir", dir).
		Int("published", len(report.Published)).
		Int("failed", len(report.Failed)).
		Int("skipped", len(report.Skipped)).
		Msg("batch done")

	return report, nil
}

// Report emits the published event of res. Reporter failures are logged and
// never returned.
func (p *Pipeline) Report(ctx context.Context, job Job, res *Result) {
	ev := types.PublishedEvent{
		Job:         job.Name,
		Label:       res.Asset.Label,
		Collection:  res.Collection,
		DocID:       res.Asset.DocID,
		BlobKey:     res.Published.BlobKey,
		PublicURL:   res.Published.PublicURL,
		Width:       res.Image.Width,
		Height:      res.Image.Height,
		PublishedAt: p.now().UTC(),
	}
	if err := p.reporter.Report(ctx, ev); err != nil {
		p.log.Warn().Err(err).Str("asset", res.Asset.Label).Msg("failed to report")
	}
}
