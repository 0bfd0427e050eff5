package match

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyber-nic/go-gcp-asset-pub/libs/metadata"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/normalizer"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/pipeline"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/publisher"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/types"
)

type harness struct {
	objects  *publisher.MemoryStore
	docs     *metadata.MemoryStore
	events   *recorder
	pipeline *pipeline.Pipeline
}

type recorder struct {
	events []types.PublishedEvent
}

func (r *recorder) Report(_ context.Context, ev types.PublishedEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func newHarness() *harness {
	h := &harness{
		objects: publisher.NewMemoryStore("bkt"),
		docs:    metadata.NewMemoryStore(),
		events:  &recorder{},
	}
	l := zerolog.Nop()
	h.pipeline = pipeline.New(pipeline.Options{
		Normalizer: normalizer.New(l),
		Publisher:  publisher.New(h.objects, l),
		Upserter:   metadata.New(h.docs, l),
		Reporter:   h.events,
		Logger:     l,
	})
	return h
}

func writeLogo(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 1024, 512))))
	require.NoError(t, f.Close())
	return p
}

func classico(t *testing.T) Config {
	dir := t.TempDir()
	return Config{
		Competition: "Clásico",
		StartTime:   time.Date(2025, 10, 25, 14, 15, 0, 0, time.UTC),
		TeamA:       Team{Name: "Real Madrid", Logo: writeLogo(t, dir, "real-madrid.png")},
		TeamB:       Team{Name: "Barça", Logo: writeLogo(t, dir, "barca.png")},
		OutputDir:   t.TempDir(),
		Quality:     80,
	}
}

func TestConfigID(t *testing.T) {
	cfg := Config{Competition: "Clásico", StartTime: time.Date(2025, 10, 25, 14, 15, 0, 0, time.UTC)}
	assert.Equal(t, "clasico-2025-10-25", cfg.ID())

	cfg.MatchID = "classico-2025-10-25"
	assert.Equal(t, "classico-2025-10-25", cfg.ID())
}

func TestRunPublishesLogosAndMatch(t *testing.T) {
	h := newHarness()
	cfg := classico(t)

	res, err := Run(context.Background(), h.pipeline, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"matchLogos/clasico-barca.webp", "matchLogos/clasico-real-madrid.webp"}, h.objects.Keys())
	assert.Equal(t, 900, res.LogoA.Image.Width)
	assert.Equal(t, 450, res.LogoA.Image.Height)

	doc, _ := h.docs.Get(context.Background(), Collection, "clasico-2025-10-25")
	assert.Equal(t, "Real Madrid", doc["teamA"])
	assert.Equal(t, "Barça", doc["teamB"])
	assert.Equal(t, res.LogoA.Published.PublicURL, doc["teamALogo"])
	assert.Equal(t, res.LogoB.Published.PublicURL, doc["teamBLogo"])
	assert.Equal(t, cfg.StartTime, doc["startTime"])
	assert.Equal(t, 0, doc["predictionCount"])
	assert.Equal(t, map[string]interface{}{}, doc["trends"])
	assert.NotNil(t, doc[metadata.FieldCreatedAt])

	require.Len(t, h.events.events, 2)
	for i, logo := range []*pipeline.Result{res.LogoA, res.LogoB} {
		ev := h.events.events[i]
		assert.Equal(t, "match-logos", ev.Job)
		assert.Equal(t, Collection, ev.Collection)
		assert.Equal(t, "clasico-2025-10-25", ev.DocID)
		assert.Equal(t, logo.Published.BlobKey, ev.BlobKey)
		assert.Equal(t, logo.Published.PublicURL, ev.PublicURL)
	}
}

func TestRunPreservesCounters(t *testing.T) {
	h := newHarness()
	cfg := classico(t)
	created := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	trends := map[string]interface{}{"teamA": 61, "draw": 12, "teamB": 27}
	h.docs.Put(Collection, cfg.ID(), map[string]interface{}{
		metadata.FieldCreatedAt: created,
		"predictionCount":       1342,
		"trends":                trends,
	})

	_, err := Run(context.Background(), h.pipeline, cfg)
	require.NoError(t, err)

	doc, _ := h.docs.Get(context.Background(), Collection, cfg.ID())
	assert.Equal(t, created, doc[metadata.FieldCreatedAt])
	assert.Equal(t, 1342, doc["predictionCount"])
	assert.Equal(t, trends, doc["trends"])
}

func TestRunChecksBothLogosBeforeUpload(t *testing.T) {
	h := newHarness()
	cfg := classico(t)
	cfg.TeamB.Logo = filepath.Join(t.TempDir(), "missing.png")

	_, err := Run(context.Background(), h.pipeline, cfg)
	require.ErrorIs(t, err, normalizer.ErrSourceNotFound)

	var ae *pipeline.AssetError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Barça", ae.Asset)
	assert.Zero(t, h.objects.Writes())
	assert.Zero(t, h.docs.Len())
	assert.Empty(t, h.events.events)
}

func TestRunValidation(t *testing.T) {
	h := newHarness()

	_, err := Run(context.Background(), h.pipeline, Config{})
	assert.ErrorContains(t, err, "competition required")

	cfg := classico(t)
	cfg.TeamB.Name = "REAL madrid"
	_, err = Run(context.Background(), h.pipeline, cfg)
	assert.ErrorContains(t, err, "same logo key")
}
