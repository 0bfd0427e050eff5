package gallery

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

func TestPayload(t *testing.T) {
	pub := &types.PublishedAsset{PublicURL: "https://firebasestorage.googleapis.com/v0/b/bkt/o/winnerGallery%2FGagnant.webp?alt=media&token=ABC"}
	data := Payload(types.Asset{}, pub).Data()

	assert.Equal(t, pub.PublicURL, data["photoUrl"])
	assert.Equal(t, true, data["isPublic"])
	assert.Equal(t, "https://firebasestorage.googleapis.com/v0/b/bkt/o/winnergallery%2fgagnant.webp?alt=media&token=abc", data["keywords"])
	assert.NotContains(t, data, metadata.FieldCreatedAt)
}

func TestJobDefaults(t *testing.T) {
	job := Job(Config{OutputDir: "out", Quality: 80})
	require.NoError(t, job.Validate())

	w, h := job.Resize.Bounds(1800, 1200)
	assert.Equal(t, 900, w)
	assert.Equal(t, 600, h)
	assert.Equal(t, []string{metadata.FieldCreatedAt}, job.Metadata.Preserve)
}

func TestRunKeepsCreatedAt(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Gagnant 01.png", "Gagnant 02.png"} {
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 1200, 1800))))
		require.NoError(t, f.Close())
	}

	created := time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC)
	docs := metadata.NewMemoryStore()
	docs.Now = func() time.Time { return time.Date(2025, 10, 20, 8, 0, 0, 0, time.UTC) }
	docs.Put(Collection, "Gagnant 01", map[string]interface{}{
		metadata.FieldCreatedAt: created,
		"photoUrl":              "https://old",
	})

	l := zerolog.Nop()
	p := pipeline.New(pipeline.Options{
		Normalizer: normalizer.New(l),
		Publisher:  publisher.New(publisher.NewMemoryStore("bkt"), l),
		Upserter:   metadata.New(docs, l),
		Logger:     l,
	})

	report, err := Run(context.Background(), p, Config{SourceDir: dir, OutputDir: t.TempDir(), Quality: 80})
	require.NoError(t, err)
	require.NoError(t, report.Err())
	require.Len(t, report.Published, 2)
	assert.Equal(t, 600, report.Published[0].Image.Width)
	assert.Equal(t, 900, report.Published[0].Image.Height)

	old, _ := docs.Get(context.Background(), Collection, "Gagnant 01")
	assert.Equal(t, created, old[metadata.FieldCreatedAt])
	assert.Equal(t, report.Published[0].Published.PublicURL, old["photoUrl"])

	fresh, _ := docs.Get(context.Background(), Collection, "Gagnant 02")
	assert.Equal(t, docs.Now(), fresh[metadata.FieldCreatedAt])
}

func TestRunRequiresDir(t *testing.T) {
	_, err := Run(context.Background(), nil, Config{})
	assert.Error(t, err)
}
