package promocover

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyber-nic/go-gcp-asset-pub/libs/metadata"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/normalizer"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/pipeline"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/publisher"
)

func newPipeline(objects *publisher.MemoryStore, docs *metadata.MemoryStore) *pipeline.Pipeline {
	l := zerolog.Nop()
	return pipeline.New(pipeline.Options{
		Normalizer: normalizer.New(l),
		Publisher:  publisher.New(objects, l),
		Upserter:   metadata.New(docs, l),
		Logger:     l,
	})
}

func writeCover(t *testing.T, w, h int) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "IMG-20251006-WA0008.png")
	f, err := os.Create(src)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
	require.NoError(t, f.Close())
	return src
}

func ptr(s string) *string { return &s }

func TestRunTitleHandling(t *testing.T) {
	tests := map[string]struct {
		title    *string
		subtitle *string
		want     map[string]interface{}
	}{
		"omitted keeps curated values": {
			want: map[string]interface{}{"title": "Jeu de pronostics", "subtitle": "Gagnez des lots"},
		},
		"given overwrites": {
			title: ptr("Classico"),
			want:  map[string]interface{}{"title": "Classico", "subtitle": "Gagnez des lots"},
		},
		"empty clears": {
			subtitle: ptr(""),
			want:     map[string]interface{}{"title": "Jeu de pronostics", "subtitle": nil},
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			objects := publisher.NewMemoryStore("bkt")
			docs := metadata.NewMemoryStore()
			docs.Put(Collection, DefaultDocID, map[string]interface{}{
				"title":    "Jeu de pronostics",
				"subtitle": "Gagnez des lots",
			})

			res, err := Run(context.Background(), newPipeline(objects, docs), Config{
				Source:    writeCover(t, 2000, 1000),
				OutputDir: t.TempDir(),
				Quality:   80,
				Title:     test.title,
				Subtitle:  test.subtitle,
			})
			require.NoError(t, err)

			doc, _ := docs.Get(context.Background(), Collection, DefaultDocID)
			for k, v := range test.want {
				assert.Equal(t, v, doc[k], k)
			}
			assert.Equal(t, res.Published.PublicURL, doc["image"])
			assert.NotNil(t, doc[metadata.FieldUpdatedAt])
			assert.NotContains(t, doc, metadata.FieldCreatedAt)
		})
	}
}

func TestRunResizesToMaxWidth(t *testing.T) {
	objects := publisher.NewMemoryStore("bkt")
	res, err := Run(context.Background(), newPipeline(objects, metadata.NewMemoryStore()), Config{
		Source:    writeCover(t, 2800, 1000),
		OutputDir: t.TempDir(),
		DocID:     "summer-cover",
		Quality:   80,
	})
	require.NoError(t, err)

	assert.Equal(t, 1400, res.Image.Width)
	assert.Equal(t, 500, res.Image.Height)
	assert.Equal(t, "summer-cover", res.Asset.DocID)
	assert.Equal(t, []string{"promoCards/IMG-20251006-WA0008.webp"}, objects.Keys())
}

func TestRunRequiresSource(t *testing.T) {
	_, err := Run(context.Background(), newPipeline(publisher.NewMemoryStore("bkt"), metadata.NewMemoryStore()), Config{})
	assert.Error(t, err)
}
