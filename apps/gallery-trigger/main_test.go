package trigger

import (
	"context"
	"testing"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldHandle(t *testing.T) {
	const publish = "africaphone-vente.firebasestorage.app"
	tests := []struct {
		bucket string
		name   string
		want   bool
		reason string
	}{
		{bucket: "drop", name: "winners/Gagnant 01.JPG", want: true},
		{bucket: "drop", name: "winners/photo.heic", want: true},
		{bucket: publish, name: "incoming/photo.png", want: true},
		{bucket: "drop", name: "winnerGallery/photo.webp", want: true},
		{bucket: publish, name: "winnerGallery/photo.webp", reason: "already published"},
		{bucket: publish, name: "promoCards/IMG-20251006-WA0008.webp", reason: "already published"},
		{bucket: publish, name: "matchLogos/classico-real-madrid.webp", reason: "already published"},
		{bucket: "drop", name: "matchLogos/classico-barca.webp", want: true},
		{bucket: "drop", name: "winners/.jpg", reason: "no file name"},
		{bucket: "drop", name: "notes.txt", reason: "unsupported extension"},
		{bucket: "drop", name: "winners/", reason: "not a file"},
		{bucket: "drop", name: "", reason: "not a file"},
	}
	for _, test := range tests {
		got, reason := shouldHandle(test.bucket, test.name, publish)
		if got != test.want || reason != test.reason {
			t.Errorf("shouldHandle(%q, %q) = %v, %q, want %v, %q", test.bucket, test.name, got, reason, test.want, test.reason)
		}
	}
}

func TestHandlerRejectsOtherEvents(t *testing.T) {
	e := event.New()
	e.SetType("google.cloud.storage.object.v1.deleted")
	err := handler(context.Background(), e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported event type")
}

func TestHandlerRejectsDryRun(t *testing.T) {
	t.Setenv("DRY_RUN", "true")
	t.Setenv("BUCKET_NAME", "bkt")
	t.Setenv("WEBP_QUALITY", "80")

	e := event.New()
	e.SetType(FinalizedEventType)
	err := handler(context.Background(), e)
	assert.EqualError(t, err, "DRY_RUN is not supported by the trigger")
}
