// Package trigger is the gallery-trigger cloud function. It is triggered by a
// storage bucket Finalize event and publishes the dropped image to the winner
// gallery.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/googleapis/google-cloudevents-go/cloud/storagedata"
	"google.golang.org/protobuf/encoding/protojson"

	match "github.com/cyber-nic/go-gcp-asset-pub/apps/match-logos"
	promocover "github.com/cyber-nic/go-gcp-asset-pub/apps/promo-cover"
	gallery "github.com/cyber-nic/go-gcp-asset-pub/apps/winner-gallery"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/config"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/gcp"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/logging"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/normalizer"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/utils"
)

// FinalizedEventType is the only event type handled.
const FinalizedEventType = "google.cloud.storage.object.v1.finalized"

func init() {
	functions.CloudEvent("Handler", handler)
}

// publishedNamespaces are the prefixes the publishing jobs write to in the
// publish bucket.
var publishedNamespaces = []string{gallery.Namespace, promocover.Namespace, match.Namespace}

// shouldHandle reports whether the object is an image to publish. Objects the
// jobs wrote themselves (their namespaces in the publish bucket) are ignored so
// an upload never triggers another one.
func shouldHandle(bucket, name, publishBucket string) (bool, string) {
	switch {
	case name == "" || strings.HasSuffix(name, "/"):
		return false, "not a file"
	case !normalizer.IsSupported(name):
		return false, "unsupported extension"
	case utils.FileStem(name) == "":
		return false, "no file name"
	}
	if bucket == publishBucket {
		for _, ns := range publishedNamespaces {
			if strings.HasPrefix(name, ns+"/") {
				return false, "already published"
			}
		}
	}
	return true, ""
}

// handler is the cloud function entrypoint
func handler(ctx context.Context, e event.Event) error {
	if e.Type() != FinalizedEventType {
		return fmt.Errorf("unsupported event type: %s", e.Type())
	}

	// app config
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.DryRun {
		return errors.New("DRY_RUN is not supported by the trigger")
	}
	l := logging.New(cfg.Debug)

	// unmarshal event data
	var data storagedata.StorageObjectData
	if err := protojson.Unmarshal(e.Data(), &data); err != nil {
		return fmt.Errorf("protojson.Unmarshal: %w", err)
	}

	// src bucket and object
	s, f := data.GetBucket(), data.GetName()
	if ok, reason := shouldHandle(s, f, cfg.BucketName); !ok {
		l.Debug().Str("bucket", s).Str("object", f).Str("reason", reason).Msg("skipped")
		return nil
	}

	rt, err := gcp.NewRuntime(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			l.Warn().Err(err).Msg("failed to close clients")
		}
	}()

	tmp, err := os.MkdirTemp("", "gallery-trigger-")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	// download src object
	src := filepath.Join(tmp, "src", utils.GetFilenameFromPath(f))
	if err := utils.DownloadBucketFile(ctx, rt.Clients.Storage.Bucket(s).Object(f), src); err != nil {
		return fmt.Errorf("%w: %v", normalizer.ErrSourceNotFound, err)
	}

	job := gallery.Job(gallery.Config{
		OutputDir: filepath.Join(tmp, "out"),
		Quality:   cfg.Quality,
	})
	res, err := rt.Pipeline.PublishOne(ctx, job, job.NewAsset(src))
	if err != nil {
		return err
	}

	l.Info().
		Str("src", s+"/"+f).
		Str("doc", res.Collection+"/"+res.Asset.DocID).
		Str("url", res.Published.PublicURL).
		Msg("gallery photo published")
	return nil
}
