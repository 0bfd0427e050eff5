package gcp

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cyber-nic/go-gcp-asset-pub/libs/config"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/metadata"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/normalizer"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/pipeline"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/publisher"
)

// Runtime is a pipeline together with the resources it holds.
type Runtime struct {
	Pipeline *pipeline.Pipeline
	// Clients is nil in dry-run mode.
	Clients *Clients
	close   func() error
}

// Close releases the clients and flushes the event topic.
func (r *Runtime) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// NewRuntime builds the pipeline for cfg. Dry runs use in-memory stores and
// never reach the network.
func NewRuntime(ctx context.Context, cfg config.AppConfig, l zerolog.Logger) (*Runtime, error) {
	pubOpts := []publisher.Option{publisher.WithBaseURL(cfg.StorageBaseURL)}

	if cfg.DryRun {
		l.Warn().Str("bucket", cfg.BucketName).Msg("dry run: using in-memory stores")
		return &Runtime{Pipeline: newPipeline(
			publisher.NewMemoryStore(cfg.BucketName),
			metadata.NewMemoryStore(),
			nil, l, pubOpts,
		)}, nil
	}

	clients, err := NewClients(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var reporter pipeline.Reporter
	closeFn := clients.Close
	if clients.PubSub != nil {
		topic := clients.PubSub.Topic(cfg.PubsubTopicID)
		reporter = pipeline.MultiReporter{
			pipeline.NewLogReporter(l),
			pipeline.NewPubSubReporter(topic),
		}
		closeFn = func() error {
			topic.Stop()
			return clients.Close()
		}
	}

	p := newPipeline(
		publisher.NewGCSStore(clients.Storage, cfg.BucketName),
		metadata.NewFirestoreStore(clients.Firestore),
		reporter, l, pubOpts,
	)
	return &Runtime{Pipeline: p, Clients: clients, close: closeFn}, nil
}

func newPipeline(objects publisher.ObjectStore, docs metadata.Store, r pipeline.Reporter, l zerolog.Logger, opts []publisher.Option) *pipeline.Pipeline {
	return pipeline.New(pipeline.Options{
		Normalizer: normalizer.New(l),
		Publisher:  publisher.New(objects, l, opts...),
		Upserter:   metadata.New(docs, l),
		Reporter:   r,
		Logger:     l,
	})
}
