package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog"

	"github.com/cyber-nic/go-gcp-asset-pub/libs/types"
)

// Reporter receives an event for every published asset.
type Reporter interface {
	Report(ctx context.Context, ev types.PublishedEvent) error
}

// LogReporter writes events to the logger.
type LogReporter struct {
	log zerolog.Logger
}

// NewLogReporter creates a LogReporter.
func NewLogReporter(l zerolog.Logger) *LogReporter {
	return &LogReporter{log: l}
}

// Report implements Reporter.
func (r *LogReporter) Report(_ context.Context, ev types.PublishedEvent) error {
	r.log.Info().
		Str("job", ev.Job).
		Str("asset", ev.Label).
		Str("doc", ev.Collection+"/"+ev.DocID).
		Str("url", ev.PublicURL).
		Msg("published")
	return nil
}

// PubSubReporter publishes events as JSON messages on a topic.
type PubSubReporter struct {
	topic *pubsub.Topic
}

// NewPubSubReporter creates a reporter for topic.
func NewPubSubReporter(topic *pubsub.Topic) *PubSubReporter {
	return &PubSubReporter{topic: topic}
}

// Report implements Reporter. It blocks until the message is acknowledged by the server.
func (r *PubSubReporter) Report(ctx context.Context, ev types.PublishedEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	result := r.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"job":        ev.Job,
			"collection": ev.Collection,
			"doc_id":     ev.DocID,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("(%s) failed to publish event: %w", r.topic.ID(), err)
	}
	return nil
}

// MultiReporter fans events out to several reporters.
type MultiReporter []Reporter

// Report implements Reporter. Every reporter is called; errors are joined.
func (m MultiReporter) Report(ctx context.Context, ev types.PublishedEvent) error {
	var errs []error
	for _, r := range m {
		if err := r.Report(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
