// Package gcp builds the Google Cloud clients once per run and wires them
// into a publishing pipeline.
package gcp

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/cyber-nic/go-gcp-asset-pub/libs/config"
)

// Clients is the explicit handle on the cloud clients of a run.
type Clients struct {
	Storage   *storage.Client
	Firestore *firestore.Client
	// PubSub is nil when no topic is configured.
	PubSub *pubsub.Client
}

// NewClients creates the clients described by cfg. A credentials file takes
// precedence over application default credentials.
func NewClients(ctx context.Context, cfg config.AppConfig) (*Clients, error) {
	opts := ClientOptions(cfg)
	c := &Clients{}

	// create storage client
	s, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	c.Storage = s

	// create firestore client
	db := cfg.DatabaseID
	if db == "" {
		db = config.DefaultDatabaseID
	}
	fs, err := firestore.NewClientWithDatabase(ctx, cfg.ProjectID, db, opts...)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	c.Firestore = fs

	// create pubsub client
	if cfg.PubsubTopicID != "" {
		ps, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to create pubsub client: %w", err)
		}
		c.PubSub = ps
	}

	return c, nil
}

// ClientOptions returns the client options derived from cfg.
func ClientOptions(cfg config.AppConfig) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	return opts
}

// Close closes every client that was created.
func (c *Clients) Close() error {
	var errs []error
	if c.PubSub != nil {
		errs = append(errs, c.PubSub.Close())
	}
	if c.Firestore != nil {
		errs = append(errs, c.Firestore.Close())
	}
	if c.Storage != nil {
		errs = append(errs, c.Storage.Close())
	}
	return errors.Join(errs...)
}
