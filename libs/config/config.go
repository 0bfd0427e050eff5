// Package config loads the process configuration shared by the publishing jobs.
package config

import (
	"errors"

	"github.com/cyber-nic/go-gcp-asset-pub/libs/utils"
)

const (
	// DefaultDatabaseID is the Firestore default database.
	DefaultDatabaseID = "(default)"
	// DefaultStorageBaseURL is the Firebase Storage download endpoint.
	DefaultStorageBaseURL = "https://firebasestorage.googleapis.com/v0/b/"
	DefaultQuality        = 80
	DefaultOutputDir      = "images_a_televerser_webp"
)

// AppConfig is the process configuration.
type AppConfig struct {
	Debug  bool
	DryRun bool

	// gcp
	ProjectID       string
	DatabaseID      string
	BucketName      string
	CredentialsFile string
	PubsubTopicID   string

	StorageBaseURL string
	Quality        int
	// OutputDir receives the normalized files of the CLI jobs.
	OutputDir string
}

// Override adjusts the configuration read from the environment before it is
// validated, eg. with command line flags.
type Override func(*AppConfig)

// Load reads .env files and the environment, applies overrides and validates
// the result. GCP_PROJECT_ID and BUCKET_NAME are required unless DRY_RUN is set.
func Load(overrides ...Override) (AppConfig, error) {
	utils.LoadDotEnv()
	return FromEnv(overrides...)
}

// FromEnv reads the configuration from the environment only.
func FromEnv(overrides ...Override) (AppConfig, error) {
	cfg := AppConfig{
		Debug:           utils.GetBoolEnvVar("DEBUG", false),
		DryRun:          utils.GetBoolEnvVar("DRY_RUN", false),
		ProjectID:       utils.GetStrEnvVar("GCP_PROJECT_ID", ""),
		DatabaseID:      utils.GetStrEnvVar("FIRESTORE_DATABASE_ID", DefaultDatabaseID),
		BucketName:      utils.GetStrEnvVar("BUCKET_NAME", ""),
		CredentialsFile: utils.GetStrEnvVar("GOOGLE_APPLICATION_CREDENTIALS", ""),
		PubsubTopicID:   utils.GetStrEnvVar("PUBSUB_TOPIC_ID", ""),
		StorageBaseURL:  utils.GetStrEnvVar("STORAGE_BASE_URL", DefaultStorageBaseURL),
		Quality:         utils.GetIntEnvVar("WEBP_QUALITY", DefaultQuality),
		OutputDir:       utils.GetStrEnvVar("OUTPUT_DIR", DefaultOutputDir),
	}
	for _, o := range overrides {
		o(&cfg)
	}
	return cfg, cfg.Validate()
}

// Validate checks the mandatory settings.
func (c AppConfig) Validate() error {
	if c.Quality < 0 || c.Quality > 100 {
		return errors.New("WEBP_QUALITY must be between 0 and 100")
	}
	if c.DryRun {
		if c.BucketName == "" {
			return errors.New("BUCKET_NAME required")
		}
		return nil
	}

	var errs []error
	if c.ProjectID == "" {
		errs = append(errs, errors.New("GCP_PROJECT_ID required"))
	}
	if c.BucketName == "" {
		errs = append(errs, errors.New("BUCKET_NAME required"))
	}
	return errors.Join(errs...)
}
