package pipeline

import (
	"fmt"
	"path"

	"github.com/cyber-nic/go-gcp-asset-pub/libs/metadata"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/normalizer"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/types"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/utils"
)

// PayloadFunc builds the metadata patch of an asset from its publish result.
type PayloadFunc func(asset types.Asset, pub *types.PublishedAsset) *metadata.Patch

// Job describes how the assets of one collection are published.
type Job struct {
	Name string
	// Namespace prefixes every blob key, eg. "winnerGallery".
	Namespace string
	// OutputDir receives the normalized files.
	OutputDir string
	Resize    normalizer.Policy
	Quality   int
	Metadata  metadata.Policy
	Payload   PayloadFunc
	// StopOnError aborts a batch on the first failed asset instead of
	// recording the failure and moving on.
	StopOnError bool
}

// Validate checks the job is complete.
func (j Job) Validate() error {
	switch {
	case j.Namespace == "":
		return fmt.Errorf("job %s: namespace required", j.Name)
	case j.OutputDir == "":
		return fmt.Errorf("job %s: output dir required", j.Name)
	case j.Resize == nil:
		return fmt.Errorf("job %s: resize policy required", j.Name)
	case j.Quality < 0 || j.Quality > 100:
		return fmt.Errorf("job %s: quality %d out of range", j.Name, j.Quality)
	}
	return nil
}

// BlobKey returns the deterministic object name of a source file:
// <namespace>/<stem>.webp.
func (j Job) BlobKey(src string) string {
	return path.Join(j.Namespace, normalizer.OutputName(src))
}

// NewAsset derives an Asset from a source path. Label and document id are the
// filename stem, so re-running on the same file targets the same object and document.
func (j Job) NewAsset(src string) types.Asset {
	stem := utils.FileStem(src)
	return types.Asset{
		Label:      stem,
		SourcePath: src,
		BlobKey:    j.BlobKey(src),
		DocID:      stem,
	}
}
