// Package normalizer re-encodes source images into bounded, opaque WebP files
// ready to be published.
package normalizer

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	// Import image format packages
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/heic"
	"github.com/gen2brain/webp"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"

	"github.com/cyber-nic/go-gcp-asset-pub/libs/types"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/utils"
)

const (
	// ContentType is the content type of every normalized image.
	ContentType = "image/webp"
	// Extension is the file extension of every normalized image.
	Extension = ".webp"

	// highest effort WebP compression
	encodeMethod = 6
)

var (
	// ErrSourceNotFound is returned when the source is missing or is not a decodable image.
	ErrSourceNotFound = errors.New("source not found")
	// ErrUnsupportedFormat is returned when the source extension or content is not a known image format.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// AllowedExtensions lists the source extensions accepted by the normalizer, lower case.
var AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".bmp", ".heic", ".heif"}

// heifBrands are the ISO BMFF major brands of HEIC/HEIF stills besides "heic",
// which the decoder registers itself.
var heifBrands = []string{"heix", "hevc", "hevx", "heim", "heis", "mif1", "msf1"}

func init() {
	for _, b := range heifBrands {
		image.RegisterFormat("heic", "????ftyp"+b, heic.Decode, heic.DecodeConfig)
	}
}

// IsSupported reports whether name has an allowed image extension, ignoring case.
func IsSupported(name string) bool {
	return utils.HasExt(name, AllowedExtensions)
}

// OutputName returns the normalized filename for a source path.
func OutputName(src string) string {
	return utils.FileStem(src) + Extension
}

// Normalizer decodes, resizes and re-encodes images.
type Normalizer struct {
	log zerolog.Logger
}

// New creates a Normalizer.
func New(l zerolog.Logger) *Normalizer {
	return &Normalizer{log: l}
}

// Normalize writes src to dst as a lossy WebP of the given quality, resized
// according to policy. The source file is left untouched.
func (n *Normalizer) Normalize(src, dst string, policy Policy, quality int) (*types.NormalizedImage, error) {
	img, err := decode(src)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := policy.Bounds(b.Dx(), b.Dy())

	out := opaque(img)
	if w != b.Dx() || h != b.Dy() {
		out = imaging.Resize(out, w, h, imaging.Lanczos)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("(%s) failed to create output dir: %w", dst, err)
	}
	if err := encode(dst, out, quality); err != nil {
		return nil, err
	}

	fi, err := os.Stat(dst)
	if err != nil {
		return nil, fmt.Errorf("(%s) failed to stat output: %w", dst, err)
	}

	n.log.Debug().
		Str("src", src).
		Str("dst", dst).
		Int("src_width", b.Dx()).
		Int("src_height", b.Dy()).
		Int("width", w).
		Int("height", h).
		Int64("size", fi.Size()).
		Msg("image normalized")

	return &types.NormalizedImage{
		Path:        dst,
		Width:       w,
		Height:      h,
		ContentType: ContentType,
		Size:        fi.Size(),
	}, nil
}

func decode(src string) (image.Image, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceNotFound, src, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, src)
	}
	if !IsSupported(src) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(src))
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceNotFound, src, err)
	}
	defer f.Close()

	img, _, err := image.Decode(bufio.NewReader(f))
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, src, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: failed to decode: %v", ErrSourceNotFound, src, err)
	}
	return img, nil
}

// opaque copies img into an NRGBA image with every pixel fully opaque. Colour
// values are kept, the alpha channel is dropped.
func opaque(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

func encode(dst string, img image.Image, quality int) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("(%s) failed to create output: %w", dst, err)
	}

	w := bufio.NewWriter(f)
	err = webp.Encode(w, img, webp.Options{Quality: quality, Method: encodeMethod})
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return fmt.Errorf("(%s) failed to encode webp: %w", dst, err)
	}
	return nil
}
