package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat reports an output format with no encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format names an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// DefaultJPEGQuality is used when EncodeOptions leaves quality unset.
const DefaultJPEGQuality = 92

// DecodableExtensions lists file extensions (without the dot) accepted as
// input.
var DecodableExtensions = []string{"png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp"}

// ParseFormat accepts the config spelling of an output format.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, value)
	}
}

// Extension returns the file extension written for the format.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	default:
		return "png"
	}
}

// EncodeOptions tunes encoders that take parameters.
type EncodeOptions struct {
	JPEGQuality int
}

// Encode writes img to w in the requested format.
func Encode(w io.Writer, img image.Image, format Format, opts EncodeOptions) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		quality := opts.JPEGQuality
		if quality <= 0 {
			quality = DefaultJPEGQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Decode reads one image from r.
func Decode(r io.Reader) (image.Image, string, error) {
	img, kind, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, kind, nil
}

// DecodeFile opens and decodes the image at path.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// IsDecodable reports whether path carries one of the given extensions
// (compared case-insensitively, without the dot).
func IsDecodable(path string, extensions []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	return slices.Contains(extensions, ext)
}
