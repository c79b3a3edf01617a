// Package imagestore converts between image files and the 8-bit sample
// buffers the steganography core works on.
//
// Supported formats:
//
//   - PNG, BMP and TIFF are read and written losslessly.
//   - JPEG and GIF can be read as covers but are never written: a lossy
//     re-encode would destroy the low bits that carry the payload.
//
// Samples are laid out row-major and channel-interleaved.  Grayscale images
// map to one channel, opaque colour images to three (RGB) and images with
// any transparency to four (non-premultiplied RGBA).
package imagestore

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrUnknownFormat is returned when a name or stream is not a supported
	// image format.
	ErrUnknownFormat = errors.New("imagestore: unknown image format")

	// ErrLossyFormat is returned when asked to write a format that would not
	// preserve sample values.
	ErrLossyFormat = errors.New("imagestore: lossy formats cannot carry hidden data")

	// ErrUnsupportedDepth is returned for images with more than 8 bits per
	// sample.
	ErrUnsupportedDepth = errors.New("imagestore: only 8-bit images are supported")

	// ErrUnsupportedChannels is returned when a buffer has a channel count
	// that does not map to an image type.
	ErrUnsupportedChannels = errors.New("imagestore: unsupported channel count")
)

// Format names an image file format.
type Format string

const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
)

// Lossless reports whether f can be written without altering samples.
func (f Format) Lossless() bool {
	return f == PNG || f == BMP || f == TIFF
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// FormatFromName picks the format from a file name or object key extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".gif":
		return GIF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}
