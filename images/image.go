// Package images - Image decoding and format validation.
package images

import (
	"fmt"
	"image"
	"io"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ImageFormat is the container format reported by the decoder.
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
	// FormatGIF is the GIF image format.
	FormatGIF ImageFormat = "gif"
	// FormatBMP is the BMP image format.
	FormatBMP ImageFormat = "bmp"
	// FormatTIFF is the TIFF image format.
	FormatTIFF ImageFormat = "tiff"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
)

// ErrNotJPEG is matched by every FormatError.
var ErrNotJPEG = errors.New("image not jpeg")

// FormatError reports an image whose decoded format is not JPEG.
type FormatError struct {
	Path string
	Got  ImageFormat
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("image %s: want %s, got %s", e.Path, FormatJPEG, e.Got)
}

// Is reports whether target is ErrNotJPEG.
func (e *FormatError) Is(target error) bool {
	return target == ErrNotJPEG
}

// Decode decodes an image and reports the format that decoded it.
//
// Arguments:
//   - r: The encoded image.
//
// Returns:
//   - image.Image: The decoded image.
//   - ImageFormat: The detected format.
//   - error: An error if no registered decoder accepts the data.
func Decode(r io.Reader) (image.Image, ImageFormat, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, "", errors.Wrap(err, "decode image")
	}
	return img, ImageFormat(name), nil
}

// DecodeJPEG opens and decodes the image at path, rejecting any format
// other than JPEG regardless of the file name.
//
// Arguments:
//   - fs: The filesystem to read from.
//   - path: The image path.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: An error if the file cannot be read or decoded, or a
//     *FormatError if it is not a JPEG.
//
// @example
// img, err := DecodeJPEG(afero.NewOsFs(), "JPEGImages/2008_000008.jpg")
//
//	if errors.Is(err, ErrNotJPEG) {
//	    ...
//	}
func DecodeJPEG(fs afero.Fs, path string) (image.Image, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer f.Close()

	img, format, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "image %s", path)
	}
	if format != FormatJPEG {
		return nil, &FormatError{Path: path, Got: format}
	}
	return img, nil
}

// DecodeConfig reads the dimensions and format of the image at path without
// decoding its pixels.
func DecodeConfig(fs afero.Fs, path string) (image.Config, ImageFormat, error) {
	f, err := fs.Open(path)
	if err != nil {
		return image.Config{}, "", errors.Wrap(err, "open image")
	}
	defer f.Close()

	cfg, name, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", errors.Wrapf(err, "decode image config %s", path)
	}
	return cfg, ImageFormat(name), nil
}
