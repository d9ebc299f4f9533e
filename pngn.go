// Package pngn implements an in-memory PNG and APNG decoder.
//
// The decoder parses the whole chunk stream eagerly into a read-only Decoder and
// reconstructs pixel rows on request. The result is a Raster that keeps the
// native sample layout of the file; expansion to RGBA is left to the caller
// (see Raster.NRGBA and Raster.Image).
package pngn

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// Standard error types for PNG decoding.
var (
	// ErrNoPNG is returned by Decode and DecodeConfig when the input does not start with the PNG signature.
	ErrNoPNG = errors.New("not a PNG file")
	// ErrTruncatedInput reports a read past the end of the input, or a stream without an IEND chunk.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrCorruptImage reports structurally invalid content.
	ErrCorruptImage = errors.New("corrupt image")
	// ErrUnsupportedFeature reports a valid but unimplemented feature.
	ErrUnsupportedFeature = errors.New("unsupported feature")

	// errImageTooLarge is not eligible for the standard library fallback.
	errImageTooLarge = fmt.Errorf("%w: image too large", ErrUnsupportedFeature)
)

// pngHeader is the 8-byte signature every PNG stream starts with.
const pngHeader = "\x89PNG\r\n\x1a\n"

// defaultMaxPixels bounds Width*Height when Options.MaxPixels is zero.
const defaultMaxPixels = 1 << 28

// Options specifies decoding parameters.
type Options struct {
	// Strict turns reconstruction warnings (short stream, checksum mismatch,
	// trailing data) into errors wrapping ErrCorruptImage.
	// If false, warnings are only recorded on Raster.Warnings.
	Strict bool
	// MaxPixels limits Width*Height of the image and of every animation frame.
	// Larger images fail with ErrUnsupportedFeature. Zero means 1<<28.
	MaxPixels int
}

// maxPixels returns the effective pixel limit.
func (o *Options) maxPixels() int {
	if o == nil || o.MaxPixels <= 0 {
		return defaultMaxPixels
	}

	return o.MaxPixels
}

// firstOptions returns the first non-nil options, or a zero value.
func firstOptions(opts []*Options) Options {
	if len(opts) > 0 && opts[0] != nil {
		return *opts[0]
	}

	return Options{}
}

// Interface to check if a reader knows its remaining length.
type readerWithLen interface {
	Len() int
}

// readAllData reads data from r, pre-allocating if the size is known.
func readAllData(r io.Reader) ([]byte, error) {
	if rl, ok := r.(readerWithLen); ok {
		size := rl.Len()
		if size > 0 {
			data := make([]byte, size)
			_, err := io.ReadFull(r, data)
			if err != nil {
				return nil, fmt.Errorf("failed to read image data: %w", err)
			}

			return data, nil
		}
	}

	return io.ReadAll(r)
}

// checkSignature reports whether data starts with the PNG signature.
func checkSignature(data []byte) error {
	if len(data) < len(pngHeader) || string(data[:len(pngHeader)]) != pngHeader {
		return ErrNoPNG
	}

	return nil
}

// Decode reads a PNG image from r and returns it as an [image.Image].
// The result is an *image.NRGBA, or an *image.NRGBA64 for 16-bit images.
// For an APNG whose default image is the first frame, the first frame is returned.
// If the stream uses an unsupported feature, it falls back to the standard library's decoder.
func Decode(r io.Reader, opts ...*Options) (image.Image, error) {
	data, err := readAllData(r)
	if err != nil {
		return nil, err
	}

	if err := checkSignature(data); err != nil {
		return nil, err
	}

	img, err := decodeImage(data, opts...)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFeature) && !errors.Is(err, errImageTooLarge) {
			return png.Decode(bytes.NewReader(data))
		}

		return nil, err
	}

	return img, nil
}

// decodeImage runs the full pipeline and expands the raster for the image package.
func decodeImage(data []byte, opts ...*Options) (image.Image, error) {
	d, err := NewDecoder(data, opts...)
	if err != nil {
		return nil, err
	}

	raster, err := d.DecodePixels()
	if err != nil {
		return nil, err
	}

	// The default image of an APNG may live in the first frame's data.
	if raster.Empty() && d.Animation != nil && len(d.Animation.Frames) > 0 {
		raster, err = d.DecodeFrame(0)
		if err != nil {
			return nil, err
		}
	}

	if raster.Empty() {
		return nil, fmt.Errorf("%w: no image data", ErrCorruptImage)
	}

	return raster.Image(), nil
}

// DecodeConfig returns the color model and dimensions of a PNG image without
// reconstructing any pixels. The whole chunk stream is still parsed.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAllData(r)
	if err != nil {
		return image.Config{}, err
	}

	if err := checkSignature(data); err != nil {
		return image.Config{}, err
	}

	d, err := NewDecoder(data)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFeature) && !errors.Is(err, errImageTooLarge) {
			return png.DecodeConfig(bytes.NewReader(data))
		}

		return image.Config{}, err
	}

	var cm color.Model = color.NRGBAModel
	if d.Header.BitDepth == 16 {
		cm = color.NRGBA64Model
	}

	return image.Config{
		ColorModel: cm,
		Width:      d.Header.Width,
		Height:     d.Header.Height,
	}, nil
}

// init registers the PNG format with the standard library's image package.
// This allows image.Decode to automatically recognize and decode PNG files using this package.
func init() {
	decodeWrapper := func(r io.Reader) (image.Image, error) {
		return Decode(r)
	}

	image.RegisterFormat("png", pngHeader, decodeWrapper, DecodeConfig)
}
