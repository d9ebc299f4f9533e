package pngn

import (
	"encoding/binary"
	"fmt"
)

// ColorType is the PNG color type from the IHDR chunk.
type ColorType uint8

// Color type, as per the PNG spec.
const (
	Grayscale      ColorType = 0
	RGB            ColorType = 2
	Palette        ColorType = 3
	GrayscaleAlpha ColorType = 4
	RGBA           ColorType = 6
)

// String returns the color type name.
func (ct ColorType) String() string {
	switch ct {
	case Grayscale:
		return "Grayscale"
	case RGB:
		return "RGB"
	case Palette:
		return "Palette"
	case GrayscaleAlpha:
		return "GrayscaleAlpha"
	case RGBA:
		return "RGBA"
	}

	return fmt.Sprintf("ColorType(%d)", uint8(ct))
}

// channels returns the number of color channels, not counting alpha.
// Gray-alpha counts as one channel, the alpha sample is added by hasAlpha.
func (ct ColorType) channels() int {
	switch ct {
	case Grayscale, Palette, GrayscaleAlpha:
		return 1
	default:
		return 3
	}
}

// hasAlpha reports whether each pixel carries an alpha sample.
func (ct ColorType) hasAlpha() bool {
	return ct == GrayscaleAlpha || ct == RGBA
}

// validDepth reports whether depth is a legal bit depth for the color type.
func (ct ColorType) validDepth(depth int) bool {
	switch ct {
	case Grayscale:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8 || depth == 16
	case Palette:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8
	case RGB, GrayscaleAlpha, RGBA:
		return depth == 8 || depth == 16
	}

	return false
}

// Interlace method.
const (
	InterlaceNone  = 0
	InterlaceAdam7 = 1
)

// ihdrLength is the fixed payload size of the IHDR chunk.
const ihdrLength = 13

// Header holds the IHDR fields.
type Header struct {
	Width, Height     int       // Image dimensions, both positive.
	BitDepth          int       // Bits per sample: 1, 2, 4, 8 or 16.
	ColorType         ColorType // Sample layout.
	CompressionMethod uint8     // Always 0 for decodable images.
	FilterMethod      uint8     // Always 0 for decodable images.
	InterlaceMethod   uint8     // InterlaceNone or InterlaceAdam7.
}

// Channels returns 1 for Grayscale, Palette and GrayscaleAlpha and 3 otherwise.
func (h *Header) Channels() int {
	return h.ColorType.channels()
}

// HasAlpha reports whether pixels carry an alpha sample.
func (h *Header) HasAlpha() bool {
	return h.ColorType.hasAlpha()
}

// PixelBitLength returns the number of bits per pixel.
func (h *Header) PixelBitLength() int {
	samples := h.Channels()
	if h.HasAlpha() {
		samples++
	}

	return h.BitDepth * samples
}

// Interlaced reports whether the image uses Adam7 interlacing.
func (h *Header) Interlaced() bool {
	return h.InterlaceMethod == InterlaceAdam7
}

// parseIHDR decodes the IHDR payload.
// https://www.w3.org/TR/PNG/#11IHDR
func parseIHDR(payload []byte, maxPixels int) (Header, error) {
	if len(payload) != ihdrLength {
		return Header{}, fmt.Errorf("%w: bad IHDR length %d", ErrCorruptImage, len(payload))
	}

	var h Header

	w := int32(binary.BigEndian.Uint32(payload[0:4]))
	ht := int32(binary.BigEndian.Uint32(payload[4:8]))
	if w <= 0 || ht <= 0 {
		return Header{}, fmt.Errorf("%w: non-positive dimension %dx%d", ErrCorruptImage, w, ht)
	}

	h.Width, h.Height = int(w), int(ht)
	h.BitDepth = int(payload[8])
	h.ColorType = ColorType(payload[9])
	h.CompressionMethod = payload[10]
	h.FilterMethod = payload[11]
	h.InterlaceMethod = payload[12]

	if !h.ColorType.validDepth(h.BitDepth) {
		return Header{}, fmt.Errorf("%w: bit depth %d, color type %d", ErrCorruptImage, h.BitDepth, payload[9])
	}

	if h.CompressionMethod != 0 {
		return Header{}, fmt.Errorf("%w: compression method %d", ErrUnsupportedFeature, h.CompressionMethod)
	}

	if h.FilterMethod != 0 {
		return Header{}, fmt.Errorf("%w: filter method %d", ErrUnsupportedFeature, h.FilterMethod)
	}

	if h.InterlaceMethod != InterlaceNone && h.InterlaceMethod != InterlaceAdam7 {
		return Header{}, fmt.Errorf("%w: invalid interlace method %d", ErrCorruptImage, h.InterlaceMethod)
	}

	if err := checkPixels(h.Width, h.Height, maxPixels); err != nil {
		return Header{}, err
	}

	return h, nil
}

// checkPixels rejects dimensions whose pixel count exceeds the limit.
func checkPixels(width, height, maxPixels int) error {
	if int64(width)*int64(height) > int64(maxPixels) {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", errImageTooLarge, width, height, maxPixels)
	}

	return nil
}
