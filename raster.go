package pngn

import (
	"fmt"
	"image"
	"image/color"
)

// Raster is a reconstructed image in the native sample layout of the file.
//
// Pix holds Height rows of Stride bytes. Samples of 16-bit images are
// big-endian; sub-byte samples are packed most significant bits first.
// Every slice is owned by the raster.
type Raster struct {
	Width, Height  int
	BitDepth       int
	ColorType      ColorType
	Channels       int  // Color channels, not counting alpha.
	HasAlpha       bool // Pixels carry an alpha sample.
	PixelBitLength int  // Bits per pixel.
	Stride         int  // Bytes per row, ceil(Width*PixelBitLength/8).
	Pix            []byte
	Palette        []byte // RGB triples.
	Transparency   Transparency
	Warnings       []Warning // Tolerated anomalies, see Options.Strict.
}

// Empty reports whether the raster holds no pixel data.
func (r *Raster) Empty() bool {
	return len(r.Pix) == 0
}

// BytesPerPixel returns the pixel size rounded up to whole bytes, as used by the filters.
func (r *Raster) BytesPerPixel() int {
	return (r.PixelBitLength + 7) / 8
}

// Bounds returns the raster rectangle, anchored at the origin.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

// samples returns the number of samples per pixel.
func (r *Raster) samples() int {
	if r.HasAlpha {
		return r.Channels + 1
	}

	return r.Channels
}

// sample returns sample i of pixel (x, y) at its native depth.
func (r *Raster) sample(x, y, i int) uint16 {
	row := r.Pix[y*r.Stride : (y+1)*r.Stride]

	switch {
	case r.BitDepth == 16:
		o := (x*r.samples() + i) * 2
		return uint16(row[o])<<8 | uint16(row[o+1])
	case r.BitDepth == 8:
		return uint16(row[x*r.samples()+i])
	default:
		return uint16(getPacked(row, x, r.BitDepth))
	}
}

// scale16 expands a sample of the given depth to the full 16-bit range.
func scale16(v uint16, depth int) uint16 {
	switch depth {
	case 16:
		return v
	case 8:
		return v * 0x101
	}

	return uint16(uint32(v) * 0xffff / (1<<depth - 1))
}

// At returns the color of pixel (x, y) with transparency applied.
// Pixels outside the raster, or past the end of a short stream, are transparent black.
func (r *Raster) At(x, y int) color.NRGBA64 {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height || (y+1)*r.Stride > len(r.Pix) {
		return color.NRGBA64{}
	}

	switch r.ColorType {
	case Palette:
		idx := int(r.sample(x, y, 0))
		if 3*idx+2 >= len(r.Palette) {
			return color.NRGBA64{}
		}

		a := uint16(0xff)
		if r.Transparency.Kind == TransparencyIndexed && idx < len(r.Transparency.Indexed) {
			a = uint16(r.Transparency.Indexed[idx])
		}

		p := r.Palette[3*idx : 3*idx+3]

		return color.NRGBA64{R: uint16(p[0]) * 0x101, G: uint16(p[1]) * 0x101, B: uint16(p[2]) * 0x101, A: a * 0x101}
	case Grayscale:
		v := r.sample(x, y, 0)
		a := uint16(0xffff)
		if key, ok := r.Transparency.grayKey(); ok && v == key {
			a = 0
		}

		g := scale16(v, r.BitDepth)

		return color.NRGBA64{R: g, G: g, B: g, A: a}
	case GrayscaleAlpha:
		g := scale16(r.sample(x, y, 0), r.BitDepth)

		return color.NRGBA64{R: g, G: g, B: g, A: scale16(r.sample(x, y, 1), r.BitDepth)}
	case RGB:
		rv, gv, bv := r.sample(x, y, 0), r.sample(x, y, 1), r.sample(x, y, 2)
		a := uint16(0xffff)
		if kr, kg, kb, ok := r.Transparency.rgbKey(); ok && rv == kr && gv == kg && bv == kb {
			a = 0
		}

		return color.NRGBA64{R: scale16(rv, r.BitDepth), G: scale16(gv, r.BitDepth), B: scale16(bv, r.BitDepth), A: a}
	case RGBA:
		return color.NRGBA64{
			R: scale16(r.sample(x, y, 0), r.BitDepth),
			G: scale16(r.sample(x, y, 1), r.BitDepth),
			B: scale16(r.sample(x, y, 2), r.BitDepth),
			A: scale16(r.sample(x, y, 3), r.BitDepth),
		}
	}

	return color.NRGBA64{}
}

// NRGBA expands the raster to 8-bit non-premultiplied RGBA.
// 16-bit samples keep their high byte.
func (r *Raster) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(r.Bounds())
	if r.Empty() {
		return img
	}

	if r.BitDepth == 8 || r.ColorType == Palette {
		switch r.ColorType {
		case RGBA:
			rgbaToNRGBA(r.Pix, r.Stride, img.Pix, img.Stride, r.Width, r.Height)
			return img
		case RGB:
			rgbToNRGBA(r.Pix, r.Stride, img.Pix, img.Stride, r.Width, r.Height, r.rgbKey8())
			return img
		case Grayscale:
			grayToNRGBA(r.Pix, r.Stride, img.Pix, img.Stride, r.Width, r.Height, r.grayKey8())
			return img
		case GrayscaleAlpha:
			grayAlphaToNRGBA(r.Pix, r.Stride, img.Pix, img.Stride, r.Width, r.Height)
			return img
		case Palette:
			paletteToNRGBA(r.Pix, r.Stride, img.Pix, img.Stride, r.Width, r.Height, r.BitDepth, r.paletteLUT())
			return img
		}
	}

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			c := r.At(x, y)
			i := img.PixOffset(x, y)
			img.Pix[i+0] = uint8(c.R >> 8)
			img.Pix[i+1] = uint8(c.G >> 8)
			img.Pix[i+2] = uint8(c.B >> 8)
			img.Pix[i+3] = uint8(c.A >> 8)
		}
	}

	return img
}

// NRGBA64 expands the raster to 16-bit non-premultiplied RGBA.
func (r *Raster) NRGBA64() *image.NRGBA64 {
	img := image.NewNRGBA64(r.Bounds())
	if r.Empty() {
		return img
	}

	// Same big-endian layout.
	if r.ColorType == RGBA && r.BitDepth == 16 {
		for y := 0; y < r.Height && (y+1)*r.Stride <= len(r.Pix); y++ {
			copy(img.Pix[y*img.Stride:], r.Pix[y*r.Stride:(y+1)*r.Stride])
		}

		return img
	}

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			img.SetNRGBA64(x, y, r.At(x, y))
		}
	}

	return img
}

// Image returns the raster as an *image.NRGBA64 for 16-bit images and
// as an *image.NRGBA otherwise.
func (r *Raster) Image() image.Image {
	if r.BitDepth == 16 {
		return r.NRGBA64()
	}

	return r.NRGBA()
}

// grayKey8 returns the gray key for 8-bit expansion, or -1 without one.
func (r *Raster) grayKey8() int {
	if key, ok := r.Transparency.grayKey(); ok && key <= 0xff {
		return int(key)
	}

	return -1
}

// rgbKey8 returns the RGB key for 8-bit expansion, or nil without one.
func (r *Raster) rgbKey8() *[3]uint8 {
	kr, kg, kb, ok := r.Transparency.rgbKey()
	if !ok || kr > 0xff || kg > 0xff || kb > 0xff {
		return nil
	}

	return &[3]uint8{uint8(kr), uint8(kg), uint8(kb)}
}

// paletteLUT builds the NRGBA color of every possible index.
// Indexes past the palette map to transparent black.
func (r *Raster) paletteLUT() *[256][4]uint8 {
	var lut [256][4]uint8
	for i := 0; i < 256 && 3*i+2 < len(r.Palette); i++ {
		a := uint8(0xff)
		if r.Transparency.Kind == TransparencyIndexed && i < len(r.Transparency.Indexed) {
			a = r.Transparency.Indexed[i]
		}
		lut[i] = [4]uint8{r.Palette[3*i], r.Palette[3*i+1], r.Palette[3*i+2], a}
	}

	return &lut
}

// checkPalette verifies that an indexed raster has a palette covering every index it uses.
func (r *Raster) checkPalette() error {
	if r.ColorType != Palette {
		return nil
	}

	entries := len(r.Palette) / 3
	if entries == 0 {
		return fmt.Errorf("%w: missing PLTE chunk", ErrCorruptImage)
	}

	if entries >= 1<<r.BitDepth {
		return nil
	}

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if idx := int(r.sample(x, y, 0)); idx >= entries {
				return fmt.Errorf("%w: palette index %d out of range at (%d, %d)", ErrCorruptImage, idx, x, y)
			}
		}
	}

	return nil
}
