package pngn

import (
	"bytes"
	"fmt"
)

// Decoder holds the parsed chunk stream of one PNG or APNG image.
//
// NewDecoder parses every chunk up front; pixels are reconstructed on demand by
// DecodePixels and DecodeFrame. A Decoder keeps no reference to the input
// buffer and is not modified after construction, so its methods may be called
// from multiple goroutines. Callers must not modify the exported fields.
type Decoder struct {
	Header       Header            // IHDR fields.
	Palette      []byte            // PLTE payload, RGB triples.
	Transparency Transparency      // tRNS chunk, if any.
	Animation    *Animation        // acTL/fcTL data, nil for still images.
	Text         map[string]string // tEXt key/value pairs.
	Exif         *Exif             // eXIf chunk, nil if absent or malformed.

	idat []byte  // Concatenated IDAT payloads not owned by an animation frame.
	opts Options // Decoding options.
}

// accumulator collects state while the chunk stream is walked.
type accumulator struct {
	d         *Decoder
	seenIHDR  bool
	frame     *Frame // Frame whose data chunks are being collected.
	maxPixels int
}

// NewDecoder parses the chunk stream in data, which must start with the
// 8-byte PNG signature. The signature itself is not checked.
// It accepts an optional Options struct to control decoding parameters.
func NewDecoder(data []byte, opts ...*Options) (*Decoder, error) {
	o := firstOptions(opts)

	c, err := newCursor(data, len(pngHeader))
	if err != nil {
		return nil, err
	}

	acc := &accumulator{
		d:         &Decoder{opts: o},
		maxPixels: o.maxPixels(),
	}

	for {
		ch, err := readChunk(c)
		if err != nil {
			return nil, err
		}

		if ch.kind == chunkIEND {
			if !acc.seenIHDR {
				return nil, fmt.Errorf("%w: IEND before IHDR", ErrCorruptImage)
			}

			return acc.finish(), nil
		}

		if err := acc.apply(ch); err != nil {
			return nil, err
		}

		// Skip CRC.
		if err := c.skip(4); err != nil {
			return nil, fmt.Errorf("%q chunk CRC: %w", ch.tag, err)
		}
	}
}

// apply updates the accumulated state with one chunk.
func (a *accumulator) apply(ch chunk) error {
	d := a.d

	if !a.seenIHDR && ch.kind != chunkIHDR {
		return fmt.Errorf("%w: %q chunk before IHDR", ErrCorruptImage, ch.tag)
	}

	switch ch.kind {
	case chunkIHDR:
		if a.seenIHDR {
			return fmt.Errorf("%w: duplicate IHDR", ErrCorruptImage)
		}

		h, err := parseIHDR(ch.payload, a.maxPixels)
		if err != nil {
			return err
		}

		d.Header = h
		a.seenIHDR = true
	case chunkACTL:
		anim, err := parseACTL(ch.payload)
		if err != nil {
			return err
		}

		d.Animation = anim
	case chunkPLTE:
		d.Palette = parsePLTE(ch.payload)
	case chunkFCTL:
		if d.Animation == nil {
			return fmt.Errorf("%w: fcTL without acTL", ErrCorruptImage)
		}

		frame, err := parseFCTL(ch.payload, a.maxPixels)
		if err != nil {
			return err
		}

		a.closeFrame()
		a.frame = frame
	case chunkIDAT:
		a.appendData(ch.payload)
	case chunkFDAT:
		if len(ch.payload) < 4 {
			return fmt.Errorf("%w: bad fdAT length %d", ErrCorruptImage, len(ch.payload))
		}

		// Skip sequence number.
		a.appendData(ch.payload[4:])
	case chunkTRNS:
		t, err := parseTRNS(ch.payload, d.Header.ColorType)
		if err != nil {
			return err
		}

		d.Transparency = t
	case chunkTEXT:
		if d.Text == nil {
			d.Text = make(map[string]string)
		}

		key, value := parseTEXT(ch.payload)
		d.Text[key] = value
	case chunkEXIF:
		// Malformed metadata does not invalidate the image.
		if x, err := parseEXIF(ch.payload); err == nil {
			d.Exif = x
		}
	default:
		// Unknown chunks are skipped.
	}

	return nil
}

// appendData adds compressed image data to the open frame, or to the default image.
func (a *accumulator) appendData(b []byte) {
	if a.frame != nil {
		a.frame.data = append(a.frame.data, b...)

		return
	}

	a.d.idat = append(a.d.idat, b...)
}

// closeFrame appends the open frame, if any, to the animation.
func (a *accumulator) closeFrame() {
	if a.frame == nil {
		return
	}

	a.d.Animation.Frames = append(a.d.Animation.Frames, *a.frame)
	a.frame = nil
}

// finish closes the last frame and returns the completed decoder.
func (a *accumulator) finish() *Decoder {
	a.closeFrame()

	return a.d
}

// DecodePixels inflates and reconstructs the default image.
// If no IDAT data was collected outside animation frames, the result is an
// empty raster and no error.
func (d *Decoder) DecodePixels() (*Raster, error) {
	return d.decodeRaster(d.idat, d.Header.Width, d.Header.Height)
}

// DecodeFrame inflates and reconstructs animation frame i.
// The raster covers only the frame region; see Frame for its placement.
func (d *Decoder) DecodeFrame(i int) (*Raster, error) {
	if d.Animation == nil || i < 0 || i >= len(d.Animation.Frames) {
		return nil, fmt.Errorf("frame %d out of range", i)
	}

	f := &d.Animation.Frames[i]

	r, err := d.decodeRaster(f.data, f.Width, f.Height)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", i, err)
	}

	return r, nil
}

// DecodeFrames reconstructs every animation frame in order.
// A still image yields no rasters.
func (d *Decoder) DecodeFrames() ([]*Raster, error) {
	if d.Animation == nil {
		return nil, nil
	}

	rasters := make([]*Raster, 0, len(d.Animation.Frames))
	for i := range d.Animation.Frames {
		r, err := d.DecodeFrame(i)
		if err != nil {
			return nil, err
		}

		rasters = append(rasters, r)
	}

	return rasters, nil
}

// decodeRaster runs inflate, reconstruction and assembly for one image of the given size.
func (d *Decoder) decodeRaster(data []byte, width, height int) (*Raster, error) {
	r := d.newRaster()
	if len(data) == 0 {
		return r, nil
	}

	bits := d.Header.PixelBitLength()
	interlaced := d.Header.Interlaced()

	raw, warnings, err := inflate(data, filteredSize(width, height, bits, interlaced))
	if err != nil {
		return nil, err
	}

	pix, rowWarnings, err := reconstruct(raw, width, height, bits, interlaced)
	if err != nil {
		return nil, err
	}

	warnings = append(warnings, rowWarnings...)
	if d.opts.Strict {
		if err := escalate(warnings); err != nil {
			return nil, err
		}
	}

	r.Width, r.Height = width, height
	r.Stride = rowBytes(width, bits)
	r.Pix = pix
	r.Warnings = warnings

	if err := r.checkPalette(); err != nil {
		return nil, err
	}

	return r, nil
}

// newRaster returns an empty raster carrying the image metadata.
func (d *Decoder) newRaster() *Raster {
	return &Raster{
		BitDepth:       d.Header.BitDepth,
		ColorType:      d.Header.ColorType,
		Channels:       d.Header.Channels(),
		HasAlpha:       d.Header.HasAlpha(),
		PixelBitLength: d.Header.PixelBitLength(),
		Palette:        bytes.Clone(d.Palette),
		Transparency:   d.Transparency.clone(),
	}
}
