package pngn

import "fmt"

// rowBytes returns the size in bytes of a row of width pixels, without the filter byte.
func rowBytes(width, bitsPerPixel int) int {
	return (width*bitsPerPixel + 7) / 8
}

// filteredSize returns the number of decompressed bytes a complete image needs,
// including one filter byte per row of every pass.
func filteredSize(width, height, bitsPerPixel int, interlaced bool) int {
	if !interlaced {
		return height * (1 + rowBytes(width, bitsPerPixel))
	}

	n := 0
	for _, p := range interlacing {
		w, h := p.passSize(width, height)
		if w == 0 || h == 0 {
			continue
		}
		n += h * (1 + rowBytes(w, bitsPerPixel))
	}

	return n
}

// decodePass reconstructs height rows of width pixels from the stream into dst.
// If the stream runs out, the bytes of the last row that did arrive are still
// reconstructed, everything after them is left untouched and a
// WarnShortStream warning is returned.
func decodePass(c *cursor, dst []byte, width, height, bitsPerPixel, pass int) (*Warning, error) {
	stride := rowBytes(width, bitsPerPixel)
	bpp := (bitsPerPixel + 7) / 8
	zero := make([]byte, stride)

	for y := 0; y < height; y++ {
		left := c.remaining()
		if left == 0 {
			return shortStream(pass, y, left, stride), nil
		}

		ft, _ := c.uint8()
		n := min(left-1, stride)
		raw, _ := c.next(n)

		cdat := dst[y*stride : y*stride+n]
		copy(cdat, raw)

		pdat := zero[:n]
		if y > 0 {
			pdat = dst[(y-1)*stride : (y-1)*stride+n]
		}

		// Filters only look left and up, so a row prefix unfilters on its own.
		if err := unfilter(ft, cdat, pdat, bpp); err != nil {
			return nil, fmt.Errorf("%w (pass %d, row %d)", err, pass, y)
		}

		if n < stride {
			return shortStream(pass, y, left, stride), nil
		}
	}

	return nil, nil
}

// shortStream returns the warning for a pass that ran out of data at row y.
func shortStream(pass, y, left, stride int) *Warning {
	return &Warning{
		Kind: WarnShortStream,
		Pass: pass,
		Row:  y,
		Msg:  fmt.Sprintf("%d bytes left, row needs %d", left, 1+stride),
	}
}

// reconstruct turns the decompressed stream into a packed raster of
// height rows of rowBytes(width) bytes each.
func reconstruct(data []byte, width, height, bitsPerPixel int, interlaced bool) ([]byte, []Warning, error) {
	stride := rowBytes(width, bitsPerPixel)
	pix := make([]byte, height*stride)
	c := &cursor{data: data}

	if !interlaced {
		warn, err := decodePass(c, pix, width, height, bitsPerPixel, 0)
		if err != nil {
			return nil, nil, err
		}

		if warn != nil {
			return pix, []Warning{*warn}, nil
		}

		return pix, nil, nil
	}

	for pass, p := range interlacing {
		w, h := p.passSize(width, height)
		if w == 0 || h == 0 {
			// Nothing of the image falls on this pass.
			continue
		}

		buf := make([]byte, h*rowBytes(w, bitsPerPixel))
		warn, err := decodePass(c, buf, w, h, bitsPerPixel, pass)
		if err != nil {
			return nil, nil, err
		}

		mergePass(pix, stride, buf, p, w, h, bitsPerPixel)

		if warn != nil {
			// Later passes have no data left.
			return pix, []Warning{*warn}, nil
		}
	}

	return pix, nil, nil
}
