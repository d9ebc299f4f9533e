package pngn

import "fmt"

// Filter type, as per the PNG spec.
const (
	ftNone    = 0
	ftSub     = 1
	ftUp      = 2
	ftAverage = 3
	ftPaeth   = 4
	nFilter   = 5
)

// unfilter reverses the filter of one scanline in place.
// cdat holds the filtered bytes of the current row and pdat the reconstructed
// previous row, which is all zero for the first row of a pass.
// bpp is the distance in bytes to the corresponding byte of the left pixel.
func unfilter(ft byte, cdat, pdat []byte, bpp int) error {
	switch ft {
	case ftNone:
		// No-op.
	case ftSub:
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += cdat[i-bpp]
		}
	case ftUp:
		for i, p := range pdat {
			cdat[i] += p
		}
	case ftAverage:
		// The first pixel has no left neighbour.
		for i := 0; i < bpp && i < len(cdat); i++ {
			cdat[i] += pdat[i] / 2
		}
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += uint8((int(cdat[i-bpp]) + int(pdat[i])) / 2)
		}
	case ftPaeth:
		filterPaeth(cdat, pdat, bpp)
	default:
		return fmt.Errorf("%w: bad filter type %d", ErrCorruptImage, ft)
	}

	return nil
}

// filterPaeth applies the Paeth filter to cdat, with pdat as the previous row.
func filterPaeth(cdat, pdat []byte, bpp int) {
	for i := range cdat {
		var a, c uint8
		if i >= bpp {
			a = cdat[i-bpp]
			c = pdat[i-bpp]
		}
		cdat[i] += paeth(a, pdat[i], c)
	}
}

// paeth returns whichever of a (left), b (upper) and c (upper-left) is closest
// to a+b-c. Ties go to a, then b.
func paeth(a, b, c uint8) uint8 {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))

	if pa <= pb && pa <= pc {
		return a
	}

	if pb <= pc {
		return b
	}

	return c
}

// abs returns the absolute value of x.
func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
