package pngn

// interlaceScan defines the placement and size of a pass for Adam7 interlacing.
type interlaceScan struct {
	xFactor, yFactor, xOffset, yOffset int
}

// interlacing defines Adam7 interlacing, with 7 passes of reduced images.
// See https://www.w3.org/TR/PNG/#8Interlace
var interlacing = [7]interlaceScan{
	{8, 8, 0, 0},
	{8, 8, 4, 0},
	{4, 8, 0, 4},
	{4, 4, 2, 0},
	{2, 4, 0, 2},
	{2, 2, 1, 0},
	{1, 2, 0, 1},
}

// passSize returns the dimensions of the reduced image for a pass.
// Either may be zero for small images, in which case the pass is absent.
func (p interlaceScan) passSize(width, height int) (int, int) {
	// Add the multiplication factor and subtract one, effectively rounding up.
	w := (width - p.xOffset + p.xFactor - 1) / p.xFactor
	h := (height - p.yOffset + p.yFactor - 1) / p.yFactor

	return max(w, 0), max(h, 0)
}

// mergePass scatters the reconstructed rows of a pass into the full image.
// src holds h rows of w pixels; dst has rows of dstStride bytes.
func mergePass(dst []byte, dstStride int, src []byte, p interlaceScan, w, h, bitsPerPixel int) {
	if bitsPerPixel >= 8 {
		bytesPerPixel := bitsPerPixel / 8
		s := 0
		for y := 0; y < h; y++ {
			dBase := (y*p.yFactor+p.yOffset)*dstStride + p.xOffset*bytesPerPixel
			for x := 0; x < w; x++ {
				d := dBase + x*p.xFactor*bytesPerPixel
				copy(dst[d:d+bytesPerPixel], src[s:s+bytesPerPixel])
				s += bytesPerPixel
			}
		}

		return
	}

	srcStride := rowBytes(w, bitsPerPixel)
	for y := 0; y < h; y++ {
		srcRow := src[y*srcStride : (y+1)*srcStride]
		dy := y*p.yFactor + p.yOffset
		dstRow := dst[dy*dstStride : (dy+1)*dstStride]
		for x := 0; x < w; x++ {
			v := getPacked(srcRow, x, bitsPerPixel)
			setPacked(dstRow, x*p.xFactor+p.xOffset, bitsPerPixel, v)
		}
	}
}

// getPacked returns the sub-byte sample of pixel x in a packed row.
// Samples are packed most significant bits first.
func getPacked(row []byte, x, bits int) uint8 {
	bit := x * bits
	shift := 8 - bits - bit%8
	mask := uint8(1<<bits - 1)

	return (row[bit/8] >> shift) & mask
}

// setPacked stores a sub-byte sample for pixel x in a packed row.
func setPacked(row []byte, x, bits int, v uint8) {
	bit := x * bits
	shift := 8 - bits - bit%8
	mask := uint8(1<<bits - 1)
	i := bit / 8

	row[i] = row[i]&^(mask<<shift) | (v&mask)<<shift
}
