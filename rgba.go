package pngn

// rgbaToNRGBA copies 8-bit RGBA rows, which already have the NRGBA layout.
func rgbaToNRGBA(src []byte, srcStride int, dst []byte, dstStride, width, height int) {
	n := width * 4
	for y := 0; y < height; y++ {
		copy(dst[y*dstStride:y*dstStride+n], src[y*srcStride:y*srcStride+n])
	}
}

// rgbToNRGBA expands 8-bit RGB rows to NRGBA.
// Pixels equal to key, if not nil, become fully transparent.
func rgbToNRGBA(src []byte, srcStride int, dst []byte, dstStride, width, height int, key *[3]uint8) {
	for y := 0; y < height; y++ {
		s := src[y*srcStride:]
		d := dst[y*dstStride:]
		for x := 0; x < width; x++ {
			r, g, b := s[3*x], s[3*x+1], s[3*x+2]
			d[4*x+0] = r
			d[4*x+1] = g
			d[4*x+2] = b
			d[4*x+3] = 255
			if key != nil && r == key[0] && g == key[1] && b == key[2] {
				d[4*x+3] = 0
			}
		}
	}
}

// grayToNRGBA expands 8-bit grayscale rows to NRGBA.
// Pixels equal to key, if not negative, become fully transparent.
func grayToNRGBA(src []byte, srcStride int, dst []byte, dstStride, width, height int, key int) {
	for y := 0; y < height; y++ {
		s := src[y*srcStride:]
		d := dst[y*dstStride:]
		for x := 0; x < width; x++ {
			v := s[x]
			d[4*x+0] = v
			d[4*x+1] = v
			d[4*x+2] = v
			d[4*x+3] = 255
			if int(v) == key {
				d[4*x+3] = 0
			}
		}
	}
}

// grayAlphaToNRGBA expands 8-bit gray-alpha rows to NRGBA.
func grayAlphaToNRGBA(src []byte, srcStride int, dst []byte, dstStride, width, height int) {
	for y := 0; y < height; y++ {
		s := src[y*srcStride:]
		d := dst[y*dstStride:]
		for x := 0; x < width; x++ {
			v := s[2*x]
			d[4*x+0] = v
			d[4*x+1] = v
			d[4*x+2] = v
			d[4*x+3] = s[2*x+1]
		}
	}
}

// paletteToNRGBA expands indexed rows of any depth through a lookup table.
func paletteToNRGBA(src []byte, srcStride int, dst []byte, dstStride, width, height, depth int, lut *[256][4]uint8) {
	for y := 0; y < height; y++ {
		s := src[y*srcStride : (y+1)*srcStride]
		d := dst[y*dstStride:]
		for x := 0; x < width; x++ {
			var idx uint8
			if depth == 8 {
				idx = s[x]
			} else {
				idx = getPacked(s, x, depth)
			}
			copy(d[4*x:4*x+4], lut[idx][:])
		}
	}
}
