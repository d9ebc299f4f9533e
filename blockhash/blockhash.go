// Package blockhash computes block mean value perceptual hashes.
//
// The image is divided into bits x bits blocks. The sum of R+G+B over each
// block is compared with the median of its horizontal band, one bit per block.
// Fully transparent pixels count as white.
package blockhash

import (
	"errors"
	"fmt"
	"image"
	"math"
	"slices"
	"strings"

	"golang.org/x/image/draw"
)

// Hashing methods.
const (
	// MethodEven uses whole-pixel blocks; pixels past the last full block are ignored.
	MethodEven = 1
	// MethodPrecise spreads pixels across block boundaries with fractional weights.
	MethodPrecise = 2
)

// bands is the number of horizontal bands, each thresholded on its own median.
const bands = 4

// whiteValue is the R+G+B sum of a white pixel, used for fully transparent pixels.
const whiteValue = 255 * 3

var (
	// ErrBits is returned for a bit count that is not positive and even.
	ErrBits = errors.New("blockhash: bits must be positive and even")
	// ErrMethod is returned for an unknown hashing method.
	ErrMethod = errors.New("blockhash: unknown method")
	// ErrLength is returned when comparing hashes of different lengths.
	ErrLength = errors.New("blockhash: hash length mismatch")
)

// Hash is a bit vector of bits*bits entries.
type Hash struct {
	bits []bool
}

// Len returns the number of bits.
func (h Hash) Len() int {
	return len(h.bits)
}

// Bit reports whether bit i is set.
func (h Hash) Bit(i int) bool {
	return h.bits[i]
}

// String returns the hash as hex, four bits per digit, most significant first.
func (h Hash) String() string {
	const digits = "0123456789abcdef"

	var sb strings.Builder
	sb.Grow((len(h.bits) + 3) / 4)
	for i := 0; i < len(h.bits); i += 4 {
		var nibble byte
		for j := i; j < i+4; j++ {
			nibble <<= 1
			if j < len(h.bits) && h.bits[j] {
				nibble |= 1
			}
		}
		sb.WriteByte(digits[nibble])
	}

	return sb.String()
}

// Distance returns the Hamming distance between two hashes of equal length.
func (h Hash) Distance(o Hash) (int, error) {
	if len(h.bits) != len(o.bits) {
		return 0, fmt.Errorf("%w: %d and %d", ErrLength, len(h.bits), len(o.bits))
	}

	n := 0
	for i, b := range h.bits {
		if b != o.bits[i] {
			n++
		}
	}

	return n, nil
}

// ParseHash parses the hex form produced by Hash.String.
func ParseHash(s string) (Hash, error) {
	h := Hash{bits: make([]bool, 0, len(s)*4)}
	for i := 0; i < len(s); i++ {
		var v byte
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			v = c - '0'
		case c >= 'a' && c <= 'f':
			v = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			v = c - 'A' + 10
		default:
			return Hash{}, fmt.Errorf("blockhash: invalid hex digit %q at %d", c, i)
		}

		for shift := 3; shift >= 0; shift-- {
			h.bits = append(h.bits, v>>shift&1 == 1)
		}
	}

	return h, nil
}

// Compute hashes img into bits*bits bits with the given method.
func Compute(img image.Image, bits, method int) (Hash, error) {
	if bits <= 0 || bits%2 != 0 {
		return Hash{}, fmt.Errorf("%w: %d", ErrBits, bits)
	}

	src := toNRGBA(img)

	var blocks []float64
	var pixelsPerBlock float64

	switch method {
	case MethodEven:
		blocks, pixelsPerBlock = evenBlocks(src, bits)
	case MethodPrecise:
		blocks, pixelsPerBlock = preciseBlocks(src, bits)
	default:
		return Hash{}, fmt.Errorf("%w: %d", ErrMethod, method)
	}

	return Hash{bits: blocksToBits(blocks, pixelsPerBlock)}, nil
}

// toNRGBA returns img as an NRGBA image anchored at the origin.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}

	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	return dst
}

// pixelValue returns R+G+B of pixel (x, y), or white for a fully transparent pixel.
func pixelValue(img *image.NRGBA, x, y int) float64 {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	if p[3] == 0 {
		return whiteValue
	}

	return float64(int(p[0]) + int(p[1]) + int(p[2]))
}

// evenBlocks sums whole-pixel blocks of width/bits by height/bits pixels.
func evenBlocks(img *image.NRGBA, bits int) ([]float64, float64) {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	bw, bh := width/bits, height/bits

	blocks := make([]float64, 0, bits*bits)
	for y := 0; y < bits; y++ {
		for x := 0; x < bits; x++ {
			var total float64
			for iy := 0; iy < bh; iy++ {
				for ix := 0; ix < bw; ix++ {
					total += pixelValue(img, x*bw+ix, y*bh+iy)
				}
			}
			blocks = append(blocks, total)
		}
	}

	return blocks, float64(bw * bh)
}

// blockSpan returns the blocks a pixel at coordinate i contributes to and their weights.
func blockSpan(i, size int, blockSize float64, bits int) (first, second int, w1, w2 float64) {
	mod := math.Mod(float64(i+1), blockSize)
	frac := mod - math.Floor(mod)
	whole := mod - frac

	w1, w2 = 1-frac, frac

	first = int(math.Floor(float64(i) / blockSize))
	if whole > 0 || i+1 == size {
		second = first
	} else {
		second = int(math.Ceil(float64(i) / blockSize))
	}

	return min(first, bits-1), min(second, bits-1), w1, w2
}

// preciseBlocks sums fractional blocks. It matches evenBlocks when both sides divide evenly.
func preciseBlocks(img *image.NRGBA, bits int) ([]float64, float64) {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	if width%bits == 0 && height%bits == 0 {
		return evenBlocks(img, bits)
	}

	evenX, evenY := width%bits == 0, height%bits == 0
	bw := float64(width) / float64(bits)
	bh := float64(height) / float64(bits)

	blocks := make([]float64, bits*bits)
	for y := 0; y < height; y++ {
		top, bottom, wTop, wBottom := int(float64(y)/bh), int(float64(y)/bh), 1.0, 0.0
		if !evenY {
			top, bottom, wTop, wBottom = blockSpan(y, height, bh, bits)
		}

		for x := 0; x < width; x++ {
			v := pixelValue(img, x, y)

			left, right, wLeft, wRight := int(float64(x)/bw), int(float64(x)/bw), 1.0, 0.0
			if !evenX {
				left, right, wLeft, wRight = blockSpan(x, width, bw, bits)
			}

			blocks[top*bits+left] += v * wTop * wLeft
			blocks[top*bits+right] += v * wTop * wRight
			blocks[bottom*bits+left] += v * wBottom * wLeft
			blocks[bottom*bits+right] += v * wBottom * wRight
		}
	}

	return blocks, bw * bh
}

// median returns the median of data without modifying it.
func median(data []float64) float64 {
	s := slices.Clone(data)
	slices.Sort(s)

	n := len(s)
	if n == 0 {
		return 0
	}

	if n%2 == 0 {
		return (s[n/2-1] + s[n/2]) / 2
	}

	return s[n/2]
}

// blocksToBits thresholds each block against the median of its band.
// A block equal to the median is set only if the median is brighter than half.
func blocksToBits(blocks []float64, pixelsPerBlock float64) []bool {
	halfBlockValue := pixelsPerBlock * 256 * 3 / 2
	bandSize := len(blocks) / bands

	out := make([]bool, len(blocks))
	for i := 0; i < bands; i++ {
		band := blocks[i*bandSize : (i+1)*bandSize]
		m := median(band)
		for j, v := range band {
			out[i*bandSize+j] = v > m || (math.Abs(v-m) < 1 && m > halfBlockValue)
		}
	}

	return out
}
