package pngn

import (
	"bytes"
	"reflect"
	"testing"
)

// TestRGBToNRGBA verifies the expansion of RGB rows with and without a color key.
func TestRGBToNRGBA(t *testing.T) {
	const w, h = 2, 2
	src := []byte{
		255, 0, 128, 10, 40, 70,
		20, 50, 80, 30, 60, 90,
	}
	dst := make([]byte, w*h*4)

	want := []byte{
		255, 0, 128, 255, // Row 1, Pixel 1
		10, 40, 70, 0, // Row 1, Pixel 2, keyed
		20, 50, 80, 255, // Row 2, Pixel 1
		30, 60, 90, 255, // Row 2, Pixel 2
	}

	rgbToNRGBA(src, w*3, dst, w*4, w, h, &[3]uint8{10, 40, 70})

	if !bytes.Equal(dst, want) {
		t.Errorf("rgbToNRGBA failed.\nGot:  %v\nWant: %v", dst, want)
	}
}

// TestGrayToNRGBA verifies the expansion of grayscale rows.
func TestGrayToNRGBA(t *testing.T) {
	const w, h = 2, 2
	src := []byte{0, 100, 128, 255}
	dst := make([]byte, w*h*4)

	want := []byte{
		0, 0, 0, 255, // Row 1, Pixel 1
		100, 100, 100, 255, // Row 1, Pixel 2
		128, 128, 128, 255, // Row 2, Pixel 1
		255, 255, 255, 255, // Row 2, Pixel 2
	}

	grayToNRGBA(src, w, dst, w*4, w, h, -1)

	if !reflect.DeepEqual(dst, want) {
		t.Errorf("grayToNRGBA failed.\nGot:  %v\nWant: %v", dst, want)
	}

	grayToNRGBA(src, w, dst, w*4, w, h, 128)
	if dst[11] != 0 || dst[15] != 255 {
		t.Errorf("keyed gray pixel alpha = %d, want 0", dst[11])
	}
}

// TestGrayAlphaToNRGBA verifies the expansion of gray-alpha rows.
func TestGrayAlphaToNRGBA(t *testing.T) {
	src := []byte{10, 20, 30, 40}
	dst := make([]byte, 8)

	grayAlphaToNRGBA(src, 4, dst, 8, 2, 1)

	if want := []byte{10, 10, 10, 20, 30, 30, 30, 40}; !bytes.Equal(dst, want) {
		t.Errorf("grayAlphaToNRGBA failed.\nGot:  %v\nWant: %v", dst, want)
	}
}

// TestPaletteToNRGBA verifies lookup of packed indexes, including row padding.
func TestPaletteToNRGBA(t *testing.T) {
	var lut [256][4]uint8
	lut[0] = [4]uint8{1, 2, 3, 255}
	lut[1] = [4]uint8{4, 5, 6, 0}
	lut[2] = [4]uint8{7, 8, 9, 128}

	// Three 2-bit pixels per row, one byte of stride.
	src := []byte{0b00_01_10_00, 0b10_10_00_00}
	dst := make([]byte, 2*3*4)

	paletteToNRGBA(src, 1, dst, 12, 3, 2, 2, &lut)

	want := []byte{
		1, 2, 3, 255, 4, 5, 6, 0, 7, 8, 9, 128,
		7, 8, 9, 128, 7, 8, 9, 128, 1, 2, 3, 255,
	}
	if !bytes.Equal(dst, want) {
		t.Errorf("paletteToNRGBA failed.\nGot:  %v\nWant: %v", dst, want)
	}
}

// BenchmarkRGBToNRGBA measures the expansion of RGB rows.
func BenchmarkRGBToNRGBA(b *testing.B) {
	const w, h = 1920, 1080
	src := randomPix(1, w, h, 24)
	dst := make([]byte, w*h*4)
	b.ReportAllocs()
	b.SetBytes(int64(w * h * 4))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		rgbToNRGBA(src, w*3, dst, w*4, w, h, nil)
	}
}

// BenchmarkPaletteToNRGBA measures the expansion of 8-bit indexed rows.
func BenchmarkPaletteToNRGBA(b *testing.B) {
	const w, h = 1920, 1080
	src := randomPix(1, w, h, 8)
	dst := make([]byte, w*h*4)
	var lut [256][4]uint8
	b.ReportAllocs()
	b.SetBytes(int64(w * h * 4))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		paletteToNRGBA(src, w, dst, w*4, w, h, 8, &lut)
	}
}
