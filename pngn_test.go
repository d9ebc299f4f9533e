package pngn

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"
)

// referenceImages returns images covering the color types and depths the
// standard encoder produces.
func referenceImages() map[string]image.Image {
	const w, h = 23, 17
	rng := rand.New(rand.NewSource(42))
	rect := image.Rect(0, 0, w, h)

	gray := image.NewGray(rect)
	rng.Read(gray.Pix)

	gray16 := image.NewGray16(rect)
	rng.Read(gray16.Pix)

	rgb := image.NewRGBA(rect)
	rng.Read(rgb.Pix)
	for i := 3; i < len(rgb.Pix); i += 4 {
		rgb.Pix[i] = 0xff
	}

	nrgba := image.NewNRGBA(rect)
	rng.Read(nrgba.Pix)

	nrgba64 := image.NewNRGBA64(rect)
	rng.Read(nrgba64.Pix)

	pal := make(color.Palette, 16)
	for i := range pal {
		pal[i] = color.NRGBA{R: uint8(i * 16), G: uint8(255 - i*16), B: uint8(i * 5), A: uint8(i*17 | 1)}
	}
	paletted := image.NewPaletted(rect, pal)
	for i := range paletted.Pix {
		paletted.Pix[i] = uint8(rng.Intn(len(pal)))
	}

	return map[string]image.Image{
		"Gray8":    gray,
		"Gray16":   gray16,
		"RGB8":     rgb,
		"RGBA8":    nrgba,
		"RGBA16":   nrgba64,
		"Palette4": paletted,
	}
}

// encodePNG encodes img with the standard library.
func encodePNG(tb testing.TB, img image.Image) []byte {
	tb.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		tb.Fatalf("png.Encode failed: %v", err)
	}

	return buf.Bytes()
}

// TestDecodeAgainstStdlib compares Decode with image/png pixel by pixel.
func TestDecodeAgainstStdlib(t *testing.T) {
	for name, src := range referenceImages() {
		t.Run(name, func(t *testing.T) {
			data := encodePNG(t, src)

			refImg, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("std png.Decode failed: %v", err)
			}

			img, err := Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			if img.Bounds() != refImg.Bounds() {
				t.Fatalf("Bounds mismatch: got %v, want %v", img.Bounds(), refImg.Bounds())
			}

			b := img.Bounds()
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					r0, g0, b0, a0 := refImg.At(x, y).RGBA()
					r1, g1, b1, a1 := img.At(x, y).RGBA()
					if r0 != r1 || g0 != g1 || b0 != b1 || a0 != a1 {
						t.Fatalf("Pixel at (%d, %d) - got %v, want %v", x, y, img.At(x, y), refImg.At(x, y))
					}
				}
			}
		})
	}
}

// TestDecodeConfig checks dimensions and color model.
func TestDecodeConfig(t *testing.T) {
	images := referenceImages()

	testCases := []struct {
		name  string
		model color.Model
	}{
		{"Gray8", color.NRGBAModel},
		{"Gray16", color.NRGBA64Model},
		{"Palette4", color.NRGBAModel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := DecodeConfig(bytes.NewReader(encodePNG(t, images[tc.name])))
			if err != nil {
				t.Fatalf("DecodeConfig failed: %v", err)
			}

			if cfg.Width != 23 || cfg.Height != 17 || cfg.ColorModel != tc.model {
				t.Errorf("got %dx%d %v", cfg.Width, cfg.Height, cfg.ColorModel)
			}
		})
	}
}

// TestDecodeNotPNG checks the signature check of both entry points.
func TestDecodeNotPNG(t *testing.T) {
	inputs := [][]byte{nil, []byte("GIF89a"), []byte("\x89PNG\r\n\x1a\x00")}

	for _, in := range inputs {
		if _, err := Decode(bytes.NewReader(in)); !errors.Is(err, ErrNoPNG) {
			t.Errorf("Decode(%q) error = %v, want ErrNoPNG", in, err)
		}

		if _, err := DecodeConfig(bytes.NewReader(in)); !errors.Is(err, ErrNoPNG) {
			t.Errorf("DecodeConfig(%q) error = %v, want ErrNoPNG", in, err)
		}
	}
}

// TestDecodeAnimatedDefault checks that Decode falls back to the first frame.
func TestDecodeAnimatedDefault(t *testing.T) {
	data := makePNG(
		makeIHDR(2, 1, 8, Grayscale, InterlaceNone),
		makeACTL(1, 0),
		makeFCTL(0, 2, 1, 0, 0, 1, 10, DisposeNone, BlendSource),
		makeChunk("IDAT", zlibCompress(t, []byte{0, 50, 60})),
		iend,
	)

	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	got := img.(*image.NRGBA).Pix
	if want := []byte{50, 50, 50, 255, 60, 60, 60, 255}; !bytes.Equal(got, want) {
		t.Errorf("Pix = %v, want %v", got, want)
	}
}

// TestDecodeNoImageData checks that Decode rejects a stream without pixels.
func TestDecodeNoImageData(t *testing.T) {
	_, err := Decode(bytes.NewReader(makePNG(makeIHDR(1, 1, 8, Grayscale, 0), iend)))
	if !errors.Is(err, ErrCorruptImage) {
		t.Errorf("got %v, want ErrCorruptImage", err)
	}
}

// TestDecodeTooLarge checks that the pixel limit is not bypassed by the fallback.
func TestDecodeTooLarge(t *testing.T) {
	data := encodePNG(t, image.NewGray(image.Rect(0, 0, 64, 64)))

	_, err := Decode(bytes.NewReader(data), &Options{MaxPixels: 1000})
	if !errors.Is(err, ErrUnsupportedFeature) {
		t.Errorf("got %v, want ErrUnsupportedFeature", err)
	}
}

// TestDecodeStrict checks that Options reach the reconstruction.
func TestDecodeStrict(t *testing.T) {
	data := makePNG(
		makeIHDR(1, 2, 8, Grayscale, InterlaceNone),
		makeChunk("IDAT", zlibCompress(t, []byte{0, 1})),
		iend,
	)

	if _, err := Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("lenient Decode failed: %v", err)
	}

	if _, err := Decode(bytes.NewReader(data), &Options{Strict: true}); !errors.Is(err, ErrCorruptImage) {
		t.Errorf("strict Decode error = %v, want ErrCorruptImage", err)
	}
}

// addFuzzCorpus seeds the fuzzer with encoded reference images and hand-built streams.
func addFuzzCorpus(f *testing.F) {
	f.Helper()

	for _, img := range referenceImages() {
		f.Add(encodePNG(f, img))
	}

	f.Add(gray2x2(f))
	f.Add(makePNG(
		makeIHDR(3, 3, 1, Grayscale, InterlaceAdam7),
		makeChunk("IDAT", zlibCompress(f, filterNone(randomPix(1, 3, 3, 1), 3, 3, 1, true))),
		iend,
	))
}

// FuzzDecode tests the Decode function for panics with a variety of inputs.
func FuzzDecode(f *testing.F) {
	addFuzzCorpus(f)

	opts := &Options{Strict: true, MaxPixels: 1 << 20}

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = Decode(bytes.NewReader(data), &Options{MaxPixels: 1 << 20})
		_, _ = Decode(bytes.NewReader(data), opts)
	})
}

// FuzzNewDecoder tests the chunk parser and every frame for panics.
func FuzzNewDecoder(f *testing.F) {
	addFuzzCorpus(f)

	f.Fuzz(func(t *testing.T, data []byte) {
		d, err := NewDecoder(data, &Options{MaxPixels: 1 << 20})
		if err != nil {
			return
		}

		if r, err := d.DecodePixels(); err == nil {
			_ = r.NRGBA()
		}

		_, _ = d.DecodeFrames()
	})
}
