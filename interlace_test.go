package pngn

import (
	"bytes"
	"testing"
)

// TestPassSize checks the reduced image sizes of the seven passes.
func TestPassSize(t *testing.T) {
	testCases := []struct {
		w, h int
		want [7][2]int
	}{
		{8, 8, [7][2]int{{1, 1}, {1, 1}, {2, 1}, {2, 2}, {4, 2}, {4, 4}, {8, 4}}},
		{1, 1, [7][2]int{{1, 1}, {0, 1}, {1, 0}, {0, 1}, {1, 0}, {0, 1}, {1, 0}}},
		{5, 3, [7][2]int{{1, 1}, {1, 1}, {2, 0}, {1, 1}, {3, 1}, {2, 2}, {5, 1}}},
	}

	for _, tc := range testCases {
		total := 0
		for i, p := range interlacing {
			w, h := p.passSize(tc.w, tc.h)
			if w != tc.want[i][0] || h != tc.want[i][1] {
				t.Errorf("%dx%d pass %d: got %dx%d, want %dx%d", tc.w, tc.h, i, w, h, tc.want[i][0], tc.want[i][1])
			}
			total += w * h
		}

		if total != tc.w*tc.h {
			t.Errorf("%dx%d: passes cover %d pixels, want %d", tc.w, tc.h, total, tc.w*tc.h)
		}
	}
}

// TestPacked checks sub-byte sample access.
func TestPacked(t *testing.T) {
	row := []byte{0b10_01_11_00, 0b0110_1001}

	if got := getPacked(row, 0, 2); got != 0b10 {
		t.Errorf("getPacked(0, 2) = %b, want 10", got)
	}
	if got := getPacked(row, 2, 2); got != 0b11 {
		t.Errorf("getPacked(2, 2) = %b, want 11", got)
	}
	if got := getPacked(row, 3, 4); got != 0b1001 {
		t.Errorf("getPacked(3, 4) = %b, want 1001", got)
	}
	if got := getPacked(row, 9, 1); got != 1 {
		t.Errorf("getPacked(9, 1) = %b, want 1", got)
	}

	setPacked(row, 1, 2, 0b10)
	setPacked(row, 15, 1, 0)
	if want := []byte{0b10_10_11_00, 0b0110_1000}; !bytes.Equal(row, want) {
		t.Errorf("after setPacked got %08b, want %08b", row, want)
	}
}

// TestMergePass checks that a pass lands on its grid positions.
func TestMergePass(t *testing.T) {
	const w, h = 8, 8

	t.Run("Bytes", func(t *testing.T) {
		dst := make([]byte, w*h)
		p := interlacing[2] // 4x8 grid starting at (0, 4).
		pw, ph := p.passSize(w, h)
		mergePass(dst, w, []byte{1, 2}, p, pw, ph, 8)

		for i, v := range dst {
			want := byte(0)
			switch i {
			case 4*w + 0:
				want = 1
			case 4*w + 4:
				want = 2
			}
			if v != want {
				t.Fatalf("dst[%d] = %d, want %d", i, v, want)
			}
		}
	})

	t.Run("Bits", func(t *testing.T) {
		dst := make([]byte, h)
		p := interlacing[5] // 2x2 grid starting at (1, 0).
		pw, ph := p.passSize(w, h)
		src := []byte{0b1111_0000, 0, 0, 0b1010_0000}
		mergePass(dst, 1, src, p, pw, ph, 1)

		want := []byte{0b0101_0101, 0, 0, 0, 0, 0, 0b0100_0100, 0}
		if !bytes.Equal(dst, want) {
			t.Errorf("got %08b, want %08b", dst, want)
		}
	})
}
