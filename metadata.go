package pngn

import (
	"bytes"
	"fmt"
	"strings"
)

// TransparencyKind selects which field of Transparency is populated.
type TransparencyKind int

const (
	// TransparencyNone means no tRNS chunk was seen.
	TransparencyNone TransparencyKind = iota
	// TransparencyIndexed holds one alpha value per palette index.
	TransparencyIndexed
	// TransparencyGray holds a single gray key.
	TransparencyGray
	// TransparencyRGB holds a single RGB key.
	TransparencyRGB
)

// indexedAlphaLength is the length indexed alpha lists are padded to.
const indexedAlphaLength = 255

// Transparency is the decoded tRNS chunk. Which field is valid depends on Kind.
type Transparency struct {
	Kind    TransparencyKind
	Indexed []byte // Palette alpha, padded with 255 to at least 255 entries.
	Gray    byte   // First byte of the two-byte gray key (the high byte).
	RGB     []byte // Verbatim RGB key payload, three 16-bit samples.
	Raw     []byte // Verbatim chunk payload for every kind.
}

// grayKey returns the full 16-bit gray key from the raw payload.
func (t *Transparency) grayKey() (uint16, bool) {
	if t.Kind != TransparencyGray || len(t.Raw) < 2 {
		return 0, false
	}

	return uint16(t.Raw[0])<<8 | uint16(t.Raw[1]), true
}

// rgbKey returns the three 16-bit samples of the RGB key.
func (t *Transparency) rgbKey() (r, g, b uint16, ok bool) {
	if t.Kind != TransparencyRGB || len(t.RGB) < 6 {
		return 0, 0, 0, false
	}

	k := t.RGB

	return uint16(k[0])<<8 | uint16(k[1]), uint16(k[2])<<8 | uint16(k[3]), uint16(k[4])<<8 | uint16(k[5]), true
}

// clone returns a deep copy.
func (t Transparency) clone() Transparency {
	t.Indexed = bytes.Clone(t.Indexed)
	t.RGB = bytes.Clone(t.RGB)
	t.Raw = bytes.Clone(t.Raw)

	return t
}

// parsePLTE copies the palette payload verbatim. A trailing partial
// entry is kept but never addressable.
func parsePLTE(payload []byte) []byte {
	return bytes.Clone(payload)
}

// parseTRNS interprets the tRNS payload according to the color type.
func parseTRNS(payload []byte, ct ColorType) (Transparency, error) {
	t := Transparency{Raw: bytes.Clone(payload)}

	switch ct {
	case Palette:
		t.Kind = TransparencyIndexed
		t.Indexed = make([]byte, 0, max(len(payload), indexedAlphaLength))
		t.Indexed = append(t.Indexed, payload...)
		for len(t.Indexed) < indexedAlphaLength {
			t.Indexed = append(t.Indexed, 0xff)
		}
	case Grayscale:
		if len(payload) < 2 {
			return Transparency{}, fmt.Errorf("%w: bad tRNS length %d for gray key", ErrCorruptImage, len(payload))
		}

		t.Kind = TransparencyGray
		t.Gray = payload[0]
	case RGB:
		if len(payload) < 6 {
			return Transparency{}, fmt.Errorf("%w: bad tRNS length %d for RGB key", ErrCorruptImage, len(payload))
		}

		t.Kind = TransparencyRGB
		t.RGB = bytes.Clone(payload)
	default:
		return Transparency{}, fmt.Errorf("%w: tRNS chunk with color type %v", ErrCorruptImage, ct)
	}

	return t, nil
}

// parseTEXT splits a tEXt payload on its first NUL into a key and a value.
// Both are Latin-1 and are returned as UTF-8. Without a NUL, the whole
// payload is the key.
func parseTEXT(payload []byte) (key, value string) {
	k, v, _ := bytes.Cut(payload, []byte{0})

	return latin1(k), latin1(v)
}

// latin1 converts ISO 8859-1 bytes to a UTF-8 string.
func latin1(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}

	return sb.String()
}
