package pngn

import "fmt"

// WarningKind classifies a non-fatal reconstruction anomaly.
type WarningKind int

const (
	// WarnShortStream means the decompressed data ended before the last row.
	// Rows that could not be reconstructed are left zero.
	WarnShortStream WarningKind = iota + 1
	// WarnChecksum means the zlib Adler-32 checksum did not match.
	WarnChecksum
	// WarnTrailingData means the decompressed data was longer than the image needs.
	WarnTrailingData
)

// String returns the warning kind name.
func (k WarningKind) String() string {
	switch k {
	case WarnShortStream:
		return "short stream"
	case WarnChecksum:
		return "checksum mismatch"
	case WarnTrailingData:
		return "trailing data"
	}

	return fmt.Sprintf("WarningKind(%d)", int(k))
}

// Warning describes an anomaly that was tolerated during reconstruction.
type Warning struct {
	Kind WarningKind
	Pass int // Adam7 pass (0-6), 0 for non-interlaced images.
	Row  int // Row within the pass where decoding stopped, -1 if not row related.
	Msg  string
}

// Error implements the error interface so a warning can be escalated.
func (w Warning) Error() string {
	if w.Row >= 0 {
		return fmt.Sprintf("%s at pass %d row %d: %s", w.Kind, w.Pass, w.Row, w.Msg)
	}

	return fmt.Sprintf("%s: %s", w.Kind, w.Msg)
}

// escalate converts the first warning into an error wrapping ErrCorruptImage.
func escalate(warnings []Warning) error {
	if len(warnings) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrCorruptImage, warnings[0])
}
