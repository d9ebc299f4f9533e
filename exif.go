package pngn

import (
	"encoding/binary"
	"fmt"
)

// Exif holds the commonly used fields of an eXIf chunk.
type Exif struct {
	Orientation      int // 1-8, 0 if absent.
	Width, Height    int
	Make, Model      string
	Software         string
	DateTime         string
	DateTimeOriginal string
	Artist           string
	Copyright        string
	ExposureTime     float64
	FNumber          float64
	ISOSpeed         int
	FocalLength      float64
}

// TIFF tags.
const (
	tagImageWidth       = 0x0100
	tagImageLength      = 0x0101
	tagMake             = 0x010f
	tagModel            = 0x0110
	tagOrientation      = 0x0112
	tagSoftware         = 0x0131
	tagDateTime         = 0x0132
	tagArtist           = 0x013b
	tagCopyright        = 0x8298
	tagExifIFDPointer   = 0x8769
	tagExposureTime     = 0x829a
	tagFNumber          = 0x829d
	tagISOSpeedRatings  = 0x8827
	tagDateTimeOriginal = 0x9003
	tagFocalLength      = 0x920a
)

// TIFF field types.
const (
	typeByte      = 1
	typeASCII     = 2
	typeShort     = 3
	typeLong      = 4
	typeRational  = 5
	typeSByte     = 6
	typeUndefined = 7
	typeSShort    = 8
	typeSLong     = 9
	typeSRational = 10
	typeFloat     = 11
	typeDouble    = 12
)

// ifdEntryLength is the size of one IFD entry.
const ifdEntryLength = 12

// ifdEntry is one decoded IFD entry. value is the offset of the value,
// which is inline for values of 4 bytes or less.
type ifdEntry struct {
	tag, typ uint16
	count    uint32
	value    int
}

// tiffReader reads a TIFF structure in either byte order.
// Reads outside the data return zero.
type tiffReader struct {
	data  []byte
	order binary.ByteOrder
}

func (r *tiffReader) uint16(off int) uint16 {
	if off < 0 || off+2 > len(r.data) {
		return 0
	}

	return r.order.Uint16(r.data[off:])
}

func (r *tiffReader) uint32(off int) uint32 {
	if off < 0 || off+4 > len(r.data) {
		return 0
	}

	return r.order.Uint32(r.data[off:])
}

func (r *tiffReader) string(off int, n uint32) string {
	if off < 0 || off >= len(r.data) {
		return ""
	}

	end := off
	for end < len(r.data) && end-off < int(n) && r.data[end] != 0 {
		end++
	}

	return string(r.data[off:end])
}

func (r *tiffReader) rational(off int) float64 {
	den := r.uint32(off + 4)
	if den == 0 {
		return 0
	}

	return float64(r.uint32(off)) / float64(den)
}

// integer returns a SHORT or LONG value.
func (r *tiffReader) integer(e ifdEntry) int {
	switch e.typ {
	case typeShort:
		return int(r.uint16(e.value))
	case typeLong:
		return int(r.uint32(e.value))
	}

	return 0
}

// entries walks the IFD at off and calls fn for every entry whose value lies within the data.
func (r *tiffReader) entries(off int, fn func(ifdEntry)) {
	n := int(r.uint16(off))
	off += 2

	for i := 0; i < n; i++ {
		p := off + i*ifdEntryLength
		if p+ifdEntryLength > len(r.data) {
			return
		}

		e := ifdEntry{
			tag:   r.uint16(p),
			typ:   r.uint16(p + 2),
			count: r.uint32(p + 4),
			value: p + 8,
		}

		if typeSize(e.typ)*int64(e.count) > 4 {
			e.value = int(r.uint32(p + 8))
			if e.value >= len(r.data) {
				continue
			}
		}

		fn(e)
	}
}

// typeSize returns the size in bytes of one value of a TIFF field type.
func typeSize(typ uint16) int64 {
	switch typ {
	case typeShort, typeSShort:
		return 2
	case typeLong, typeSLong, typeFloat:
		return 4
	case typeRational, typeSRational, typeDouble:
		return 8
	}

	// Byte, ASCII, undefined and unknown types.
	return 1
}

// parseEXIF decodes an eXIf payload, a TIFF header followed by IFD0.
// https://www.w3.org/TR/png-3/#eXIf
func parseEXIF(payload []byte) (*Exif, error) {
	if len(payload) < 8 {
		return nil, fmt.Errorf("%w: eXIf too short", ErrCorruptImage)
	}

	r := &tiffReader{data: payload}
	switch string(payload[:2]) {
	case "II":
		r.order = binary.LittleEndian
	case "MM":
		r.order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad eXIf byte order", ErrCorruptImage)
	}

	if r.uint16(2) != 42 {
		return nil, fmt.Errorf("%w: bad eXIf magic", ErrCorruptImage)
	}

	ifd := int(r.uint32(4))
	if ifd < 8 || ifd >= len(payload) {
		return nil, fmt.Errorf("%w: bad IFD offset %d", ErrCorruptImage, ifd)
	}

	x := &Exif{}
	subIFD := 0

	r.entries(ifd, func(e ifdEntry) {
		switch e.tag {
		case tagOrientation:
			x.Orientation = r.integer(e)
		case tagImageWidth:
			x.Width = r.integer(e)
		case tagImageLength:
			x.Height = r.integer(e)
		case tagExifIFDPointer:
			subIFD = r.integer(e)
		}

		if e.typ != typeASCII {
			return
		}

		switch e.tag {
		case tagMake:
			x.Make = r.string(e.value, e.count)
		case tagModel:
			x.Model = r.string(e.value, e.count)
		case tagSoftware:
			x.Software = r.string(e.value, e.count)
		case tagDateTime:
			x.DateTime = r.string(e.value, e.count)
		case tagArtist:
			x.Artist = r.string(e.value, e.count)
		case tagCopyright:
			x.Copyright = r.string(e.value, e.count)
		}
	})

	// A self-referencing pointer would revisit IFD0.
	if subIFD > 0 && subIFD != ifd {
		r.entries(subIFD, func(e ifdEntry) {
			switch e.tag {
			case tagExposureTime:
				x.ExposureTime = r.rational(e.value)
			case tagFNumber:
				x.FNumber = r.rational(e.value)
			case tagFocalLength:
				x.FocalLength = r.rational(e.value)
			case tagISOSpeedRatings:
				x.ISOSpeed = r.integer(e)
			case tagDateTimeOriginal:
				if e.typ == typeASCII {
					x.DateTimeOriginal = r.string(e.value, e.count)
				}
			}
		})
	}

	return x, nil
}
