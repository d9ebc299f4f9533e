package pngn

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// inflaterPool holds zlib readers for reuse across decodes.
var inflaterPool sync.Pool

// getInflater returns a zlib reader over r, reusing a pooled one if possible.
func getInflater(r io.Reader) (io.ReadCloser, error) {
	if zr, ok := inflaterPool.Get().(io.ReadCloser); ok {
		if err := zr.(zlib.Resetter).Reset(r, nil); err != nil {
			inflaterPool.Put(zr)

			return nil, err
		}

		return zr, nil
	}

	return zlib.NewReader(r)
}

// putInflater returns a zlib reader to the pool.
func putInflater(zr io.ReadCloser) {
	_ = zr.Close()
	inflaterPool.Put(zr)
}

// inflate decompresses a zlib stream, reading at most limit+1 bytes of output.
// A truncated stream, a bad Adler-32 checksum or output beyond limit are
// returned as warnings together with whatever output was produced.
func inflate(src []byte, limit int) ([]byte, []Warning, error) {
	if len(src) == 0 {
		return nil, nil, nil
	}

	zr, err := getInflater(bytes.NewReader(src))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCorruptImage, err)
	}
	defer putInflater(zr)

	var buf bytes.Buffer
	buf.Grow(min(limit+1, max(len(src)*4, 4096)))

	var warnings []Warning
	_, err = buf.ReadFrom(io.LimitReader(zr, int64(limit)+1))

	switch {
	case err == nil:
	case errors.Is(err, zlib.ErrChecksum):
		warnings = append(warnings, Warning{Kind: WarnChecksum, Row: -1, Msg: "zlib Adler-32 mismatch"})
	case errors.Is(err, io.ErrUnexpectedEOF):
		warnings = append(warnings, Warning{Kind: WarnShortStream, Row: -1, Msg: "compressed stream ends early"})
	default:
		return nil, nil, fmt.Errorf("%w: %w", ErrCorruptImage, err)
	}

	out := buf.Bytes()
	if len(out) > limit {
		warnings = append(warnings, Warning{Kind: WarnTrailingData, Row: -1, Msg: fmt.Sprintf("more than %d decompressed bytes", limit)})
		out = out[:limit]
	}

	return out, warnings, nil
}
