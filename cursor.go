package pngn

import (
	"encoding/binary"
	"fmt"
)

// cursor is a bounds-checked reader over an input buffer.
// Every read advances pos; a read that would cross the end of data fails
// with ErrTruncatedInput and leaves pos unchanged.
type cursor struct {
	data []byte // Input buffer.
	pos  int    // Current read offset, never greater than len(data).
}

// newCursor returns a cursor positioned at offset.
// An offset beyond the buffer is reported as truncated input.
func newCursor(data []byte, offset int) (*cursor, error) {
	if offset > len(data) {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrTruncatedInput, len(data), offset)
	}

	return &cursor{data: data, pos: offset}, nil
}

// remaining returns the number of unread bytes.
func (c *cursor) remaining() int {
	return len(c.data) - c.pos
}

// need checks that n more bytes can be read.
func (c *cursor) need(n int) error {
	if n < 0 || n > c.remaining() {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedInput, n, c.pos, c.remaining())
	}

	return nil
}

// skip advances the cursor by n bytes.
func (c *cursor) skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}

	c.pos += n

	return nil
}

// next returns the next n bytes as a sub-slice of the input and advances past them.
// The returned slice aliases the input; callers that keep it must copy.
func (c *cursor) next(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}

	b := c.data[c.pos : c.pos+n]
	c.pos += n

	return b, nil
}

// uint8 reads one byte.
func (c *cursor) uint8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}

	v := c.data[c.pos]
	c.pos++

	return v, nil
}

// uint16 reads a big-endian 16-bit integer.
func (c *cursor) uint16() (uint16, error) {
	b, err := c.next(2)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint16(b), nil
}

// uint32 reads a big-endian 32-bit integer.
func (c *cursor) uint32() (uint32, error) {
	b, err := c.next(4)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint32(b), nil
}
