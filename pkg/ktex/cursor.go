package ktex

import (
	"encoding/binary"
	"fmt"
)

// cursor is a position-tracked reader over an in-memory buffer. All
// multi-byte reads are little-endian. Reads past the end return
// ErrTruncatedData and never slice out of bounds.
type cursor struct {
	buf []byte
	off int
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, fmt.Errorf("need %d bytes at offset %d, have %d: %w", n, c.off, c.remaining(), ErrTruncatedData)
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) text(n int) (string, error) {
	b, err := c.bytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *cursor) uint8() (uint8, error) {
	b, err := c.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) uint16() (uint16, error) {
	b, err := c.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) uint32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}
