package ktex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorReads(t *testing.T) {
	c := newCursor([]byte{'K', 'T', 'E', 'X', 0x34, 0x12, 0x78, 0x56, 0x34, 0x12, 0xff})

	text, err := c.text(4)
	require.NoError(t, err)
	require.Equal(t, "KTEX", text)

	u16, err := c.uint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), u16)

	u32, err := c.uint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0x12345678), u32)

	require.Equal(t, 1, c.remaining())

	u8, err := c.uint8()
	require.NoError(t, err)
	require.Equal(t, uint8(0xff), u8)
	require.Zero(t, c.remaining())
}

func TestCursorTruncation(t *testing.T) {
	c := newCursor([]byte{1, 2, 3})

	_, err := c.uint32()
	require.ErrorIs(t, err, ErrTruncatedData)

	// The failed read consumes nothing.
	b, err := c.bytes(3)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, b)

	_, err = c.uint8()
	require.ErrorIs(t, err, ErrTruncatedData)
}

func TestCursorNegativeLength(t *testing.T) {
	c := newCursor([]byte{1, 2, 3})
	_, err := c.bytes(-1)
	require.ErrorIs(t, err, ErrTruncatedData)
}
