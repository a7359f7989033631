package ktex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dsmodtools/ktex/pkg/bcn"
)

func solidRGBA(r, g, b, a uint8, w, h int) []byte {
	buf := make([]byte, w*h*4)
	for i := 0; i < len(buf); i += 4 {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = r, g, b, a
	}
	return buf
}

func TestDecompressRGBExpansion(t *testing.T) {
	m := &Mipmap{Width: 2, Height: 1, Data: []byte{1, 2, 3, 4, 5, 6}}
	out, err := m.Decompress(PixelFormatRGB, false)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 255, 4, 5, 6, 255}, out)
}

func TestDecompressRGBRejectsBadLength(t *testing.T) {
	m := &Mipmap{Width: 2, Height: 1, Data: []byte{1, 2, 3, 4}}
	_, err := m.Decompress(PixelFormatRGB, false)
	require.ErrorIs(t, err, ErrInvalidBufferShape)
}

func TestDecompressRGBAPassthrough(t *testing.T) {
	data := []byte{9, 8, 7, 6, 5, 4, 3, 2}
	m := &Mipmap{Width: 2, Height: 1, Data: data}
	out, err := m.Decompress(PixelFormatRGBA, true)
	require.NoError(t, err)
	// RGBA payloads come back untouched; no flip, no alpha handling.
	require.Equal(t, data, out)
}

func TestDecompressUnknownFormat(t *testing.T) {
	m := &Mipmap{Width: 1, Height: 1, Data: []byte{0}}
	_, err := m.Decompress(PixelFormatUnknown, false)
	require.ErrorIs(t, err, ErrUnsupportedPixelFormat)
}

func TestDecompressTruncatedBCPayload(t *testing.T) {
	m := &Mipmap{Width: 8, Height: 8, Data: make([]byte, 7)}
	_, err := m.Decompress(PixelFormatBC1, false)
	require.ErrorIs(t, err, ErrTruncatedData)
}

func TestCompressPitch(t *testing.T) {
	tests := []struct {
		format PixelFormat
		width  int
		pitch  uint16
	}{
		{PixelFormatBC1, 10, 24}, // ceil(10/4) * 8
		{PixelFormatBC2, 10, 48}, // ceil(10/4) * 16
		{PixelFormatBC3, 4, 16},
		{PixelFormatBC3, 5, 32},
		{PixelFormatRGBA, 10, 40},
		{PixelFormatRGB, 10, 30},
	}
	for _, tt := range tests {
		buf := solidRGBA(1, 2, 3, 255, tt.width, 4)
		m, err := CompressMipmap(tt.format, tt.width, 4, buf, false, bcn.Params{})
		require.NoError(t, err, "%s width %d", tt.format, tt.width)
		require.Equal(t, tt.pitch, m.Pitch, "%s width %d", tt.format, tt.width)
		require.Equal(t, uint32(len(m.Data)), m.DataSize)
	}
}

func TestCompressRejectsBadBCBuffer(t *testing.T) {
	_, err := CompressMipmap(PixelFormatBC1, 4, 4, make([]byte, 10), false, bcn.Params{})
	require.ErrorIs(t, err, ErrInvalidBufferShape)

	_, err = CompressMipmap(PixelFormatBC1, 0, 4, nil, false, bcn.Params{})
	require.ErrorIs(t, err, ErrInvalidBufferShape)

	_, err = CompressMipmap(PixelFormatBC1, 70000, 4, nil, false, bcn.Params{})
	require.ErrorIs(t, err, ErrInvalidBufferShape)
}

func TestCompressUnknownFormat(t *testing.T) {
	_, err := CompressMipmap(PixelFormatUnknown, 4, 4, solidRGBA(0, 0, 0, 0, 4, 4), false, bcn.Params{})
	require.ErrorIs(t, err, ErrUnsupportedPixelFormat)
}

func TestCompressRGBAStoresVerbatim(t *testing.T) {
	buf := solidRGBA(10, 20, 30, 40, 4, 2)
	m, err := CompressMipmap(PixelFormatRGBA, 4, 2, buf, false, bcn.Params{})
	require.NoError(t, err)
	require.Equal(t, buf, m.Data)
	require.Equal(t, uint32(len(buf)), m.DataSize)
}

func TestBlockCompressionRoundTrip(t *testing.T) {
	// Block compression is lossy; a solid color bounds the error to the
	// 565 color quantization and, for BC2, the 4-bit alpha quantization.
	for _, format := range []PixelFormat{PixelFormatBC1, PixelFormatBC2, PixelFormatBC3} {
		buf := solidRGBA(64, 128, 192, 255, 8, 8)
		m, err := CompressMipmap(format, 8, 8, buf, false, bcn.Params{})
		require.NoError(t, err)

		out, err := m.Decompress(format, false)
		require.NoError(t, err)
		require.Len(t, out, len(buf))
		for i := range buf {
			require.InDelta(t, buf[i], out[i], 16, "%s byte %d", format, i)
		}
	}
}

func TestBlockCompressionPremultipliedRoundTrip(t *testing.T) {
	buf := solidRGBA(200, 100, 40, 128, 8, 8)
	m, err := CompressMipmap(PixelFormatBC3, 8, 8, buf, true, bcn.Params{})
	require.NoError(t, err)

	out, err := m.Decompress(PixelFormatBC3, true)
	require.NoError(t, err)
	require.Len(t, out, len(buf))
	// Premultiply then unpremultiply costs up to one alpha-normalized step
	// on top of the block compression error.
	for i := range buf {
		require.InDelta(t, buf[i], out[i], 12, "byte %d", i)
	}
}

func TestGenerateMipmapChain(t *testing.T) {
	base := solidRGBA(90, 90, 90, 255, 256, 256)
	chain, err := generateMipmaps(PostCaves.MaxMipmapCount, base, 256, 256, PixelFormatRGBA, false, bcn.Params{})
	require.NoError(t, err)

	// 128 down to 1x1; with the base level that makes 9 total.
	require.Len(t, chain, 8)
	wantW := 128
	for i, m := range chain {
		require.Equal(t, uint16(wantW), m.Width, "level %d", i+1)
		require.Equal(t, uint16(wantW), m.Height, "level %d", i+1)
		wantW /= 2
	}
}

func TestGenerateMipmapChainNonSquare(t *testing.T) {
	base := solidRGBA(1, 2, 3, 255, 256, 64)
	chain, err := generateMipmaps(PostCaves.MaxMipmapCount, base, 256, 64, PixelFormatRGBA, false, bcn.Params{})
	require.NoError(t, err)

	// Dimensions halve independently and clamp at 1.
	wantW := []uint16{128, 64, 32, 16, 8, 4, 2, 1}
	wantH := []uint16{32, 16, 8, 4, 2, 1, 1, 1}
	require.Len(t, chain, len(wantW))
	for i, m := range chain {
		require.Equal(t, wantW[i], m.Width, "level %d", i+1)
		require.Equal(t, wantH[i], m.Height, "level %d", i+1)
	}
}

func TestGenerateMipmapChainCapped(t *testing.T) {
	base := solidRGBA(0, 0, 0, 255, 256, 256)
	chain, err := generateMipmaps(4, base, 256, 256, PixelFormatRGBA, false, bcn.Params{})
	require.NoError(t, err)
	// Levels 2..4 only.
	require.Len(t, chain, 3)
	require.Equal(t, uint16(32), chain[2].Width)
}
