// Package ktex encodes and decodes the KTEX compressed-texture container
// used by the game engine: a packed bitfield header, a mipmap metadata
// table, the per-level pixel payloads and an optional trailing
// premultiplied-alpha byte.
package ktex

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/dsmodtools/ktex/internal/pixel"
	"github.com/dsmodtools/ktex/pkg/bcn"
)

// Magic is the container's 4-byte marker.
const Magic = "KTEX"

// metadataSize is the fixed size of one mipmap metadata record:
// width, height and pitch as u16 plus the payload size as u32.
const metadataSize = 10

// Container is a fully parsed or fully assembled texture file. Mipmaps[0]
// is the base level; order is significant and preserved. Bytes holds the
// raw buffer the container was parsed from or serialized to, kept for
// diagnostics.
type Container struct {
	Header  Header
	Mipmaps []Mipmap
	Bytes   []byte
}

// Decode parses a KTEX container. The whole buffer is parsed in memory; the
// returned container aliases data rather than copying payloads.
func Decode(data []byte) (*Container, error) {
	cur := newCursor(data)

	magic, err := cur.text(len(Magic))
	if err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("marker %q: %w", magic, ErrFormatMismatch)
	}

	word, err := cur.uint32()
	if err != nil {
		return nil, fmt.Errorf("read header word: %w", err)
	}
	header, err := DecodeHeader(word)
	if err != nil {
		return nil, err
	}

	// The full metadata table precedes every payload.
	mipmaps := make([]Mipmap, header.MipmapCount)
	for i := range mipmaps {
		if mipmaps[i].Width, err = cur.uint16(); err != nil {
			return nil, fmt.Errorf("mipmap %d metadata: %w", i, err)
		}
		if mipmaps[i].Height, err = cur.uint16(); err != nil {
			return nil, fmt.Errorf("mipmap %d metadata: %w", i, err)
		}
		if mipmaps[i].Pitch, err = cur.uint16(); err != nil {
			return nil, fmt.Errorf("mipmap %d metadata: %w", i, err)
		}
		if mipmaps[i].DataSize, err = cur.uint32(); err != nil {
			return nil, fmt.Errorf("mipmap %d metadata: %w", i, err)
		}
	}
	for i := range mipmaps {
		if mipmaps[i].Data, err = cur.bytes(int(mipmaps[i].DataSize)); err != nil {
			return nil, fmt.Errorf("mipmap %d payload: %w", i, err)
		}
	}

	// A single leftover byte is the definitive premultiply flag; any other
	// remainder length means the writer did not emit one and the tri-state
	// stays unspecified.
	if cur.remaining() == 1 {
		b, err := cur.uint8()
		if err != nil {
			return nil, err
		}
		if b == 1 {
			header.Alpha = AlphaPremultiplied
		} else {
			header.Alpha = AlphaStraight
		}
	}

	return &Container{Header: header, Mipmaps: mipmaps, Bytes: data}, nil
}

// Image decompresses the base mipmap into a straight-alpha, top-down
// image.RGBA.
func (c *Container) Image() (*image.RGBA, error) {
	if len(c.Mipmaps) == 0 {
		return nil, fmt.Errorf("container has no mipmaps: %w", ErrTruncatedData)
	}
	m := &c.Mipmaps[0]

	premultiplied := c.Header.Alpha.Premultiplied(c.Header.PixelFormat)
	buf, err := m.Decompress(c.Header.PixelFormat, premultiplied)
	if err != nil {
		return nil, err
	}

	width := int(m.Width)
	height := int(m.Height)
	if len(buf) != width*height*4 {
		return nil, fmt.Errorf("decompressed %d bytes for %dx%d: %w", len(buf), width, height, ErrInvalidBufferShape)
	}
	return &image.RGBA{Pix: buf, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}, nil
}

// EncodeOptions configure Encode. Use DefaultEncodeOptions as the starting
// point; the zero value selects BC1 and no mipmaps, which is rarely what a
// caller wants.
type EncodeOptions struct {
	Platform    Platform
	PixelFormat PixelFormat
	TextureType TextureType
	// Alpha requests premultiplication. Left unspecified, it is inferred
	// from the pixel format; regardless of the request, formats without an
	// alpha channel are never premultiplied.
	Alpha           AlphaMode
	GenerateMipmaps bool
	Compression     bcn.Params
}

// DefaultEncodeOptions mirrors the defaults of freshly authored files:
// BC3, 2D, premultiply inferred from the format, full mipmap chain.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Platform:        PlatformDefault,
		PixelFormat:     PixelFormatBC3,
		TextureType:     TextureType2D,
		Alpha:           AlphaUnspecified,
		GenerateMipmaps: true,
		Compression:     bcn.Params{Algorithm: bcn.ClusterFit},
	}
}

// Encode compresses a top-down straight-alpha RGBA buffer into container
// bytes.
func Encode(width, height int, rgba []byte, opts EncodeOptions) ([]byte, error) {
	c, err := EncodeContainer(width, height, rgba, opts)
	if err != nil {
		return nil, err
	}
	return c.Bytes, nil
}

// EncodeContainer is Encode returning the assembled container alongside its
// serialized bytes.
func EncodeContainer(width, height int, rgba []byte, opts EncodeOptions) (*Container, error) {
	if width <= 0 || height <= 0 || width > math.MaxUint16 || height > math.MaxUint16 {
		return nil, fmt.Errorf("image dimensions %dx%d out of range: %w", width, height, ErrInvalidBufferShape)
	}
	if len(rgba) != width*height*4 {
		return nil, fmt.Errorf("%dx%d image needs %d bytes, got %d: %w", width, height, width*height*4, len(rgba), ErrInvalidBufferShape)
	}

	header := NewHeader(opts.Platform, opts.PixelFormat, opts.TextureType, opts.Alpha)
	premultiply := opts.Alpha.Premultiplied(opts.PixelFormat) && opts.PixelFormat.HasAlpha()
	// The trailing byte makes the choice definitive, so the header reflects
	// what Decode would read back.
	if premultiply {
		header.Alpha = AlphaPremultiplied
	} else {
		header.Alpha = AlphaStraight
	}

	// The container stores rows bottom-up.
	flipped := pixel.FlipVertical(rgba, width, height)

	base, err := CompressMipmap(opts.PixelFormat, width, height, flipped, premultiply, opts.Compression)
	if err != nil {
		return nil, err
	}
	mipmaps := []Mipmap{*base}

	if opts.GenerateMipmaps {
		chain, err := generateMipmaps(header.Spec.MaxMipmapCount, flipped, width, height, opts.PixelFormat, premultiply, opts.Compression)
		if err != nil {
			return nil, err
		}
		mipmaps = append(mipmaps, chain...)
	}
	header.MipmapCount = uint8(len(mipmaps))

	word, err := header.Pack()
	if err != nil {
		return nil, err
	}

	size := len(Magic) + 4 + len(mipmaps)*metadataSize + 1
	for i := range mipmaps {
		size += len(mipmaps[i].Data)
	}

	out := make([]byte, 0, size)
	out = append(out, Magic...)
	out = binary.LittleEndian.AppendUint32(out, word)
	for i := range mipmaps {
		out = binary.LittleEndian.AppendUint16(out, mipmaps[i].Width)
		out = binary.LittleEndian.AppendUint16(out, mipmaps[i].Height)
		out = binary.LittleEndian.AppendUint16(out, mipmaps[i].Pitch)
		out = binary.LittleEndian.AppendUint32(out, mipmaps[i].DataSize)
	}
	for i := range mipmaps {
		out = append(out, mipmaps[i].Data...)
	}
	if premultiply {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}

	return &Container{Header: header, Mipmaps: mipmaps, Bytes: out}, nil
}
