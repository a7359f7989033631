package ktex

import (
	"fmt"
	"math"

	"github.com/mauserzjeh/dxt"
	"golang.org/x/sync/errgroup"

	"github.com/dsmodtools/ktex/internal/pixel"
	"github.com/dsmodtools/ktex/pkg/bcn"
)

// Mipmap is one resolution tier of a texture. Data holds the payload exactly
// as stored in the container: block-compressed for the BC formats, raw pixel
// bytes otherwise, rows in on-disk (bottom-up) order for the BC formats.
type Mipmap struct {
	Width    uint16
	Height   uint16
	Pitch    uint16
	DataSize uint32
	Data     []byte
}

// bcFormat maps the container's block-compressed pixel formats onto the
// compressor's.
func bcFormat(format PixelFormat) (bcn.Format, bool) {
	switch format {
	case PixelFormatBC1:
		return bcn.BC1, true
	case PixelFormatBC2:
		return bcn.BC2, true
	case PixelFormatBC3:
		return bcn.BC3, true
	}
	return 0, false
}

// Decompress expands the mipmap payload into a straight-alpha RGBA buffer in
// conventional top-down row order.
//
// BC payloads are block-decompressed and flipped out of on-disk row order,
// undoing premultiplication when premultiplied says the content carries it.
// RGBA payloads are returned unchanged: that format is stored top-down and
// straight by convention. RGB payloads gain an opaque alpha byte per pixel.
func (m *Mipmap) Decompress(format PixelFormat, premultiplied bool) ([]byte, error) {
	width := int(m.Width)
	height := int(m.Height)

	switch format {
	case PixelFormatBC1, PixelFormatBC2, PixelFormatBC3:
		bf, _ := bcFormat(format)
		if want := bf.CompressedSize(width, height); len(m.Data) < want {
			return nil, fmt.Errorf("%s mipmap %dx%d has %d payload bytes, need %d: %w",
				format, width, height, len(m.Data), want, ErrTruncatedData)
		}

		var raw []byte
		var err error
		switch format {
		case PixelFormatBC1:
			raw, err = dxt.DecodeDXT1(m.Data, uint(width), uint(height))
		case PixelFormatBC2:
			raw, err = dxt.DecodeDXT3(m.Data, uint(width), uint(height))
		default:
			raw, err = dxt.DecodeDXT5(m.Data, uint(width), uint(height))
		}
		if err != nil {
			return nil, fmt.Errorf("decompress %s mipmap: %w", format, err)
		}

		if premultiplied {
			return pixel.FlipVerticalUnpremultiply(raw, width, height), nil
		}
		return pixel.FlipVertical(raw, width, height), nil

	case PixelFormatRGBA:
		return m.Data, nil

	case PixelFormatRGB:
		if len(m.Data)%3 != 0 {
			return nil, fmt.Errorf("rgb payload of %d bytes is not divisible by 3: %w", len(m.Data), ErrInvalidBufferShape)
		}
		out := make([]byte, 0, len(m.Data)/3*4)
		for i := 0; i < len(m.Data); i += 3 {
			out = append(out, m.Data[i], m.Data[i+1], m.Data[i+2], 255)
		}
		return out, nil
	}

	return nil, fmt.Errorf("%s: %w", format, ErrUnsupportedPixelFormat)
}

// CompressMipmap builds a single mipmap level from a pixel buffer whose rows
// are already in on-disk order.
//
// For the BC formats buf must be width*height*4 RGBA bytes; it is
// premultiplied first when premultiply is set, then block-compressed with
// params. For RGBA and RGB the buffer is stored verbatim; RGB expects the
// caller to have already reduced to 3 bytes per pixel, this codec never
// strips alpha itself.
func CompressMipmap(format PixelFormat, width, height int, buf []byte, premultiply bool, params bcn.Params) (*Mipmap, error) {
	if width <= 0 || height <= 0 || width > math.MaxUint16 || height > math.MaxUint16 {
		return nil, fmt.Errorf("mipmap dimensions %dx%d out of range: %w", width, height, ErrInvalidBufferShape)
	}

	var pitch int
	var data []byte
	switch format {
	case PixelFormatBC1, PixelFormatBC2, PixelFormatBC3:
		bf, _ := bcFormat(format)
		pitch = (width + 3) / 4 * bf.BlockSize()

		if len(buf) != width*height*4 {
			return nil, fmt.Errorf("%dx%d rgba buffer has %d bytes: %w", width, height, len(buf), ErrInvalidBufferShape)
		}
		if premultiply {
			buf = pixel.Premultiply(buf)
		}
		var err error
		data, err = bcn.Compress(bf, buf, width, height, params)
		if err != nil {
			return nil, fmt.Errorf("compress %s mipmap: %w", format, err)
		}

	case PixelFormatRGBA:
		pitch = width * 4
		data = buf

	case PixelFormatRGB:
		pitch = width * 3
		data = buf

	default:
		return nil, fmt.Errorf("%s: %w", format, ErrUnsupportedPixelFormat)
	}

	if pitch > math.MaxUint16 {
		return nil, fmt.Errorf("pitch %d overflows the metadata record: %w", pitch, ErrMalformedHeader)
	}

	return &Mipmap{
		Width:    uint16(width),
		Height:   uint16(height),
		Pitch:    uint16(pitch),
		DataSize: uint32(len(data)),
		Data:     data,
	}, nil
}

// generateMipmaps derives levels 2..maxCount from a base image already
// flipped into on-disk row order. Target dimensions are precomputed by
// halving the previous target (never below 1), stopping once a 1x1 level is
// emitted; each level is then independently resampled from the base image
// and compressed. Levels are generated in parallel and written back into an
// index-addressed slice, so the output keeps the precomputed
// descending-size order.
func generateMipmaps(maxCount uint32, base []byte, width, height int, format PixelFormat, premultiply bool, params bcn.Params) ([]Mipmap, error) {
	type size struct{ w, h int }
	var targets []size
	w, h := width, height
	for level := uint32(2); level <= maxCount; level++ {
		w = max(1, w/2)
		h = max(1, h/2)
		targets = append(targets, size{w, h})
		if w <= 1 && h <= 1 {
			break
		}
	}

	mipmaps := make([]Mipmap, len(targets))
	var g errgroup.Group
	g.SetLimit(4)
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			resized := pixel.Resize(base, width, height, t.w, t.h)
			m, err := CompressMipmap(format, t.w, t.h, resized, premultiply, params)
			if err != nil {
				return fmt.Errorf("mipmap level %d (%dx%d): %w", i+1, t.w, t.h, err)
			}
			mipmaps[i] = *m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mipmaps, nil
}
