package ktex

import (
	"fmt"
	"math"
)

// Platform identifies the target platform a texture was authored for.
type Platform uint32

const (
	PlatformDefault Platform = 0
	PlatformPS3     Platform = 10
	PlatformXbox360 Platform = 11
	PlatformPC      Platform = 12
)

func (p Platform) String() string {
	switch p {
	case PlatformDefault:
		return "default"
	case PlatformPS3:
		return "ps3"
	case PlatformXbox360:
		return "xbox360"
	case PlatformPC:
		return "pc"
	}
	return fmt.Sprintf("platform(%d)", uint32(p))
}

// PixelFormat identifies how a mipmap payload is encoded.
type PixelFormat uint32

const (
	PixelFormatBC1     PixelFormat = 0 // DXT1
	PixelFormatBC2     PixelFormat = 1 // DXT3
	PixelFormatBC3     PixelFormat = 2 // DXT5
	PixelFormatRGBA    PixelFormat = 4
	PixelFormatRGB     PixelFormat = 5
	PixelFormatUnknown PixelFormat = 7
)

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatBC1:
		return "bc1"
	case PixelFormatBC2:
		return "bc2"
	case PixelFormatBC3:
		return "bc3"
	case PixelFormatRGBA:
		return "rgba"
	case PixelFormatRGB:
		return "rgb"
	case PixelFormatUnknown:
		return "unknown"
	}
	return fmt.Sprintf("pixelformat(%d)", uint32(f))
}

// HasAlpha reports whether the format carries an alpha channel.
func (f PixelFormat) HasAlpha() bool {
	switch f {
	case PixelFormatRGBA, PixelFormatBC2, PixelFormatBC3:
		return true
	}
	return false
}

// TextureType identifies the texture layout dimensionality.
type TextureType uint32

const (
	TextureType1D         TextureType = 0
	TextureType2D         TextureType = 1
	TextureType3D         TextureType = 2
	TextureTypeCubeMapped TextureType = 3
)

func (t TextureType) String() string {
	switch t {
	case TextureType1D:
		return "1d"
	case TextureType2D:
		return "2d"
	case TextureType3D:
		return "3d"
	case TextureTypeCubeMapped:
		return "cubemapped"
	}
	return fmt.Sprintf("texturetype(%d)", uint32(t))
}

// AlphaMode is the tri-state premultiplied-alpha indicator. It is not stored
// in the header word; a container may carry it in a trailing byte, and when
// it does not, the value stays AlphaUnspecified so callers can tell "the file
// didn't say" apart from "the file said straight".
type AlphaMode uint8

const (
	AlphaUnspecified AlphaMode = iota
	AlphaStraight
	AlphaPremultiplied
)

func (m AlphaMode) String() string {
	switch m {
	case AlphaStraight:
		return "straight"
	case AlphaPremultiplied:
		return "premultiplied"
	}
	return "unspecified"
}

// Premultiplied resolves the tri-state against a pixel format: an
// unspecified mode is inferred from whether the format has an alpha channel.
func (m AlphaMode) Premultiplied(format PixelFormat) bool {
	switch m {
	case AlphaPremultiplied:
		return true
	case AlphaStraight:
		return false
	}
	return format.HasAlpha()
}

// Header is the decoded form of the 32-bit packed header word plus the
// premultiply indicator. Flag and Fill are reserved payload carried verbatim
// so a decoded header re-encodes to the identical word.
type Header struct {
	Spec        Specification
	Platform    Platform
	PixelFormat PixelFormat
	TextureType TextureType
	MipmapCount uint8
	Flag        uint8
	Fill        uint32
	Alpha       AlphaMode
}

// NewHeader builds a header for a freshly authored file: post-caves layout
// with the reserved flag and fill fields left saturated, no mipmaps yet.
func NewHeader(platform Platform, format PixelFormat, texture TextureType, alpha AlphaMode) Header {
	return Header{
		Spec:        PostCaves,
		Platform:    platform,
		PixelFormat: format,
		TextureType: texture,
		MipmapCount: 0,
		Flag:        uint8(PostCaves.MaxFlag),
		Fill:        PostCaves.MaxFill,
		Alpha:       alpha,
	}
}

// DefaultHeader is the header the encode pipeline starts from when the
// caller overrides nothing: BC3, 2D, premultiplied.
func DefaultHeader() Header {
	return NewHeader(PlatformDefault, PixelFormatBC3, TextureType2D, AlphaPremultiplied)
}

// DecodeHeader unpacks a header word. The layout is chosen by
// detectSpecification; a field integer with no matching enumerant is a hard
// decode failure. The alpha mode is left unspecified since the word does not
// carry it; Decode overrides it when the container has a trailing byte.
func DecodeHeader(word uint32) (Header, error) {
	spec := detectSpecification(word)

	platform := Platform(word >> spec.ShiftPlatform & spec.MaxPlatform)
	switch platform {
	case PlatformDefault, PlatformPS3, PlatformXbox360, PlatformPC:
	default:
		return Header{}, fmt.Errorf("platform %d: %w", uint32(platform), ErrMalformedHeader)
	}

	format := PixelFormat(word >> spec.ShiftPixelFormat & spec.MaxPixelFormat)
	switch format {
	case PixelFormatBC1, PixelFormatBC2, PixelFormatBC3, PixelFormatRGBA, PixelFormatRGB, PixelFormatUnknown:
	default:
		return Header{}, fmt.Errorf("pixel format %d: %w", uint32(format), ErrMalformedHeader)
	}

	texture := TextureType(word >> spec.ShiftTextureType & spec.MaxTextureType)
	switch texture {
	case TextureType1D, TextureType2D, TextureType3D, TextureTypeCubeMapped:
	default:
		return Header{}, fmt.Errorf("texture type %d: %w", uint32(texture), ErrMalformedHeader)
	}

	return Header{
		Spec:        spec,
		Platform:    platform,
		PixelFormat: format,
		TextureType: texture,
		MipmapCount: uint8(word >> spec.ShiftMipmapCount & spec.MaxMipmapCount),
		Flag:        uint8(word >> spec.ShiftFlag & spec.MaxFlag),
		Fill:        word >> spec.ShiftFill & spec.MaxFill,
		Alpha:       AlphaUnspecified,
	}, nil
}

// Pack packs the header back into its 32-bit word using the header's own
// specification. Values produced by DecodeHeader always fit; the checks are
// for headers built by hand.
func (h Header) Pack() (uint32, error) {
	fields := []struct {
		name  string
		value uint32
		max   uint32
		shift uint
	}{
		{"platform", uint32(h.Platform), h.Spec.MaxPlatform, h.Spec.ShiftPlatform},
		{"pixel format", uint32(h.PixelFormat), h.Spec.MaxPixelFormat, h.Spec.ShiftPixelFormat},
		{"texture type", uint32(h.TextureType), h.Spec.MaxTextureType, h.Spec.ShiftTextureType},
		{"mipmap count", uint32(h.MipmapCount), h.Spec.MaxMipmapCount, h.Spec.ShiftMipmapCount},
		{"flag", uint32(h.Flag), h.Spec.MaxFlag, h.Spec.ShiftFlag},
		{"fill", h.Fill, h.Spec.MaxFill, h.Spec.ShiftFill},
	}

	var word uint64
	for _, f := range fields {
		if f.value > f.max {
			return 0, fmt.Errorf("%s %d exceeds field width: %w", f.name, f.value, ErrMalformedHeader)
		}
		word |= uint64(f.value) << f.shift
	}
	if word > math.MaxUint32 {
		return 0, fmt.Errorf("header word overflows 32 bits: %w", ErrMalformedHeader)
	}
	return uint32(word), nil
}
