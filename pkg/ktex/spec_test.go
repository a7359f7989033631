package ktex

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/require"
)

func specFields(s Specification) []struct {
	max   uint32
	shift uint
} {
	return []struct {
		max   uint32
		shift uint
	}{
		{s.MaxPlatform, s.ShiftPlatform},
		{s.MaxPixelFormat, s.ShiftPixelFormat},
		{s.MaxTextureType, s.ShiftTextureType},
		{s.MaxMipmapCount, s.ShiftMipmapCount},
		{s.MaxFlag, s.ShiftFlag},
		{s.MaxFill, s.ShiftFill},
	}
}

func TestSpecificationFieldsFitAndDoNotOverlap(t *testing.T) {
	for name, spec := range map[string]Specification{"pre": PreCaves, "post": PostCaves} {
		var occupied uint32
		for _, f := range specFields(spec) {
			width := bits.Len32(f.max)
			require.Equal(t, f.max, uint32(1)<<width-1, "%s: max must be 2^width-1", name)
			require.LessOrEqual(t, width+int(f.shift), 32, "%s: field exceeds 32 bits", name)

			mask := f.max << f.shift
			require.Zero(t, occupied&mask, "%s: field at shift %d overlaps", name, f.shift)
			occupied |= mask
		}
	}
}

func TestPostCavesWidensPreCaves(t *testing.T) {
	require.Equal(t, uint32(31), PostCaves.MaxMipmapCount)
	require.Equal(t, uint32(15), PreCaves.MaxMipmapCount)
	require.Greater(t, PreCaves.MaxFill, PostCaves.MaxFill)
}

func TestDetectSpecification(t *testing.T) {
	// Bits 14-31 all set means legacy layout.
	require.Equal(t, PreCaves, detectSpecification(0xffffc000))
	require.Equal(t, PreCaves, detectSpecification(0xffffffff))

	require.Equal(t, PostCaves, detectSpecification(0))
	require.Equal(t, PostCaves, detectSpecification(0xffffc000&^(1<<20)))
	require.Equal(t, PostCaves, detectSpecification(0x00003fff))
}

func TestDetectSpecificationKnownCollision(t *testing.T) {
	// A post-caves header with a saturated flag and fill whose mipmap count
	// has bits 1-4 set saturates the legacy fill span and is misread as
	// pre-caves. This is the accepted false positive, so it must decode
	// cleanly under the legacy layout rather than fail.
	h := Header{
		Spec:        PostCaves,
		Platform:    PlatformDefault,
		PixelFormat: PixelFormatBC3,
		TextureType: TextureType2D,
		MipmapCount: 30,
		Flag:        uint8(PostCaves.MaxFlag),
		Fill:        PostCaves.MaxFill,
	}
	word, err := h.Pack()
	require.NoError(t, err)

	decoded, err := DecodeHeader(word)
	require.NoError(t, err)
	require.Equal(t, PreCaves, decoded.Spec)
	// Under the legacy layout the same bits read back as different fields.
	require.Equal(t, PixelFormatRGBA, decoded.PixelFormat)
	require.Equal(t, PreCaves.MaxFill, decoded.Fill)
}
