package ktex

// Specification describes how the six header fields are packed into the
// 32-bit header word. Two layouts exist in the wild: files written before
// the "caves" update of the engine and files written after it. Each field
// is stored as (value << Shift) and extracted as (word >> Shift) & Max,
// where Max is 2^width - 1 for the field's bit width.
type Specification struct {
	MaxPlatform    uint32
	MaxPixelFormat uint32
	MaxTextureType uint32
	MaxMipmapCount uint32
	MaxFlag        uint32
	MaxFill        uint32

	ShiftPlatform    uint
	ShiftPixelFormat uint
	ShiftTextureType uint
	ShiftMipmapCount uint
	ShiftFlag        uint
	ShiftFill        uint
}

// PreCaves is the legacy layout: 3-bit platform, pixel format and texture
// type, 4-bit mipmap count, 1-bit flag and an 18-bit fill.
var PreCaves = Specification{
	MaxPlatform:    7,
	MaxPixelFormat: 7,
	MaxTextureType: 7,
	MaxMipmapCount: 15,
	MaxFlag:        1,
	MaxFill:        262143,

	ShiftPlatform:    0,
	ShiftPixelFormat: 3,
	ShiftTextureType: 6,
	ShiftMipmapCount: 9,
	ShiftFlag:        13,
	ShiftFill:        14,
}

// PostCaves widens every field and shrinks the fill to 12 bits. Freshly
// authored files use this layout.
var PostCaves = Specification{
	MaxPlatform:    15,
	MaxPixelFormat: 31,
	MaxTextureType: 15,
	MaxMipmapCount: 31,
	MaxFlag:        3,
	MaxFill:        4095,

	ShiftPlatform:    0,
	ShiftPixelFormat: 4,
	ShiftTextureType: 9,
	ShiftMipmapCount: 13,
	ShiftFlag:        18,
	ShiftFill:        20,
}

// preCavesFillShift and preCavesFillMask cover the legacy 18-bit fill span
// (bits 14-31) used by detectSpecification.
const (
	preCavesFillShift = 14
	preCavesFillMask  = 0x3ffff
)

// detectSpecification guesses which layout produced word by checking whether
// the legacy fill span (bits 14-31) is fully saturated, which it always is on
// pre-caves files.
//
// The check has a known false positive: a post-caves word whose flag and fill
// fields are saturated and whose mipmap count has bits 1-4 set also saturates
// that span and is read as pre-caves. Such a word implies at least 30 mipmap
// levels (a base image around 73728x73728), which is accepted as unlikely
// enough to live with.
func detectSpecification(word uint32) Specification {
	if word>>preCavesFillShift&preCavesFillMask == preCavesFillMask {
		return PreCaves
	}
	return PostCaves
}
