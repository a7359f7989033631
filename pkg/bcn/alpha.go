package bcn

import (
	"image/color"
	"math"
)

// compressInterpolatedAlpha packs the BC3 alpha record: two endpoint alphas
// followed by sixteen 3-bit indices into the interpolated palette.
func compressInterpolatedAlpha(px [16]color.RGBA) []byte {
	minA, maxA := uint8(255), uint8(0)
	for _, p := range px {
		minA = min(minA, p.A)
		maxA = max(maxA, p.A)
	}

	a0, a1 := maxA, minA

	var palette [8]uint8
	palette[0], palette[1] = a0, a1
	if a0 > a1 {
		// 8-value mode: six interpolants between the endpoints.
		for i := 1; i <= 6; i++ {
			n := uint32((7-i)*int(a0) + i*int(a1))
			palette[1+i] = uint8((n + 3) / 7)
		}
	} else {
		// 6-value mode plus explicit 0 and 255.
		for i := 1; i <= 4; i++ {
			n := uint32((5-i)*int(a0) + i*int(a1))
			palette[1+i] = uint8((n + 2) / 5)
		}
		palette[6] = 0
		palette[7] = 255
	}

	var idx [16]uint8
	for i, p := range px {
		best := uint8(0)
		bestDist := math.MaxInt32
		for j := 0; j < 8; j++ {
			d := int(p.A) - int(palette[j])
			d *= d
			if d < bestDist {
				bestDist = d
				best = uint8(j)
			}
		}
		idx[i] = best
	}

	// Sixteen 3-bit indices packed LSB-first across six bytes.
	var packed [6]byte
	bit := 0
	for i := 0; i < 16; i++ {
		v := uint(idx[i]) & 0x7
		bi := bit / 8
		sh := bit % 8
		packed[bi] |= byte(v << sh)
		if sh > 5 && bi+1 < 6 {
			packed[bi+1] |= byte(v >> (8 - sh))
		}
		bit += 3
	}

	out := make([]byte, 8)
	out[0], out[1] = a0, a1
	copy(out[2:], packed[:])
	return out
}

// packExplicitAlpha packs the BC2 alpha record: sixteen 4-bit alphas,
// pixel order, low nibble first.
func packExplicitAlpha(px [16]color.RGBA) []byte {
	out := make([]byte, 8)
	for i, p := range px {
		out[i/2] |= (p.A >> 4) << (4 * uint(i%2))
	}
	return out
}
