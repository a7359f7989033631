// Package bcn compresses RGBA pixel buffers into the BC1, BC2 and BC3
// (DXT1/DXT3/DXT5) block formats: each 4x4 pixel block becomes 8 or 16
// bytes. Decompression is handled elsewhere (github.com/mauserzjeh/dxt).
package bcn

import (
	"errors"
	"fmt"
	"image/color"
)

// Format selects a block compression variant.
type Format int

const (
	// BC1 packs only a color block; 8 bytes per 4x4 block.
	BC1 Format = iota
	// BC2 adds an explicit 4-bit alpha block; 16 bytes per 4x4 block.
	BC2
	// BC3 adds an interpolated alpha block; 16 bytes per 4x4 block.
	BC3
)

func (f Format) String() string {
	switch f {
	case BC1:
		return "bc1"
	case BC2:
		return "bc2"
	case BC3:
		return "bc3"
	}
	return fmt.Sprintf("bcn(%d)", int(f))
}

// BlockSize returns the compressed size of one 4x4 block.
func (f Format) BlockSize() int {
	if f == BC1 {
		return 8
	}
	return 16
}

// CompressedSize returns the payload size for a width x height image:
// partial blocks at the edges still occupy a whole block.
func (f Format) CompressedSize(width, height int) int {
	blocksAcross := (width + 3) / 4
	blocksDown := (height + 3) / 4
	return blocksAcross * blocksDown * f.BlockSize()
}

// Algorithm selects how color endpoints are fitted per block.
type Algorithm int

const (
	// ClusterFit projects the block onto its principal axis and uses the
	// extreme projections as endpoints. The default.
	ClusterFit Algorithm = iota
	// RangeFit uses the per-channel bounding box corners. Fastest, worst
	// quality.
	RangeFit
	// IterativeClusterFit refines the cluster fit endpoints with a few
	// least-squares rounds.
	IterativeClusterFit
)

func (a Algorithm) String() string {
	switch a {
	case ClusterFit:
		return "cluster-fit"
	case RangeFit:
		return "range-fit"
	case IterativeClusterFit:
		return "iterative-cluster-fit"
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// Params tune the compressor. The zero value is a sane default.
type Params struct {
	Algorithm Algorithm
	// WeighColourByAlpha weights each pixel's contribution to the endpoint
	// fit by its alpha, so transparent texels stop skewing the palette.
	WeighColourByAlpha bool
}

// ErrBufferShape is returned when the input buffer is not width*height*4
// bytes.
var ErrBufferShape = errors.New("bcn: buffer does not match width*height*4")

// Compress encodes rgba (tightly packed, 4 bytes per pixel, row-major) into
// format f. The output length is exactly f.CompressedSize(width, height).
func Compress(f Format, rgba []byte, width, height int, p Params) ([]byte, error) {
	if width <= 0 || height <= 0 || len(rgba) != width*height*4 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrBufferShape, len(rgba), width, height)
	}
	switch f {
	case BC1, BC2, BC3:
	default:
		return nil, fmt.Errorf("bcn: unknown format %d", int(f))
	}

	out := make([]byte, 0, f.CompressedSize(width, height))
	for by := 0; by < height; by += 4 {
		for bx := 0; bx < width; bx += 4 {
			px := extractBlock(rgba, width, height, bx, by)
			switch f {
			case BC1:
				out = append(out, compressColorBlock(px, p)...)
			case BC2:
				out = append(out, packExplicitAlpha(px)...)
				out = append(out, compressColorBlock(px, p)...)
			case BC3:
				out = append(out, compressInterpolatedAlpha(px)...)
				out = append(out, compressColorBlock(px, p)...)
			}
		}
	}
	return out, nil
}

// extractBlock gathers the 4x4 block at (bx, by). Coordinates are clamped at
// the image edge, so partial blocks repeat their border pixels instead of
// dragging the endpoint fit toward black.
func extractBlock(rgba []byte, width, height, bx, by int) [16]color.RGBA {
	var px [16]color.RGBA
	i := 0
	for dy := 0; dy < 4; dy++ {
		y := min(by+dy, height-1)
		for dx := 0; dx < 4; dx++ {
			x := min(bx+dx, width-1)
			off := (y*width + x) * 4
			px[i] = color.RGBA{R: rgba[off], G: rgba[off+1], B: rgba[off+2], A: rgba[off+3]}
			i++
		}
	}
	return px
}
