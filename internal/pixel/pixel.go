// Package pixel holds transforms over tightly packed 8-bit RGBA buffers.
//
// Every function taking width and height requires len(buf) == width*height*4
// and panics otherwise; a mismatch means the caller handed over the wrong
// buffer, which the API boundary is supposed to have rejected already.
package pixel

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

const workers = 4

func assertShape(buf []byte, width, height int) {
	if len(buf) != width*height*4 {
		panic(fmt.Sprintf("pixel: buffer is %d bytes, want %d (%dx%dx4)", len(buf), width*height*4, width, height))
	}
}

// FlipVertical returns a new buffer with the rows of buf reversed
// top-to-bottom.
func FlipVertical(buf []byte, width, height int) []byte {
	assertShape(buf, width, height)

	rowBytes := width * 4
	out := make([]byte, len(buf))
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowBytes
		copy(out[y*rowBytes:(y+1)*rowBytes], buf[src:src+rowBytes])
	}
	return out
}

// FlipVerticalPremultiply flips rows and scales R, G and B by normalized
// alpha, truncating to 8 bits.
func FlipVerticalPremultiply(buf []byte, width, height int) []byte {
	return flipRows(buf, width, height, premultiplyRow)
}

// FlipVerticalUnpremultiply flips rows and divides R, G and B by normalized
// alpha. A pixel with zero alpha becomes (0,0,0,0) instead of dividing by
// zero.
func FlipVerticalUnpremultiply(buf []byte, width, height int) []byte {
	return flipRows(buf, width, height, unpremultiplyRow)
}

// flipRows runs transform over every row in parallel, writing row y of the
// output from row height-1-y of the input. Each band owns a disjoint slice
// of the output, so no synchronization is needed beyond the final Wait.
func flipRows(buf []byte, width, height int, transform func(dst, src []byte)) []byte {
	assertShape(buf, width, height)

	rowBytes := width * 4
	out := make([]byte, len(buf))

	var g errgroup.Group
	g.SetLimit(workers)
	band := (height + workers - 1) / workers
	for start := 0; start < height; start += band {
		start := start
		end := min(start+band, height)
		g.Go(func() error {
			for y := start; y < end; y++ {
				src := (height - 1 - y) * rowBytes
				transform(out[y*rowBytes:(y+1)*rowBytes], buf[src:src+rowBytes])
			}
			return nil
		})
	}
	// The per-row transforms cannot fail.
	_ = g.Wait()
	return out
}

func premultiplyRow(dst, src []byte) {
	for i := 0; i < len(src); i += 4 {
		a := src[i+3]
		alpha := float32(a) / 255.0
		dst[i+0] = uint8(float32(src[i+0]) * alpha)
		dst[i+1] = uint8(float32(src[i+1]) * alpha)
		dst[i+2] = uint8(float32(src[i+2]) * alpha)
		dst[i+3] = a
	}
}

func unpremultiplyRow(dst, src []byte) {
	for i := 0; i < len(src); i += 4 {
		a := src[i+3]
		if a == 0 {
			dst[i+0] = 0
			dst[i+1] = 0
			dst[i+2] = 0
			dst[i+3] = 0
			continue
		}
		alpha := float32(a) / 255.0
		dst[i+0] = clamp8(float32(src[i+0]) / alpha)
		dst[i+1] = clamp8(float32(src[i+1]) / alpha)
		dst[i+2] = clamp8(float32(src[i+2]) / alpha)
		dst[i+3] = a
	}
}

// clamp8 truncates to an 8-bit integer, saturating instead of wrapping when
// corrupt premultiplied input divides to more than 255.
func clamp8(v float32) uint8 {
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v)
}

// Premultiply scales R, G and B by normalized alpha without flipping. Used
// right before block compression, where rows are already in on-disk order.
func Premultiply(buf []byte) []byte {
	if len(buf)%4 != 0 {
		panic(fmt.Sprintf("pixel: buffer is %d bytes, want a multiple of 4", len(buf)))
	}

	out := make([]byte, len(buf))

	var g errgroup.Group
	g.SetLimit(workers)
	pixels := len(buf) / 4
	band := (pixels + workers - 1) / workers
	for start := 0; start < pixels; start += band {
		start := start
		end := min(start+band, pixels)
		g.Go(func() error {
			for p := start; p < end; p++ {
				i := p * 4
				a := buf[i+3]
				if a == 0 {
					continue
				}
				alpha := float32(a) / 255.0
				out[i+0] = uint8(float32(buf[i+0]) * alpha)
				out[i+1] = uint8(float32(buf[i+1]) * alpha)
				out[i+2] = uint8(float32(buf[i+2]) * alpha)
				out[i+3] = a
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
