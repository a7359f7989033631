package pixel

import (
	"image"

	"golang.org/x/image/draw"
)

// Resize resamples buf from width x height to newWidth x newHeight with a
// Catmull-Rom kernel and returns the resulting buffer. Deterministic for a
// given input.
func Resize(buf []byte, width, height, newWidth, newHeight int) []byte {
	assertShape(buf, width, height)

	src := &image.RGBA{
		Pix:    buf,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst.Pix
}
