package bcn

import (
	"encoding/binary"
	"image/color"
	"math"
)

// vec3 is an (R, G, B) point in float space.
type vec3 [3]float64

func dot(a, b vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func add(a, b vec3) vec3 {
	return vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func sub(a, b vec3) vec3 {
	return vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func scale(v vec3, s float64) vec3 {
	return vec3{v[0] * s, v[1] * s, v[2] * s}
}

func normalize(v vec3) vec3 {
	length := math.Sqrt(dot(v, v))
	if length == 0 {
		return vec3{}
	}
	return scale(v, 1/length)
}

func point(p color.RGBA) vec3 {
	return vec3{float64(p.R), float64(p.G), float64(p.B)}
}

// compressColorBlock fits two RGB565 endpoints to the block and packs the
// 8-byte color record: c0, c1, then sixteen 2-bit palette indices.
func compressColorBlock(px [16]color.RGBA, p Params) []byte {
	weights := blockWeights(px, p)

	var end0, end1 vec3
	switch p.Algorithm {
	case RangeFit:
		end0, end1 = rangeFit(px)
	case IterativeClusterFit:
		end0, end1 = clusterFit(px, weights)
		end0, end1 = refineEndpoints(px, weights, end0, end1)
	default:
		end0, end1 = clusterFit(px, weights)
	}

	c0 := encode565(end0)
	c1 := encode565(end1)
	// c0 > c1 selects the opaque 4-color palette mode.
	if c0 < c1 {
		c0, c1 = c1, c0
	}

	var packed uint32
	if c0 != c1 {
		palette := buildPalette(c0, c1)
		for i, pixel := range px {
			packed |= uint32(bestIndex(pixel, palette)) << (2 * uint(i))
		}
	}
	// c0 == c1 would flip the decoder into the punch-through mode where
	// index 3 is transparent; leaving every index at 0 keeps the block
	// opaque and exact for solid colors.

	out := make([]byte, 8)
	binary.LittleEndian.PutUint16(out, c0)
	binary.LittleEndian.PutUint16(out[2:], c1)
	binary.LittleEndian.PutUint32(out[4:], packed)
	return out
}

func blockWeights(px [16]color.RGBA, p Params) [16]float64 {
	var w [16]float64
	if !p.WeighColourByAlpha {
		for i := range w {
			w[i] = 1
		}
		return w
	}
	total := 0.0
	for i, pixel := range px {
		w[i] = float64(pixel.A) / 255.0
		total += w[i]
	}
	if total == 0 {
		// Fully transparent block; fall back to uniform weights so the
		// fit stays defined.
		for i := range w {
			w[i] = 1
		}
	}
	return w
}

// rangeFit uses the per-channel bounding box corners as endpoints.
func rangeFit(px [16]color.RGBA) (vec3, vec3) {
	lo := vec3{255, 255, 255}
	hi := vec3{0, 0, 0}
	for _, pixel := range px {
		c := point(pixel)
		for ch := 0; ch < 3; ch++ {
			lo[ch] = math.Min(lo[ch], c[ch])
			hi[ch] = math.Max(hi[ch], c[ch])
		}
	}
	return hi, lo
}

// clusterFit projects the block onto its principal axis (found by power
// iteration over the covariance matrix) and places the endpoints at the
// extreme projections.
func clusterFit(px [16]color.RGBA, weights [16]float64) (vec3, vec3) {
	var avg vec3
	total := 0.0
	for i, pixel := range px {
		avg = add(avg, scale(point(pixel), weights[i]))
		total += weights[i]
	}
	avg = scale(avg, 1/total)

	var cov [3][3]float64
	for i, pixel := range px {
		d := sub(point(pixel), avg)
		w := weights[i]
		cov[0][0] += w * d[0] * d[0]
		cov[0][1] += w * d[0] * d[1]
		cov[0][2] += w * d[0] * d[2]
		cov[1][1] += w * d[1] * d[1]
		cov[1][2] += w * d[1] * d[2]
		cov[2][2] += w * d[2] * d[2]
	}
	cov[1][0] = cov[0][1]
	cov[2][0] = cov[0][2]
	cov[2][1] = cov[1][2]

	axis := principalAxis(cov)

	minProj, maxProj := math.MaxFloat64, -math.MaxFloat64
	for i, pixel := range px {
		if weights[i] == 0 {
			continue
		}
		proj := dot(point(pixel), axis)
		minProj = math.Min(minProj, proj)
		maxProj = math.Max(maxProj, proj)
	}

	// The fitted line is avg + t*axis; with axis normalized, a point's t is
	// its projection minus the centroid's.
	avgProj := dot(avg, axis)
	end0 := add(avg, scale(axis, maxProj-avgProj))
	end1 := add(avg, scale(axis, minProj-avgProj))
	return end0, end1
}

// principalAxis estimates the dominant eigenvector of the covariance matrix.
// A handful of power iterations is plenty for 16-pixel blocks.
func principalAxis(cov [3][3]float64) vec3 {
	v := normalize(vec3{1, 1, 1})
	for i := 0; i < 5; i++ {
		v = normalize(vec3{
			cov[0][0]*v[0] + cov[0][1]*v[1] + cov[0][2]*v[2],
			cov[1][0]*v[0] + cov[1][1]*v[1] + cov[1][2]*v[2],
			cov[2][0]*v[0] + cov[2][1]*v[1] + cov[2][2]*v[2],
		})
	}
	if v == (vec3{}) {
		// Degenerate covariance (solid color block); any axis works.
		v = vec3{1, 0, 0}
	}
	return v
}

// paletteT maps a palette index to its position t along the endpoint segment
// end1 + t*(end0-end1): index 0 is pure c0, index 1 pure c1, 2 and 3 the
// one-third interpolants.
var paletteT = [4]float64{1, 0, 2.0 / 3.0, 1.0 / 3.0}

// refineEndpoints alternates index assignment with a weighted least-squares
// solve for the endpoints, in float space, stopping once the solution
// settles.
func refineEndpoints(px [16]color.RGBA, weights [16]float64, end0, end1 vec3) (vec3, vec3) {
	for i := 0; i < 4; i++ {
		c0 := encode565(end0)
		c1 := encode565(end1)
		if c0 < c1 {
			c0, c1 = c1, c0
		}
		if c0 == c1 {
			break
		}
		palette := buildPalette(c0, c1)

		// Normal equations for min sum w |t*end0 + (1-t)*end1 - p|^2.
		var att, ato, aoo float64
		var q0, q1 vec3
		for i, pixel := range px {
			t := paletteT[bestIndex(pixel, palette)]
			w := weights[i]
			att += w * t * t
			ato += w * t * (1 - t)
			aoo += w * (1 - t) * (1 - t)
			c := point(pixel)
			q0 = add(q0, scale(c, w*t))
			q1 = add(q1, scale(c, w*(1-t)))
		}
		det := att*aoo - ato*ato
		if math.Abs(det) < 1e-8 {
			break
		}
		next0 := scale(sub(scale(q0, aoo), scale(q1, ato)), 1/det)
		next1 := scale(sub(scale(q1, att), scale(q0, ato)), 1/det)

		moved := dot(sub(next0, end0), sub(next0, end0)) + dot(sub(next1, end1), sub(next1, end1))
		end0, end1 = next0, next1
		if moved < 0.25 {
			break
		}
	}
	return end0, end1
}

func buildPalette(c0, c1 uint16) [4][3]uint8 {
	col0 := decode565(c0)
	col1 := decode565(c1)

	var palette [4][3]uint8
	palette[0] = col0
	palette[1] = col1
	for ch := 0; ch < 3; ch++ {
		// c2 = (2*c0 + c1) / 3, c3 = (c0 + 2*c1) / 3, rounded.
		palette[2][ch] = uint8((2*uint16(col0[ch]) + uint16(col1[ch]) + 1) / 3)
		palette[3][ch] = uint8((uint16(col0[ch]) + 2*uint16(col1[ch]) + 1) / 3)
	}
	return palette
}

func bestIndex(p color.RGBA, palette [4][3]uint8) uint8 {
	best := uint8(0)
	bestDist := math.MaxInt32
	for j := 0; j < 4; j++ {
		dr := int(p.R) - int(palette[j][0])
		dg := int(p.G) - int(palette[j][1])
		db := int(p.B) - int(palette[j][2])
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			bestDist = d
			best = uint8(j)
		}
	}
	return best
}

// encode565 clamps, rounds and packs a float RGB point into 5-6-5 bits.
func encode565(c vec3) uint16 {
	r := uint32(math.Round(math.Max(0, math.Min(255, c[0]))))
	g := uint32(math.Round(math.Max(0, math.Min(255, c[1]))))
	b := uint32(math.Round(math.Max(0, math.Min(255, c[2]))))
	return uint16((r>>3)<<11 | (g>>2)<<5 | b>>3)
}

func decode565(v uint16) [3]uint8 {
	r := uint8(v >> 11 & 0x1f)
	g := uint8(v >> 5 & 0x3f)
	b := uint8(v & 0x1f)
	// Replicate the high bits into the low bits so saturated channels decode
	// back to 255.
	return [3]uint8{
		r<<3 | r>>2,
		g<<2 | g>>4,
		b<<3 | b>>2,
	}
}
