package pixel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlipVertical(t *testing.T) {
	// 1x3 image: rows a, b, c.
	buf := []byte{
		1, 2, 3, 4, // a
		5, 6, 7, 8, // b
		9, 10, 11, 12, // c
	}
	flipped := FlipVertical(buf, 1, 3)
	require.Equal(t, []byte{
		9, 10, 11, 12,
		5, 6, 7, 8,
		1, 2, 3, 4,
	}, flipped)
}

func TestFlipVerticalRoundTrip(t *testing.T) {
	const w, h = 7, 5
	buf := make([]byte, w*h*4)
	for i := range buf {
		buf[i] = byte(i * 31)
	}
	require.Equal(t, buf, FlipVertical(FlipVertical(buf, w, h), w, h))
}

func TestFlipVerticalPanicsOnShapeMismatch(t *testing.T) {
	require.Panics(t, func() {
		FlipVertical(make([]byte, 15), 2, 2)
	})
}

func TestPremultiplyZeroAlpha(t *testing.T) {
	buf := []byte{200, 100, 50, 0}
	require.Equal(t, []byte{0, 0, 0, 0}, Premultiply(buf))
}

func TestPremultiplyOpaque(t *testing.T) {
	buf := []byte{200, 100, 50, 255}
	require.Equal(t, []byte{200, 100, 50, 255}, Premultiply(buf))
}

func TestPremultiplyTruncates(t *testing.T) {
	// 100 * (128/255) = 50.19..., truncated to 50.
	buf := []byte{100, 0, 0, 128}
	require.Equal(t, []byte{50, 0, 0, 128}, Premultiply(buf))
}

func TestUnpremultiplyInverse(t *testing.T) {
	for _, alpha := range []uint8{0, 1, 3, 64, 127, 128, 200, 254, 255} {
		for _, c := range []uint8{0, 1, 17, 100, 200, 255} {
			buf := FlipVerticalUnpremultiply(FlipVerticalPremultiply([]byte{c, c, c, alpha}, 1, 1), 1, 1)

			if alpha == 0 {
				require.Equal(t, []byte{0, 0, 0, 0}, buf, "alpha=0 maps to transparent black")
				continue
			}
			require.Equal(t, alpha, buf[3])

			// Premultiplying truncates away up to one alpha-normalized
			// step, so the recovered channel may undershoot by up to
			// 255/alpha (plus one for the second truncation).
			bound := int(255/int(alpha)) + 1
			got := int(buf[0])
			require.InDelta(t, int(c), got, float64(bound), "alpha=%d c=%d", alpha, c)
			require.LessOrEqual(t, got, int(c), "unpremultiply never overshoots")
		}
	}
}

func TestFlipVerticalPremultiplyFlips(t *testing.T) {
	buf := []byte{
		10, 20, 30, 255, // top row
		40, 50, 60, 255, // bottom row
	}
	out := FlipVerticalPremultiply(buf, 1, 2)
	require.Equal(t, []byte{
		40, 50, 60, 255,
		10, 20, 30, 255,
	}, out)
}

func TestResize(t *testing.T) {
	// Solid color survives resampling exactly.
	const w, h = 8, 8
	buf := make([]byte, w*h*4)
	for i := 0; i < len(buf); i += 4 {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = 30, 60, 90, 255
	}
	out := Resize(buf, w, h, 4, 4)
	require.Len(t, out, 4*4*4)
	for i := 0; i < len(out); i += 4 {
		require.Equal(t, []byte{30, 60, 90, 255}, out[i:i+4])
	}
}

func TestResizeDeterministic(t *testing.T) {
	const w, h = 16, 12
	buf := make([]byte, w*h*4)
	for i := range buf {
		buf[i] = byte(i*7 + 13)
	}
	first := Resize(buf, w, h, 5, 3)
	second := Resize(buf, w, h, 5, 3)
	require.Equal(t, first, second)
}
