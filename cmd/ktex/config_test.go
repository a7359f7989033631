package main

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dsmodtools/ktex/pkg/bcn"
	"github.com/dsmodtools/ktex/pkg/ktex"
)

func TestLoadPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
platform: pc
pixel_format: bc1
texture_type: cubemapped
premultiply: "off"
mipmaps: false
algorithm: iterative-cluster-fit
weigh_colour_by_alpha: true
`), 0666))

	opts := ktex.DefaultEncodeOptions()
	require.NoError(t, loadPreset(path, &opts))

	require.Equal(t, ktex.PlatformPC, opts.Platform)
	require.Equal(t, ktex.PixelFormatBC1, opts.PixelFormat)
	require.Equal(t, ktex.TextureTypeCubeMapped, opts.TextureType)
	require.Equal(t, ktex.AlphaStraight, opts.Alpha)
	require.False(t, opts.GenerateMipmaps)
	require.Equal(t, bcn.IterativeClusterFit, opts.Compression.Algorithm)
	require.True(t, opts.Compression.WeighColourByAlpha)
}

func TestLoadPresetPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pixel_format: rgba\n"), 0666))

	opts := ktex.DefaultEncodeOptions()
	require.NoError(t, loadPreset(path, &opts))

	// Only the named field moves; everything else keeps its default.
	require.Equal(t, ktex.PixelFormatRGBA, opts.PixelFormat)
	require.Equal(t, ktex.TextureType2D, opts.TextureType)
	require.True(t, opts.GenerateMipmaps)
}

func TestLoadPresetRejectsUnknownValues(t *testing.T) {
	for name, body := range map[string]string{
		"platform":  "platform: dreamcast\n",
		"format":    "pixel_format: astc\n",
		"type":      "texture_type: 4d\n",
		"alpha":     "premultiply: maybe\n",
		"algorithm": "algorithm: brute-force\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "preset.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0666))

			opts := ktex.DefaultEncodeOptions()
			require.Error(t, loadPreset(path, &opts))
		})
	}
}

func TestImagePixels(t *testing.T) {
	// NRGBA forces the conversion path; the offset origin checks that
	// bounds are normalized to zero.
	img := image.NewNRGBA(image.Rect(2, 5, 5, 7))
	img.SetNRGBA(2, 5, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	w, h, pix := imagePixels(img)
	require.Equal(t, 3, w)
	require.Equal(t, 2, h)
	require.Len(t, pix, 3*2*4)
	require.Equal(t, []byte{200, 100, 50, 255}, pix[:4])
}
