// Command ktex converts images to and from the KTEX texture container.
package main

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/dblezek/tga"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/image/bmp"

	"github.com/dsmodtools/ktex/pkg/ktex"
)

const usage = `usage: ktex <command> [flags] <file>

commands:
  compile    convert an image (png, bmp, tga) into a KTEX texture
  decompile  convert a KTEX texture into a png image
  info       print what a KTEX texture contains`

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "compile":
		err = runCompile(log, os.Args[2:])
	case "decompile":
		err = runDecompile(log, os.Args[2:])
	case "info":
		err = runInfo(log, os.Args[2:])
	default:
		err = fmt.Errorf("unknown command %q\n%s", os.Args[1], usage)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("ktex failed")
	}
}

func runCompile(log zerolog.Logger, args []string) error {
	fs := pflag.NewFlagSet("compile", pflag.ContinueOnError)
	out := fs.String("out", "", "output file (default: input with .tex extension)")
	presetPath := fs.String("preset", "", "YAML preset with encode options")
	platform := fs.String("platform", "default", "target platform: default, pc, ps3, xbox360")
	format := fs.String("format", "bc3", "pixel format: bc1, bc2, bc3, rgba, rgb")
	texture := fs.String("type", "2d", "texture type: 1d, 2d, 3d, cubemapped")
	premultiply := fs.String("premultiply", "auto", "premultiply alpha: auto, on, off")
	mipmaps := fs.Bool("mipmaps", true, "generate the mipmap chain")
	algorithm := fs.String("algorithm", "cluster-fit", "endpoint fit: range-fit, cluster-fit, iterative-cluster-fit")
	weighAlpha := fs.Bool("weigh-colour-by-alpha", false, "weigh color endpoints by alpha")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: ktex compile [flags] <image>")
	}
	input := fs.Arg(0)

	opts := ktex.DefaultEncodeOptions()
	if *presetPath != "" {
		if err := loadPreset(*presetPath, &opts); err != nil {
			return fmt.Errorf("preset %q: %w", *presetPath, err)
		}
	}
	// Explicit flags win over the preset.
	if err := applyFlags(fs, &opts, *platform, *format, *texture, *premultiply, *mipmaps, *algorithm, *weighAlpha); err != nil {
		return err
	}

	img, err := loadImage(input)
	if err != nil {
		return fmt.Errorf("open %q: %w", input, err)
	}
	width, height, rgba := imagePixels(img)

	log.Info().
		Str("input", input).
		Int("width", width).
		Int("height", height).
		Stringer("format", opts.PixelFormat).
		Stringer("platform", opts.Platform).
		Bool("mipmaps", opts.GenerateMipmaps).
		Msg("compiling texture")

	raw, err := ktex.Encode(width, height, rgba, opts)
	if err != nil {
		return fmt.Errorf("encode %q: %w", input, err)
	}

	target := *out
	if target == "" {
		target = strings.TrimSuffix(input, filepath.Ext(input)) + ".tex"
	}
	if err := os.WriteFile(target, raw, 0666); err != nil {
		return fmt.Errorf("write %q: %w", target, err)
	}
	log.Info().Str("output", target).Int("bytes", len(raw)).Msg("wrote texture")
	return nil
}

func runDecompile(log zerolog.Logger, args []string) error {
	fs := pflag.NewFlagSet("decompile", pflag.ContinueOnError)
	out := fs.String("out", "", "output file (default: input with .png extension)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: ktex decompile [flags] <texture>")
	}
	input := fs.Arg(0)

	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("open %q: %w", input, err)
	}
	c, err := ktex.Decode(raw)
	if err != nil {
		return fmt.Errorf("decode %q: %w", input, err)
	}

	log.Info().
		Str("input", input).
		Stringer("format", c.Header.PixelFormat).
		Stringer("alpha", c.Header.Alpha).
		Int("mipmaps", len(c.Mipmaps)).
		Msg("decompiling texture")

	img, err := c.Image()
	if err != nil {
		return fmt.Errorf("decompress %q: %w", input, err)
	}

	target := *out
	if target == "" {
		target = strings.TrimSuffix(input, filepath.Ext(input)) + ".png"
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %q: %w", target, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("write %q: %w", target, err)
	}
	log.Info().Str("output", target).Msg("wrote image")
	return nil
}

func runInfo(log zerolog.Logger, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: ktex info <texture>")
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("open %q: %w", args[0], err)
	}
	c, err := ktex.Decode(raw)
	if err != nil {
		return fmt.Errorf("decode %q: %w", args[0], err)
	}

	log.Info().
		Stringer("platform", c.Header.Platform).
		Stringer("format", c.Header.PixelFormat).
		Stringer("type", c.Header.TextureType).
		Stringer("alpha", c.Header.Alpha).
		Int("mipmaps", int(c.Header.MipmapCount)).
		Int("bytes", len(c.Bytes)).
		Msg("texture header")
	for i, m := range c.Mipmaps {
		log.Info().
			Int("level", i).
			Uint16("width", m.Width).
			Uint16("height", m.Height).
			Uint16("pitch", m.Pitch).
			Uint32("size", m.DataSize).
			Msg("mipmap")
	}
	return nil
}

// loadImage decodes by file extension; tga has no magic bytes, so sniffing
// the content is not an option.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Decode(f)
	case ".bmp":
		return bmp.Decode(f)
	case ".tga":
		return tga.Decode(f)
	}
	return nil, fmt.Errorf("unsupported image extension %q", filepath.Ext(path))
}

// imagePixels flattens any image into a tightly packed top-down RGBA buffer.
func imagePixels(img image.Image) (width, height int, rgba []byte) {
	b := img.Bounds()
	width, height = b.Dx(), b.Dy()

	if m, ok := img.(*image.RGBA); ok && m.Stride == width*4 && b.Min == (image.Point{}) {
		return width, height, m.Pix
	}
	flat := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Src)
	return width, height, flat.Pix
}
