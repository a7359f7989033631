package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/dsmodtools/ktex/pkg/bcn"
	"github.com/dsmodtools/ktex/pkg/ktex"
)

// preset mirrors the compile flags so a build can carry its encode
// settings alongside the source art.
type preset struct {
	Platform           string `yaml:"platform"`
	PixelFormat        string `yaml:"pixel_format"`
	TextureType        string `yaml:"texture_type"`
	Premultiply        string `yaml:"premultiply"`
	Mipmaps            *bool  `yaml:"mipmaps"`
	Algorithm          string `yaml:"algorithm"`
	WeighColourByAlpha *bool  `yaml:"weigh_colour_by_alpha"`
}

func loadPreset(path string, opts *ktex.EncodeOptions) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var p preset
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return err
	}

	if p.Platform != "" {
		if opts.Platform, err = parsePlatform(p.Platform); err != nil {
			return err
		}
	}
	if p.PixelFormat != "" {
		if opts.PixelFormat, err = parsePixelFormat(p.PixelFormat); err != nil {
			return err
		}
	}
	if p.TextureType != "" {
		if opts.TextureType, err = parseTextureType(p.TextureType); err != nil {
			return err
		}
	}
	if p.Premultiply != "" {
		if opts.Alpha, err = parseAlphaMode(p.Premultiply); err != nil {
			return err
		}
	}
	if p.Mipmaps != nil {
		opts.GenerateMipmaps = *p.Mipmaps
	}
	if p.Algorithm != "" {
		if opts.Compression.Algorithm, err = parseAlgorithm(p.Algorithm); err != nil {
			return err
		}
	}
	if p.WeighColourByAlpha != nil {
		opts.Compression.WeighColourByAlpha = *p.WeighColourByAlpha
	}
	return nil
}

func applyFlags(fs *pflag.FlagSet, opts *ktex.EncodeOptions, platform, format, texture, premultiply string, mipmaps bool, algorithm string, weighAlpha bool) error {
	var err error
	if fs.Changed("platform") {
		if opts.Platform, err = parsePlatform(platform); err != nil {
			return err
		}
	}
	if fs.Changed("format") {
		if opts.PixelFormat, err = parsePixelFormat(format); err != nil {
			return err
		}
	}
	if fs.Changed("type") {
		if opts.TextureType, err = parseTextureType(texture); err != nil {
			return err
		}
	}
	if fs.Changed("premultiply") {
		if opts.Alpha, err = parseAlphaMode(premultiply); err != nil {
			return err
		}
	}
	if fs.Changed("mipmaps") {
		opts.GenerateMipmaps = mipmaps
	}
	if fs.Changed("algorithm") {
		if opts.Compression.Algorithm, err = parseAlgorithm(algorithm); err != nil {
			return err
		}
	}
	if fs.Changed("weigh-colour-by-alpha") {
		opts.Compression.WeighColourByAlpha = weighAlpha
	}
	return nil
}

func parsePlatform(s string) (ktex.Platform, error) {
	switch s {
	case "default":
		return ktex.PlatformDefault, nil
	case "pc":
		return ktex.PlatformPC, nil
	case "ps3":
		return ktex.PlatformPS3, nil
	case "xbox360":
		return ktex.PlatformXbox360, nil
	}
	return 0, fmt.Errorf("unknown platform %q", s)
}

func parsePixelFormat(s string) (ktex.PixelFormat, error) {
	switch s {
	case "bc1":
		return ktex.PixelFormatBC1, nil
	case "bc2":
		return ktex.PixelFormatBC2, nil
	case "bc3":
		return ktex.PixelFormatBC3, nil
	case "rgba":
		return ktex.PixelFormatRGBA, nil
	case "rgb":
		return ktex.PixelFormatRGB, nil
	}
	return 0, fmt.Errorf("unknown pixel format %q", s)
}

func parseTextureType(s string) (ktex.TextureType, error) {
	switch s {
	case "1d":
		return ktex.TextureType1D, nil
	case "2d":
		return ktex.TextureType2D, nil
	case "3d":
		return ktex.TextureType3D, nil
	case "cubemapped":
		return ktex.TextureTypeCubeMapped, nil
	}
	return 0, fmt.Errorf("unknown texture type %q", s)
}

func parseAlphaMode(s string) (ktex.AlphaMode, error) {
	switch s {
	case "auto":
		return ktex.AlphaUnspecified, nil
	case "on":
		return ktex.AlphaPremultiplied, nil
	case "off":
		return ktex.AlphaStraight, nil
	}
	return 0, fmt.Errorf("unknown premultiply mode %q (want auto, on or off)", s)
}

func parseAlgorithm(s string) (bcn.Algorithm, error) {
	switch s {
	case "range-fit":
		return bcn.RangeFit, nil
	case "cluster-fit":
		return bcn.ClusterFit, nil
	case "iterative-cluster-fit":
		return bcn.IterativeClusterFit, nil
	}
	return 0, fmt.Errorf("unknown compression algorithm %q", s)
}
