package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Skryldev/imagebatch/config"
	"github.com/Skryldev/imagebatch/core"
)

// paramFlags are the processing flags shared by convert and preview.
type paramFlags struct {
	maxWidth    int
	maxHeight   int
	compression float64
	quality     float64
	format      string
	dpi         float64
	preset      string
}

func (p *paramFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&p.maxWidth, "max-width", "W", 0, "Maximum output width in pixels (0 = unbounded)")
	fs.IntVarP(&p.maxHeight, "max-height", "H", 0, "Maximum output height in pixels (0 = unbounded)")
	fs.Float64VarP(&p.compression, "compression", "c", 0, "Compression percent 0-100; quality = 1 - compression/100")
	fs.Float64VarP(&p.quality, "quality", "q", 0, "Encoder quality 0-1 (overrides --compression)")
	fs.StringVarP(&p.format, "format", "f", "", "Output format: jpeg, jpg, png or webp")
	fs.Float64Var(&p.dpi, "dpi", 0, "Target DPI written to the output metadata")
	fs.StringVar(&p.preset, "preset", "", "Start from a built-in preset (see `imagebatch presets`)")
}

// resolve layers config defaults, then the preset, then explicitly set
// flags, and validates the result.
func (p *paramFlags) resolve(cmd *cobra.Command, cfg *config.Config) (core.Parameters, error) {
	params, err := cfg.Defaults.Parameters()
	if err != nil {
		return core.Parameters{}, err
	}

	if name := strings.TrimSpace(p.preset); name != "" {
		preset, ok := core.PresetByName(name)
		if !ok {
			return core.Parameters{}, fmt.Errorf("unknown preset %q", name)
		}
		params = preset.Params
	}

	flags := cmd.Flags()
	if flags.Changed("max-width") {
		params.MaxWidth = p.maxWidth
	}
	if flags.Changed("max-height") {
		params.MaxHeight = p.maxHeight
	}
	if flags.Changed("compression") {
		params.Quality = core.QualityFromCompression(p.compression)
	}
	if flags.Changed("quality") {
		params.Quality = p.quality
	}
	if flags.Changed("format") {
		f, err := core.ParseFormat(p.format)
		if err != nil {
			return core.Parameters{}, err
		}
		params.Format = f
	}
	if flags.Changed("dpi") {
		params.TargetDPI = p.dpi
	}

	if err := params.Validate(); err != nil {
		return core.Parameters{}, err
	}
	return params, nil
}

func describeParams(p core.Parameters) string {
	box := "original size"
	switch {
	case p.MaxWidth > 0 && p.MaxHeight > 0:
		box = fmt.Sprintf("fit %dx%d", p.MaxWidth, p.MaxHeight)
	case p.MaxWidth > 0:
		box = fmt.Sprintf("width %d", p.MaxWidth)
	case p.MaxHeight > 0:
		box = fmt.Sprintf("height %d", p.MaxHeight)
	}
	return fmt.Sprintf("%s, %s, quality %.2f, %g dpi", p.Format, box, p.Quality, p.DPI())
}
