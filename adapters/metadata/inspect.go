// Package metadata reads source image properties without decoding pixels.
package metadata

import (
	"bytes"
	"image"
	_ "image/gif" // register GIF
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
	"github.com/Skryldev/imagebatch/utils"
)

// DPI sources, in lookup order.
const (
	DPISourceEXIF    = "exif"
	DPISourceJFIF    = "jfif"
	DPISourcePHYs    = "phys"
	DPISourceDefault = "default"
)

// Info describes a source image.
type Info struct {
	Path      string
	FileType  string // upper-case extension, or "Unknown"
	Codec     string // sniffed codec name
	FileSize  int64
	Width     int
	Height    int
	DPI       float64
	DPISource string
}

// Dimensions returns the pixel size.
func (i Info) Dimensions() core.Dimensions { return core.Dimensions{Width: i.Width, Height: i.Height} }

// Inspect stats and parses the header of the file at path.
func Inspect(path string) (Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, apperrors.New(apperrors.KindInputNotFound, "metadata.inspect", err)
	}
	if !st.Mode().IsRegular() {
		return Info{}, apperrors.New(apperrors.KindInputNotFound, "metadata.inspect", apperrors.ErrNotRegularFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, apperrors.New(apperrors.KindFailedToLoadImage, "metadata.inspect", err)
	}

	info := Info{
		Path:     path,
		FileType: fileType(path),
		Codec:    utils.DetectFormat(data),
		FileSize: st.Size(),
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, apperrors.New(apperrors.KindFailedToLoadImage, "metadata.decode_config", err)
	}
	info.Width, info.Height = cfg.Width, cfg.Height

	info.DPI, info.DPISource = resolution(info.Codec, data)
	return info, nil
}

func fileType(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "Unknown"
	}
	return strings.ToUpper(ext)
}

// resolution finds the horizontal DPI declared by the file, falling back
// to core.DefaultDPI.
func resolution(codec string, data []byte) (float64, string) {
	switch codec {
	case "jpeg", "tiff":
		if dpi, ok := exifResolution(data); ok {
			return dpi, DPISourceEXIF
		}
		if dpi, ok := utils.JFIFDensity(data); ok && dpi > 0 {
			return dpi, DPISourceJFIF
		}
	case "png":
		if dpi, ok := utils.PNGDensity(data); ok && dpi > 0 {
			return dpi, DPISourcePHYs
		}
	}
	return core.DefaultDPI, DPISourceDefault
}

// exifResolution reads XResolution and ResolutionUnit from IFD0.
func exifResolution(data []byte) (float64, bool) {
	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(bytes.NewReader(data), nil, true)
	if err != nil {
		return 0, false
	}

	var (
		x    float64
		unit uint16 = 2 // inches unless stated
	)
	for _, tag := range tags {
		if tag.IfdPath != "IFD" { // IFD0; IFD1 describes the thumbnail
			continue
		}
		switch tag.TagName {
		case "XResolution":
			if r, ok := tag.Value.([]exifcommon.Rational); ok && len(r) > 0 && r[0].Denominator != 0 {
				x = float64(r[0].Numerator) / float64(r[0].Denominator)
			}
		case "ResolutionUnit":
			if u, ok := tag.Value.([]uint16); ok && len(u) > 0 {
				unit = u[0]
			}
		}
	}
	if x <= 0 {
		return 0, false
	}
	switch unit {
	case 2:
		return x, true
	case 3:
		return x * 2.54, true
	}
	return 0, false
}
