package core

import (
	"context"
	"time"
)

// ColorSpace represents the image colour model.
type ColorSpace string

const (
	ColorSpaceRGB  ColorSpace = "rgb"
	ColorSpaceRGBA ColorSpace = "rgba"
	ColorSpaceCMYK ColorSpace = "cmyk"
	ColorSpaceGray ColorSpace = "gray"
)

// Metadata holds extracted image information without loading pixel data.
type Metadata struct {
	Width      int
	Height     int
	Format     Format // zero for inputs that cannot be written (TIFF, BMP, GIF)
	Source     string // sniffed source codec name
	ColorSpace ColorSpace
	HasAlpha   bool
	SizeBytes  int64
}

// ImageData is the in-memory representation passed through a pipeline.
// Data holds encoded bytes; Image holds the decoded pixel buffer once a
// decode step has run.
type ImageData struct {
	// Name is the base name of the source file, used in logs.
	Name string

	Data   []byte
	Format Format

	// Image is an image.Image for the pure-Go backend or the backend's own
	// handle type (for example *vips.ImageRef).
	Image interface{}

	Meta Metadata

	OriginalSize int64
}

// Step is the fundamental pipeline building block. Each Step transforms an
// *ImageData value and must be safe for concurrent use across goroutines.
type Step interface {
	Name() string
	Execute(ctx context.Context, img *ImageData) (*ImageData, error)
}

// Hook is an optional observer invoked around pipeline steps.
type Hook interface {
	BeforeStep(ctx context.Context, stepName string, img *ImageData)
	AfterStep(ctx context.Context, stepName string, img *ImageData, d time.Duration, err error)
}
