//go:build vips

package vips

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"

	govips "github.com/davidbyttow/govips/v2/vips"

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
	"github.com/Skryldev/imagebatch/utils"
)

// BackendConfig configures the libvips backend.
type BackendConfig struct {
	MaxCacheSize int
	MaxWorkers   int
	ReportLeaks  bool
}

// Backend is a unified libvips-powered Decoder, Resizer and Encoder.
// Safe for concurrent use across goroutines.
type Backend struct {
	cfg BackendConfig
}

// NewBackend initialises libvips and returns a ready Backend.
// Call Shutdown() when the process exits.
func NewBackend(cfg BackendConfig) *Backend {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	govips.LoggingSettings(nil, govips.LogLevelWarning)
	govips.Startup(&govips.Config{
		ConcurrencyLevel: cfg.MaxWorkers,
		MaxCacheSize:     cfg.MaxCacheSize,
		ReportLeaks:      cfg.ReportLeaks,
	})
	return &Backend{cfg: cfg}
}

// Shutdown releases all libvips resources. Call once at process exit.
func (b *Backend) Shutdown() {
	govips.Shutdown()
}

// ─── Decoder ──────────────────────────────────────────────────────────────────

// CanDecode reports true for every format; libvips sniffs the buffer itself.
func (b *Backend) CanDecode(core.Format) bool { return true }

func (b *Backend) Decode(ctx context.Context, r io.Reader) (*core.ImageData, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindCanceled, "vips.decode", err)
	}

	buf, err := utils.DrainReader(ctx, r, 32*1024)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindFailedToLoadImage, "vips.decode.drain", err)
	}
	raw := utils.CloneBytes(buf.Bytes())
	utils.ReleaseBuffer(buf)

	ref, err := govips.NewImageFromBuffer(raw)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindFailedToLoadImage, "vips.decode", err)
	}
	return wrap(ref, raw), nil
}

func wrap(ref *govips.ImageRef, raw []byte) *core.ImageData {
	runtime.SetFinalizer(ref, func(r *govips.ImageRef) { r.Close() })
	format := vipsFormatToCore(ref.Format())
	return &core.ImageData{
		Data:   raw,
		Format: format,
		Image:  &VipsImage{ref: ref},
		Meta: core.Metadata{
			Width:      ref.Width(),
			Height:     ref.Height(),
			Format:     format,
			Source:     govips.ImageTypes[ref.Format()],
			ColorSpace: vipsInterpretationToColorSpace(ref.Interpretation()),
			HasAlpha:   ref.HasAlpha(),
		},
		OriginalSize: int64(len(raw)),
	}
}

// ─── Resizer ──────────────────────────────────────────────────────────────────

// Resize scales a copy of the image with the Lanczos3 kernel, leaving the
// input untouched so a fallback attempt can reuse it.
func (b *Backend) Resize(ctx context.Context, img *core.ImageData, width, height int) (*core.ImageData, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindCanceled, "vips.resize", err)
	}
	vi, ok := img.Image.(*VipsImage)
	if !ok || vi == nil {
		return nil, apperrors.New(apperrors.KindFailedToLoadImage, "vips.resize",
			fmt.Errorf("expected *VipsImage; use vips backend for decode"))
	}
	if width <= 0 || height <= 0 {
		return nil, apperrors.New(apperrors.KindCorruptedImageFile, "vips.resize", apperrors.ErrZeroDimensions)
	}
	if width == vi.Width() && height == vi.Height() {
		return img, nil
	}

	ref, err := vi.ref.Copy()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindEncodeFailure, "vips.resize.copy", err)
	}
	runtime.SetFinalizer(ref, func(r *govips.ImageRef) { r.Close() })

	h := float64(width) / float64(vi.Width())
	v := float64(height) / float64(vi.Height())
	if err := ref.ResizeWithVScale(h, v, govips.KernelLanczos3); err != nil {
		return nil, apperrors.Wrap(apperrors.KindEncodeFailure, "vips.resize", err)
	}

	out := *img
	out.Image = &VipsImage{ref: ref}
	out.Meta.Width = ref.Width()
	out.Meta.Height = ref.Height()
	return &out, nil
}

// ─── Encoder ──────────────────────────────────────────────────────────────────

// Encoder returns the core.Encoder writing format f.
func (b *Backend) Encoder(f core.Format) core.Encoder { return &formatEncoder{b: b, format: f} }

type formatEncoder struct {
	b      *Backend
	format core.Format
}

func (e *formatEncoder) CanEncode(f core.Format) bool { return f == e.format }

func (e *formatEncoder) Available() bool {
	switch e.format {
	case core.FormatJPEG, core.FormatPNG:
		return true
	case core.FormatWebP:
		return govips.IsTypeSupported(govips.ImageTypeWEBP)
	}
	return false
}

func (e *formatEncoder) Encode(ctx context.Context, img *core.ImageData, opts core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindCanceled, "vips.encode", err)
	}

	vi, ok := img.Image.(*VipsImage)
	if !ok || vi == nil {
		return nil, apperrors.New(apperrors.KindEncodeFailure, "vips.encode",
			fmt.Errorf("image must be decoded with the vips backend first"))
	}
	quality := int(math.Round(opts.Quality * 100))
	if quality < 1 {
		quality = 1
	}

	switch e.format {
	case core.FormatJPEG:
		ep := govips.NewJpegExportParams()
		ep.Quality = quality
		ep.StripMetadata = true
		buf, _, err := vi.ref.ExportJpeg(ep)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindEncodeFailure, "vips.encode.jpeg", err)
		}
		return withDensity(buf, opts.DPI, utils.SetJFIFDensity, "vips.encode.jpeg")

	case core.FormatPNG:
		ep := govips.NewPngExportParams()
		ep.StripMetadata = true
		buf, _, err := vi.ref.ExportPng(ep)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindEncodeFailure, "vips.encode.png", err)
		}
		return withDensity(buf, opts.DPI, utils.SetPNGDensity, "vips.encode.png")

	case core.FormatWebP:
		ep := govips.NewWebpExportParams()
		ep.Quality = quality
		ep.Lossless = opts.Lossless
		ep.StripMetadata = true
		buf, _, err := vi.ref.ExportWebp(ep)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindEncodeFailure, "vips.encode.webp", err)
		}
		return buf, nil
	}
	return nil, apperrors.New(apperrors.KindUnsupportedOutputFormat, "vips.encode",
		fmt.Errorf("%w: %s", apperrors.ErrNoEncoder, e.format))
}

func withDensity(buf []byte, dpi float64, set func([]byte, float64) ([]byte, error), op string) ([]byte, error) {
	out, err := set(buf, dpi)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindEncodeFailure, op, err)
	}
	return out, nil
}

// ─── VipsImage ────────────────────────────────────────────────────────────────

// VipsImage wraps a *govips.ImageRef for storage in core.ImageData.Image.
type VipsImage struct {
	ref *govips.ImageRef
}

func (v *VipsImage) Width() int            { return v.ref.Width() }
func (v *VipsImage) Height() int           { return v.ref.Height() }
func (v *VipsImage) Ref() *govips.ImageRef { return v.ref }
func (v *VipsImage) Close()                { v.ref.Close() }

// ─── Register ─────────────────────────────────────────────────────────────────

// Register replaces the pure-Go codecs and resizer in reg with libvips.
func Register(reg *core.DefaultRegistry, b *Backend) {
	for _, f := range core.Formats() {
		reg.RegisterDecoder(f, b)
		reg.RegisterEncoder(f, b.Encoder(f))
	}
	reg.SetFallbackDecoder(b)
	reg.SetResizer(b)
}

// ─── helpers ──────────────────────────────────────────────────────────────────

func vipsFormatToCore(f govips.ImageType) core.Format {
	switch f {
	case govips.ImageTypeJPEG:
		return core.FormatJPEG
	case govips.ImageTypePNG:
		return core.FormatPNG
	case govips.ImageTypeWEBP:
		return core.FormatWebP
	}
	return ""
}

func vipsInterpretationToColorSpace(i govips.Interpretation) core.ColorSpace {
	switch i {
	case govips.InterpretationBW:
		return core.ColorSpaceGray
	case govips.InterpretationCMYK:
		return core.ColorSpaceCMYK
	}
	return core.ColorSpaceRGB
}

// compile-time interface checks
var (
	_ core.Decoder = (*Backend)(nil)
	_ core.Resizer = (*Backend)(nil)
	_ core.Encoder = (*formatEncoder)(nil)
)
