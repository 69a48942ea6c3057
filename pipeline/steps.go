package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
	"github.com/Skryldev/imagebatch/utils"
)

// ── Read ──────────────────────────────────────────────────────────────────────

// ReadFileStep loads the source file into img.Data.
type ReadFileStep struct {
	Path string
}

func (s *ReadFileStep) Name() string { return "read" }

func (s *ReadFileStep) Execute(ctx context.Context, img *core.ImageData) (*core.ImageData, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInputNotFound, s.Name(), err)
	}
	if !info.Mode().IsRegular() {
		return nil, apperrors.New(apperrors.KindInputNotFound, s.Name(),
			fmt.Errorf("%s: %w", s.Path, apperrors.ErrNotRegularFile))
	}

	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.New(apperrors.KindInputNotFound, s.Name(), err)
		}
		return nil, apperrors.New(apperrors.KindFailedToLoadImage, s.Name(), err)
	}
	defer f.Close()

	buf, err := utils.DrainReader(ctx, f, 64*1024)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.New(apperrors.KindCanceled, s.Name(), err)
		}
		return nil, apperrors.New(apperrors.KindFailedToLoadImage, s.Name(), err)
	}
	data := utils.CloneBytes(buf.Bytes())
	utils.ReleaseBuffer(buf)

	out := &core.ImageData{}
	if img != nil {
		*out = *img
	}
	out.Name = filepath.Base(s.Path)
	out.Data = data
	out.OriginalSize = info.Size()
	out.Meta.SizeBytes = int64(len(data))
	return out, nil
}

// ── Decode ────────────────────────────────────────────────────────────────────

// DecodeStep decodes raw bytes in img.Data into pixels. The decoder is
// chosen from the sniffed content, not the file name.
type DecodeStep struct {
	Registry core.Registry
}

func (s *DecodeStep) Name() string { return "decode" }

func (s *DecodeStep) Execute(ctx context.Context, img *core.ImageData) (*core.ImageData, error) {
	if img.Image != nil {
		return img, nil // already decoded
	}
	if len(img.Data) == 0 {
		return nil, apperrors.New(apperrors.KindFailedToLoadImage, s.Name(), apperrors.ErrEmptyInput)
	}

	sniffed := utils.DetectFormat(img.Data)
	var dec core.Decoder
	if f, ok := core.FormatFromSniff(sniffed); ok {
		dec, _ = s.Registry.DecoderFor(f)
	}
	if dec == nil {
		dec = s.Registry.FallbackDecoder()
	}
	if dec == nil {
		return nil, apperrors.New(apperrors.KindFailedToLoadImage, s.Name(),
			fmt.Errorf("no decoder for %s input", sniffed))
	}

	decoded, err := dec.Decode(ctx, utils.BytesReader(img.Data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindFailedToLoadImage, s.Name(), err)
	}
	if decoded.Meta.Width <= 0 || decoded.Meta.Height <= 0 {
		return nil, apperrors.New(apperrors.KindCorruptedImageFile, s.Name(), apperrors.ErrZeroDimensions)
	}

	// Preserve the raw bytes and provenance alongside the decoded pixels.
	decoded.Name = img.Name
	decoded.Data = img.Data
	decoded.OriginalSize = img.OriginalSize
	decoded.Meta.SizeBytes = img.Meta.SizeBytes
	if decoded.Meta.Source == "" {
		decoded.Meta.Source = sniffed
	}
	return decoded, nil
}

// ── Fit ───────────────────────────────────────────────────────────────────────

// FitStep scales the image to fit within MaxWidth×MaxHeight using
// core.FitWithin. Zero bounds leave the image untouched.
type FitStep struct {
	MaxWidth, MaxHeight int
	Resizer             core.Resizer
}

func (s *FitStep) Name() string { return "fit" }

func (s *FitStep) Execute(ctx context.Context, img *core.ImageData) (*core.ImageData, error) {
	target := core.FitWithin(img.Meta.Width, img.Meta.Height, s.MaxWidth, s.MaxHeight)
	if target.Width == img.Meta.Width && target.Height == img.Meta.Height {
		return img, nil
	}
	if s.Resizer == nil {
		return nil, apperrors.New(apperrors.KindEncodeFailure, s.Name(), errors.New("no resizer configured"))
	}
	out, err := s.Resizer.Resize(ctx, img, target.Width, target.Height)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindEncodeFailure, s.Name(), err)
	}
	return out, nil
}

// ── Encode ────────────────────────────────────────────────────────────────────

// EncodeStep serialises the pixels to Format using the registry encoder.
type EncodeStep struct {
	Registry core.Registry
	Format   core.Format
	Options  core.EncodeOptions
}

func (s *EncodeStep) Name() string { return "encode" }

func (s *EncodeStep) Execute(ctx context.Context, img *core.ImageData) (*core.ImageData, error) {
	enc, ok := s.Registry.EncoderFor(s.Format)
	if !ok || enc == nil || !enc.Available() {
		return nil, apperrors.New(apperrors.KindUnsupportedOutputFormat, s.Name(),
			fmt.Errorf("%w: %s", apperrors.ErrNoEncoder, s.Format))
	}

	data, err := enc.Encode(ctx, img, s.Options)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindEncodeFailure, s.Name(), err)
	}
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.KindEncodeFailure, s.Name(), apperrors.ErrEmptyOutput)
	}

	out := *img
	out.Data = data
	out.Format = s.Format
	out.Meta.Format = s.Format
	out.Meta.SizeBytes = int64(len(data))
	return &out, nil
}
