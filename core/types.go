package core

import (
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "github.com/Skryldev/imagebatch/errors"
)

// Format identifies an output codec. Only the three declared values are
// valid; the zero value means "not an output format".
type Format string

const (
	FormatJPEG Format = "JPEG"
	FormatPNG  Format = "PNG"
	FormatWebP Format = "WEBP"
)

// Formats lists every output format in display order.
func Formats() []Format { return []Format{FormatJPEG, FormatPNG, FormatWebP} }

// ParseFormat maps a user or config string to a Format. Matching is
// case-insensitive and "jpg" is accepted for JPEG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "JPEG", "JPG":
		return FormatJPEG, nil
	case "PNG":
		return FormatPNG, nil
	case "WEBP":
		return FormatWebP, nil
	}
	return "", apperrors.New(apperrors.KindUnsupportedOutputFormat, "format.parse",
		fmt.Errorf("unknown format %q", s))
}

// Valid reports whether f is one of the declared formats.
func (f Format) Valid() bool {
	switch f {
	case FormatJPEG, FormatPNG, FormatWebP:
		return true
	}
	return false
}

// Extension returns the file extension (without dot) used for output files.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatPNG:
		return "png"
	case FormatWebP:
		return "webp"
	}
	return strings.ToLower(string(f))
}

// MIMEType returns the media type of the format.
func (f Format) MIMEType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	}
	return "application/octet-stream"
}

func (f Format) String() string { return string(f) }

// FormatFromSniff converts a utils.DetectFormat result into a Format.
func FormatFromSniff(s string) (Format, bool) {
	switch s {
	case "jpeg":
		return FormatJPEG, true
	case "png":
		return FormatPNG, true
	case "webp":
		return FormatWebP, true
	}
	return "", false
}

// DefaultDPI is embedded when Parameters.TargetDPI is left at zero.
const DefaultDPI = 72.0

// Parameters is the immutable setting tuple for one batch or preview call.
type Parameters struct {
	MaxWidth  int     // 0 = unbounded
	MaxHeight int     // 0 = unbounded
	Quality   float64 // encoder quality in [0,1]
	Format    Format
	TargetDPI float64 // 0 = DefaultDPI
}

// QualityFromCompression maps the UI compression percentage (higher means
// smaller files) to encoder quality.
func QualityFromCompression(compression float64) float64 {
	return 1 - compression/100
}

// Validate reports a validation error for parameters the engine cannot use.
func (p Parameters) Validate() error {
	const op = "parameters.validate"
	switch {
	case math.IsNaN(p.Quality) || p.Quality < 0 || p.Quality > 1:
		return apperrors.New(apperrors.KindValidation, op, fmt.Errorf("quality %v outside [0,1]", p.Quality))
	case p.MaxWidth < 0 || p.MaxHeight < 0:
		return apperrors.New(apperrors.KindValidation, op,
			fmt.Errorf("negative bounds %dx%d", p.MaxWidth, p.MaxHeight))
	case math.IsNaN(p.TargetDPI) || math.IsInf(p.TargetDPI, 0) || p.TargetDPI < 0:
		return apperrors.New(apperrors.KindValidation, op, fmt.Errorf("invalid dpi %v", p.TargetDPI))
	case !p.Format.Valid():
		return apperrors.New(apperrors.KindValidation, op, fmt.Errorf("invalid output format %q", p.Format))
	}
	return nil
}

// DPI returns the DPI to embed, applying the default.
func (p Parameters) DPI() float64 {
	if p.TargetDPI <= 0 {
		return DefaultDPI
	}
	return p.TargetDPI
}

// WithFormat returns a copy of p targeting f.
func (p Parameters) WithFormat(f Format) Parameters {
	p.Format = f
	return p
}

// TranscodeRequest is one unit of batch work. OutputPath is empty for
// previews.
type TranscodeRequest struct {
	InputPath  string
	OutputPath string
	Params     Parameters
}

// Dimensions is a pixel size.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) String() string { return fmt.Sprintf("%dx%d", d.Width, d.Height) }

// ProcessingResult is the outcome for one input file. It is immutable once
// produced.
type ProcessingResult struct {
	InputPath  string
	OutputPath string // empty on failure
	Format     Format // format actually written
	Success    bool
	Err        error
	SizeBefore int64
	SizeAfter  int64 // 0 on failure
	Elapsed    time.Duration
	Width      int
	Height     int
	FellBack   bool // the fallback policy substituted Format
}

// Kind returns the error kind of a failed result.
func (r ProcessingResult) Kind() apperrors.Kind { return apperrors.KindOf(r.Err) }

// SizeReduction returns the percentage by which the output is smaller than
// the input. Negative values mean the output grew.
func (r ProcessingResult) SizeReduction() float64 {
	if r.SizeBefore <= 0 || !r.Success {
		return 0
	}
	return float64(r.SizeBefore-r.SizeAfter) / float64(r.SizeBefore) * 100
}

// BatchProgress is emitted once per completed file and once more, with Done
// set, after every file has settled.
type BatchProgress struct {
	Completed         int
	Total             int
	LastCompletedName string
	TotalElapsed      time.Duration // set only when Done
	Done              bool
}

// Fraction returns completion in [0,1].
func (p BatchProgress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Completed) / float64(p.Total)
}

// Outcome summarises a batch for user-facing reporting.
type Outcome int

const (
	OutcomeAllSucceeded Outcome = iota
	OutcomePartial
	OutcomeNothingWritten
)

// BatchResult aggregates the ordered per-file results of one batch.
type BatchResult struct {
	ID           string
	OutputFolder string
	Results      []ProcessingResult
	Elapsed      time.Duration
}

// Succeeded returns the number of successful results.
func (b BatchResult) Succeeded() int {
	n := 0
	for _, r := range b.Results {
		if r.Success {
			n++
		}
	}
	return n
}

// Failed returns the number of failed results.
func (b BatchResult) Failed() int { return len(b.Results) - b.Succeeded() }

// Outcome classifies the batch by its success count.
func (b BatchResult) Outcome() Outcome {
	switch ok := b.Succeeded(); {
	case ok == 0:
		return OutcomeNothingWritten
	case ok < len(b.Results):
		return OutcomePartial
	}
	return OutcomeAllSucceeded
}

// Bytes returns total input and output sizes of successful results.
func (b BatchResult) Bytes() (before, after int64) {
	for _, r := range b.Results {
		if r.Success {
			before += r.SizeBefore
			after += r.SizeAfter
		}
	}
	return before, after
}
