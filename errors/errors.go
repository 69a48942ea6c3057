package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can react to it without matching on
// error strings. Every failed ProcessingResult carries exactly one Kind.
type Kind string

const (
	KindInputNotFound           Kind = "input_not_found"
	KindFailedToLoadImage       Kind = "failed_to_load_image"
	KindCorruptedImageFile      Kind = "corrupted_image_file"
	KindUnsupportedOutputFormat Kind = "unsupported_output_format"
	KindEncodeFailure           Kind = "encode_failure"
	KindInvalidOutputPath       Kind = "invalid_output_path"
	KindDiskFull                Kind = "disk_full"
	KindPermissionDenied        Kind = "permission_denied"
	KindValidation              Kind = "validation_error"

	// KindWriteFailure is a write error that matched neither permission nor
	// space exhaustion; the underlying error is kept as-is.
	KindWriteFailure Kind = "write_failure"
	KindCanceled     Kind = "canceled"
)

// Description returns a short human-readable label for the kind.
func (k Kind) Description() string {
	switch k {
	case KindInputNotFound:
		return "input file not found"
	case KindFailedToLoadImage:
		return "failed to load the image file"
	case KindCorruptedImageFile:
		return "corrupted image file"
	case KindUnsupportedOutputFormat:
		return "unsupported output format"
	case KindEncodeFailure:
		return "failed to encode image"
	case KindInvalidOutputPath:
		return "invalid output path"
	case KindDiskFull:
		return "disk is full"
	case KindPermissionDenied:
		return "permission denied"
	case KindValidation:
		return "invalid processing parameters"
	case KindWriteFailure:
		return "failed to write output"
	case KindCanceled:
		return "canceled"
	}
	return string(k)
}

// ProcessingError is the structured error type used throughout the module.
type ProcessingError struct {
	Kind Kind
	Op   string // operation name
	Err  error
}

func (e *ProcessingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// New creates a ProcessingError of the given kind.
func New(kind Kind, op string, err error) *ProcessingError {
	return &ProcessingError{Kind: kind, Op: op, Err: err}
}

// Wrap wraps an existing error with context. A nil err stays nil, and an err
// that already carries a kind keeps it.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return err
	}
	return New(kind, op, err)
}

// KindOf returns the kind carried by err, or "" when err is nil or
// unclassified.
func KindOf(err error) Kind {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Sentinel errors for common failure modes.
var (
	ErrNoEncoder         = errors.New("no encoder available")
	ErrEmptyOutput       = errors.New("encoder produced no output")
	ErrZeroDimensions    = errors.New("image has zero width or height")
	ErrNotRegularFile    = errors.New("not a regular file")
	ErrInsufficientSpace = errors.New("insufficient free space")
	ErrNoOutputFolder    = errors.New("output folder not set")
	ErrEmptyInput        = errors.New("empty input")
)
