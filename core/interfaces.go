package core

import (
	"context"
	"io"
	"time"
)

// Decoder converts a reader into an in-memory ImageData.
// Implementations live in adapters/decoder/ and adapters/vips/.
type Decoder interface {
	// Decode reads from r and returns a decoded ImageData.
	Decode(ctx context.Context, r io.Reader) (*ImageData, error)
	// CanDecode reports whether this decoder handles the given format hint.
	CanDecode(format Format) bool
}

// Encoder serialises an ImageData to bytes in a target format.
// Implementations live in adapters/encoder/ and adapters/vips/.
type Encoder interface {
	Encode(ctx context.Context, img *ImageData, opts EncodeOptions) ([]byte, error)
	CanEncode(format Format) bool
	// Available reports whether the encoder can run in this build. A
	// registered but unavailable encoder is treated as missing.
	Available() bool
}

// EncodeOptions carries format-specific encoding parameters.
type EncodeOptions struct {
	Quality  float64 // 0..1
	DPI      float64 // embedded where the container supports it
	Lossless bool    // WebP only
}

// Resizer scales decoded pixels to exact dimensions.
type Resizer interface {
	Resize(ctx context.Context, img *ImageData, width, height int) (*ImageData, error)
}

// MetricsCollector receives performance observations from the engine.
type MetricsCollector interface {
	RecordProcessingTime(stepName string, d time.Duration)
	RecordThroughput(bytes int64)
	RecordError(stepName string, kind string)
	RecordFallback(from, to Format)
	RecordCache(hit bool)
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Registry maps Format values to Decoder/Encoder implementations and holds
// the resizer used by the fit step.
type Registry interface {
	DecoderFor(format Format) (Decoder, bool)
	EncoderFor(format Format) (Encoder, bool)
	RegisterDecoder(format Format, d Decoder)
	RegisterEncoder(format Format, e Encoder)
	// FallbackDecoder handles inputs whose sniffed codec has no Format of
	// its own (TIFF, BMP, GIF).
	FallbackDecoder() Decoder
	Resizer() Resizer
}
