//go:build vips

package vips_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Skryldev/imagebatch/adapters/decoder"
	"github.com/Skryldev/imagebatch/adapters/encoder"
	"github.com/Skryldev/imagebatch/adapters/resize"
	"github.com/Skryldev/imagebatch/adapters/vips"
	"github.com/Skryldev/imagebatch/core"
	"github.com/Skryldev/imagebatch/engine"
)

var (
	backendOnce sync.Once
	backend     *vips.Backend
)

func vipsBackend() *vips.Backend {
	backendOnce.Do(func() { backend = vips.NewBackend(vips.BackendConfig{}) })
	return backend
}

func writeJPEG(b *testing.B, w, h int) string {
	b.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 92}); err != nil {
		b.Fatal(err)
	}
	path := filepath.Join(b.TempDir(), "bench.jpg")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		b.Fatal(err)
	}
	return path
}

func stdRegistry(b *testing.B) core.Registry {
	b.Helper()
	reg := core.NewRegistry()
	decoder.Register(reg)
	encoder.Register(reg)
	r, err := resize.New("")
	if err != nil {
		b.Fatal(err)
	}
	reg.SetResizer(r)
	return reg
}

func vipsRegistry() core.Registry {
	reg := core.NewRegistry()
	vips.Register(reg, vipsBackend())
	return reg
}

func benchTranscode(b *testing.B, reg core.Registry, path string, params core.Parameters) {
	b.Helper()
	tr := engine.NewTranscoder(reg)
	if info, err := os.Stat(path); err == nil {
		b.SetBytes(info.Size())
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tr.Transcode(context.Background(), path, params); err != nil {
			b.Fatalf("Transcode: %v", err)
		}
	}
}

// ─── Resize + JPEG ────────────────────────────────────────────────────────────

func BenchmarkTranscodeJPEG_Stdlib_1920to960(b *testing.B) {
	path := writeJPEG(b, 1920, 1080)
	benchTranscode(b, stdRegistry(b), path, core.Parameters{MaxWidth: 960, Quality: 0.85, Format: core.FormatJPEG})
}

func BenchmarkTranscodeJPEG_Vips_1920to960(b *testing.B) {
	path := writeJPEG(b, 1920, 1080)
	benchTranscode(b, vipsRegistry(), path, core.Parameters{MaxWidth: 960, Quality: 0.85, Format: core.FormatJPEG})
}

// ─── Fit 4K into a 1080p box ──────────────────────────────────────────────────

func BenchmarkFit4K_Stdlib(b *testing.B) {
	path := writeJPEG(b, 3840, 2160)
	benchTranscode(b, stdRegistry(b), path, core.Parameters{MaxWidth: 1920, MaxHeight: 1080, Quality: 0.8, Format: core.FormatPNG})
}

func BenchmarkFit4K_Vips(b *testing.B) {
	path := writeJPEG(b, 3840, 2160)
	benchTranscode(b, vipsRegistry(), path, core.Parameters{MaxWidth: 1920, MaxHeight: 1080, Quality: 0.8, Format: core.FormatPNG})
}

// ─── WebP ─────────────────────────────────────────────────────────────────────

func BenchmarkTranscodeWebP_Stdlib(b *testing.B) {
	reg := stdRegistry(b)
	if !core.EncoderAvailable(reg, core.FormatWebP) {
		b.Skip("webp encoder unavailable in this build")
	}
	path := writeJPEG(b, 1280, 720)
	benchTranscode(b, reg, path, core.Parameters{Quality: 0.8, Format: core.FormatWebP})
}

func BenchmarkTranscodeWebP_Vips(b *testing.B) {
	reg := vipsRegistry()
	if !core.EncoderAvailable(reg, core.FormatWebP) {
		b.Skip("libvips built without webp")
	}
	path := writeJPEG(b, 1280, 720)
	benchTranscode(b, reg, path, core.Parameters{Quality: 0.8, Format: core.FormatWebP})
}
