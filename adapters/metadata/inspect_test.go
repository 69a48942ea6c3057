package metadata_test

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Skryldev/imagebatch/adapters/metadata"
	apperrors "github.com/Skryldev/imagebatch/errors"
	"github.com/Skryldev/imagebatch/utils"
)

func write(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInspect_JPEGWithJFIFDensity(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 64, 48)), nil); err != nil {
		t.Fatal(err)
	}
	data, err := utils.SetJFIFDensity(buf.Bytes(), 240)
	if err != nil {
		t.Fatal(err)
	}

	info, err := metadata.Inspect(write(t, "photo.jpeg", data))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Width != 64 || info.Height != 48 {
		t.Errorf("dims: got %v", info.Dimensions())
	}
	if info.FileType != "JPEG" || info.Codec != "jpeg" {
		t.Errorf("type: %q / %q", info.FileType, info.Codec)
	}
	if info.DPI != 240 || info.DPISource != metadata.DPISourceJFIF {
		t.Errorf("dpi: got %v from %s", info.DPI, info.DPISource)
	}
	if info.FileSize != int64(len(data)) {
		t.Errorf("size: got %d, want %d", info.FileSize, len(data))
	}
}

func TestInspect_PNGDensityAndDefault(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 5, 7))); err != nil {
		t.Fatal(err)
	}

	plain, err := metadata.Inspect(write(t, "noext", buf.Bytes()))
	if err != nil {
		t.Fatalf("Inspect plain: %v", err)
	}
	if plain.DPI != 72 || plain.DPISource != metadata.DPISourceDefault || plain.FileType != "Unknown" {
		t.Errorf("plain: %+v", plain)
	}

	dense, err := utils.SetPNGDensity(buf.Bytes(), 300)
	if err != nil {
		t.Fatal(err)
	}
	info, err := metadata.Inspect(write(t, "scan.png", dense))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if math.Abs(info.DPI-300) > 0.01 || info.DPISource != metadata.DPISourcePHYs {
		t.Errorf("dpi: got %v from %s", info.DPI, info.DPISource)
	}
}

func TestInspect_Errors(t *testing.T) {
	if _, err := metadata.Inspect(filepath.Join(t.TempDir(), "missing.png")); !apperrors.IsKind(err, apperrors.KindInputNotFound) {
		t.Errorf("missing: got %v", err)
	}
	if _, err := metadata.Inspect(write(t, "bad.png", []byte("nope"))); !apperrors.IsKind(err, apperrors.KindFailedToLoadImage) {
		t.Errorf("garbage: got %v", err)
	}
}
