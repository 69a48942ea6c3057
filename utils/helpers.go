package utils

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	formatJPEG    = "jpeg"
	formatPNG     = "png"
	formatWebP    = "webp"
	formatTIFF    = "tiff"
	formatBMP     = "bmp"
	formatGIF     = "gif"
	formatUnknown = "unknown"
)

var (
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	tiffSigLE = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE = []byte{0x4d, 0x4d, 0x00, 0x2a}
)

// DetectFormat sniffs the leading bytes of data and returns the codec name:
// one of jpeg, png, webp, tiff, bmp, gif or unknown.
func DetectFormat(data []byte) string {
	if len(data) < 4 {
		return formatUnknown
	}
	switch {
	case bytes.HasPrefix(data, jpegSig):
		return formatJPEG
	case bytes.HasPrefix(data, pngSig[:4]):
		return formatPNG
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return formatWebP
	case bytes.HasPrefix(data, tiffSigLE), bytes.HasPrefix(data, tiffSigBE):
		return formatTIFF
	case data[0] == 'B' && data[1] == 'M':
		return formatBMP
	case bytes.HasPrefix(data, []byte("GIF8")):
		return formatGIF
	}
	// Fallback to net/http sniffing.
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return formatJPEG
	case "image/png":
		return formatPNG
	case "image/webp":
		return formatWebP
	case "image/bmp":
		return formatBMP
	case "image/gif":
		return formatGIF
	}
	return formatUnknown
}

// OutputPath joins dir with the base name of input, its extension replaced
// by ext.
func OutputPath(dir, input, ext string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+"."+ext)
}

// CloneBytes returns a copy of b (safe for use after the source buffer is released).
func CloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// BytesReader creates an io.Reader backed by b without allocation.
func BytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
