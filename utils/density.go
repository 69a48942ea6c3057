package utils

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"math"
)

// Neither image/jpeg nor image/png writes resolution metadata, so the
// encoders patch it into the encoded stream afterwards.

var (
	errNotJPEG = errors.New("not a JPEG stream")
	errNotPNG  = errors.New("not a PNG stream")
)

const metresPerInch = 0.0254

func clampDensity(dpi float64) uint16 {
	v := math.Round(dpi)
	switch {
	case v < 1:
		return 1
	case v > math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(v)
}

// ── JPEG (JFIF APP0) ──────────────────────────────────────────────────────────

// SetJFIFDensity returns data with a JFIF APP0 segment declaring dpi in
// dots per inch. An existing JFIF segment directly after SOI is patched in
// place; otherwise a new one is inserted.
func SetJFIFDensity(data []byte, dpi float64) ([]byte, error) {
	if !bytes.HasPrefix(data, []byte{0xff, 0xd8}) {
		return nil, errNotJPEG
	}
	d := clampDensity(dpi)

	if isJFIFSegment(data[2:]) {
		out := CloneBytes(data)
		out[13] = 1
		binary.BigEndian.PutUint16(out[14:16], d)
		binary.BigEndian.PutUint16(out[16:18], d)
		return out, nil
	}

	seg := make([]byte, 18)
	seg[0], seg[1] = 0xff, 0xe0
	binary.BigEndian.PutUint16(seg[2:4], 16)
	copy(seg[4:9], "JFIF\x00")
	seg[9], seg[10] = 1, 1 // version 1.01
	seg[11] = 1            // dots per inch
	binary.BigEndian.PutUint16(seg[12:14], d)
	binary.BigEndian.PutUint16(seg[14:16], d)
	// seg[16], seg[17]: no thumbnail

	out := make([]byte, 0, len(data)+len(seg))
	out = append(out, data[:2]...)
	out = append(out, seg...)
	out = append(out, data[2:]...)
	return out, nil
}

// isJFIFSegment reports whether b starts with an APP0 JFIF segment.
func isJFIFSegment(b []byte) bool {
	return len(b) >= 16 && b[0] == 0xff && b[1] == 0xe0 && string(b[4:9]) == "JFIF\x00"
}

// JFIFDensity returns the horizontal density declared by the JFIF header,
// converted to dots per inch. ok is false when there is no JFIF segment or
// it carries only an aspect ratio.
func JFIFDensity(data []byte) (dpi float64, ok bool) {
	if !bytes.HasPrefix(data, []byte{0xff, 0xd8}) {
		return 0, false
	}
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xff {
			return 0, false
		}
		marker := data[pos+1]
		if marker == 0xda || marker == 0xd9 { // SOS, EOI
			return 0, false
		}
		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if length < 2 || pos+2+length > len(data) {
			return 0, false
		}
		if marker == 0xe0 && isJFIFSegment(data[pos:]) {
			x := float64(binary.BigEndian.Uint16(data[pos+12 : pos+14]))
			switch data[pos+11] {
			case 1:
				return x, true
			case 2:
				return x * 2.54, true
			}
			return 0, false
		}
		pos += 2 + length
	}
	return 0, false
}

// ── PNG (pHYs) ────────────────────────────────────────────────────────────────

// SetPNGDensity returns data with a pHYs chunk declaring dpi, converted to
// pixels per metre. An existing pHYs chunk is replaced; otherwise one is
// inserted after IHDR.
func SetPNGDensity(data []byte, dpi float64) ([]byte, error) {
	if !bytes.HasPrefix(data, pngSig) {
		return nil, errNotPNG
	}
	chunk := physChunk(dpi)

	insertAt := -1
	pos := len(pngSig)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		name := string(data[pos+4 : pos+8])
		end := pos + 12 + length
		if end > len(data) {
			return nil, errNotPNG
		}
		switch name {
		case "IHDR":
			insertAt = end
		case "pHYs":
			out := make([]byte, 0, len(data)-(end-pos)+len(chunk))
			out = append(out, data[:pos]...)
			out = append(out, chunk...)
			out = append(out, data[end:]...)
			return out, nil
		}
		if name == "IDAT" || name == "IEND" {
			break
		}
		pos = end
	}
	if insertAt < 0 {
		return nil, errNotPNG
	}

	out := make([]byte, 0, len(data)+len(chunk))
	out = append(out, data[:insertAt]...)
	out = append(out, chunk...)
	out = append(out, data[insertAt:]...)
	return out, nil
}

func physChunk(dpi float64) []byte {
	ppm := uint32(math.Round(float64(clampDensity(dpi)) / metresPerInch))

	c := make([]byte, 4+4+9+4)
	binary.BigEndian.PutUint32(c[0:4], 9)
	copy(c[4:8], "pHYs")
	binary.BigEndian.PutUint32(c[8:12], ppm)
	binary.BigEndian.PutUint32(c[12:16], ppm)
	c[16] = 1 // unit: metre
	binary.BigEndian.PutUint32(c[17:21], crc32.ChecksumIEEE(c[4:17]))
	return c
}

// PNGDensity returns the horizontal density of the pHYs chunk in dots per
// inch, rounded to a whole number to match the densities SetPNGDensity
// writes. ok is false when the chunk is missing or has no unit.
func PNGDensity(data []byte) (dpi float64, ok bool) {
	if !bytes.HasPrefix(data, pngSig) {
		return 0, false
	}
	pos := len(pngSig)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		name := string(data[pos+4 : pos+8])
		if pos+12+length > len(data) {
			return 0, false
		}
		if name == "pHYs" && length == 9 {
			body := data[pos+8 : pos+17]
			if body[8] != 1 {
				return 0, false
			}
			ppm := float64(binary.BigEndian.Uint32(body[0:4]))
			return math.Round(ppm * metresPerInch), true
		}
		if name == "IDAT" || name == "IEND" {
			return 0, false
		}
		pos += 12 + length
	}
	return 0, false
}
