package core_test

import (
	"errors"
	"math"
	"testing"

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
)

func TestFitWithin(t *testing.T) {
	cases := []struct {
		name       string
		w, h       int
		maxW, maxH int
		want       core.Dimensions
	}{
		{"both bounds landscape", 4000, 3000, 1920, 1080, core.Dimensions{Width: 1440, Height: 1080}},
		{"both bounds portrait", 3000, 4000, 1920, 1080, core.Dimensions{Width: 810, Height: 1080}},
		{"width only", 800, 600, 400, 0, core.Dimensions{Width: 400, Height: 300}},
		{"height only", 800, 600, 0, 150, core.Dimensions{Width: 200, Height: 150}},
		{"no bounds", 123, 45, 0, 0, core.Dimensions{Width: 123, Height: 45}},
		{"upscale allowed", 100, 50, 400, 400, core.Dimensions{Width: 400, Height: 200}},
		{"never below one pixel", 10000, 10, 100, 0, core.Dimensions{Width: 100, Height: 1}},
		{"square into square", 1080, 1080, 1080, 1080, core.Dimensions{Width: 1080, Height: 1080}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := core.FitWithin(tc.w, tc.h, tc.maxW, tc.maxH)
			if got != tc.want {
				t.Errorf("FitWithin(%d,%d,%d,%d): got %v, want %v", tc.w, tc.h, tc.maxW, tc.maxH, got, tc.want)
			}
		})
	}
}

func TestFitWithin_BoxProperty(t *testing.T) {
	sizes := [][2]int{{4000, 3000}, {3000, 4000}, {1234, 567}, {17, 999}, {640, 480}, {1, 1}}
	boxes := [][2]int{{1920, 1080}, {800, 800}, {100, 300}, {5000, 5000}}
	const eps = 0.01
	for _, s := range sizes {
		for _, b := range boxes {
			got := core.FitWithin(s[0], s[1], b[0], b[1])
			rw := float64(got.Width) / float64(b[0])
			rh := float64(got.Height) / float64(b[1])
			if math.Max(rw, rh) > 1+eps {
				t.Errorf("%v in %v: %v exceeds the box", s, b, got)
			}
			// one axis touches its bound within rounding
			if math.Abs(float64(got.Width-b[0])) > 1 && math.Abs(float64(got.Height-b[1])) > 1 {
				t.Errorf("%v in %v: %v touches neither bound", s, b, got)
			}
			if got.Width > 1 && got.Height > 1 {
				want := float64(s[0]) / float64(s[1])
				have := float64(got.Width) / float64(got.Height)
				if math.Abs(have-want)/want > 0.05 {
					t.Errorf("%v in %v: aspect %.3f, want %.3f", s, b, have, want)
				}
			}
		}
	}
}

func TestQualityFromCompression(t *testing.T) {
	if q := core.QualityFromCompression(0); q != 1.0 {
		t.Errorf("compression 0: got %v, want 1.0", q)
	}
	if q := core.QualityFromCompression(100); q != 0.0 {
		t.Errorf("compression 100: got %v, want 0.0", q)
	}
	if q := core.QualityFromCompression(20); math.Abs(q-0.8) > 1e-9 {
		t.Errorf("compression 20: got %v, want 0.8", q)
	}
}

func TestParameters_Validate(t *testing.T) {
	valid := core.Parameters{Quality: 0.8, Format: core.FormatJPEG}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid params: %v", err)
	}

	bad := []core.Parameters{
		{Quality: 1.5, Format: core.FormatJPEG},
		{Quality: -0.1, Format: core.FormatJPEG},
		{Quality: math.NaN(), Format: core.FormatJPEG},
		{Quality: 0.5, Format: core.FormatJPEG, MaxWidth: -1},
		{Quality: 0.5, Format: core.FormatJPEG, TargetDPI: -72},
		{Quality: 0.5, Format: core.Format("GIF")},
		{Quality: 0.5},
	}
	for i, p := range bad {
		err := p.Validate()
		if !apperrors.IsKind(err, apperrors.KindValidation) {
			t.Errorf("case %d: got %v, want validation error", i, err)
		}
	}
}

func TestParameters_DPI(t *testing.T) {
	if got := (core.Parameters{}).DPI(); got != core.DefaultDPI {
		t.Errorf("zero dpi: got %v, want %v", got, core.DefaultDPI)
	}
	if got := (core.Parameters{TargetDPI: 300}).DPI(); got != 300 {
		t.Errorf("dpi: got %v, want 300", got)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]core.Format{
		"jpeg": core.FormatJPEG, "JPG": core.FormatJPEG, " png ": core.FormatPNG, "WebP": core.FormatWebP,
	}
	for in, want := range cases {
		got, err := core.ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q): got %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := core.ParseFormat("heic"); !apperrors.IsKind(err, apperrors.KindUnsupportedOutputFormat) {
		t.Errorf("heic: got %v, want unsupported output format", err)
	}
	if ext := core.FormatJPEG.Extension(); ext != "jpg" {
		t.Errorf("jpeg extension: got %q, want jpg", ext)
	}
}

func TestDecideFallback(t *testing.T) {
	unsupported := apperrors.New(apperrors.KindUnsupportedOutputFormat, "encode", apperrors.ErrNoEncoder)
	encodeFail := apperrors.New(apperrors.KindEncodeFailure, "encode", apperrors.ErrEmptyOutput)

	cases := []struct {
		name    string
		desired core.Format
		err     error
		want    core.Format
		ok      bool
	}{
		{"webp unavailable", core.FormatWebP, unsupported, core.FormatJPEG, true},
		{"webp wrapped unavailable", core.FormatWebP, errors.Join(errors.New("ctx"), unsupported), core.FormatJPEG, true},
		{"webp encode failure", core.FormatWebP, encodeFail, "", false},
		{"png unavailable", core.FormatPNG, unsupported, "", false},
		{"jpeg unavailable", core.FormatJPEG, unsupported, "", false},
		{"webp nil error", core.FormatWebP, nil, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := core.DecideFallback(tc.desired, tc.err)
			if got != tc.want || ok != tc.ok {
				t.Errorf("got (%q, %v), want (%q, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestPresetByName(t *testing.T) {
	p, ok := core.PresetByName("web-optimized")
	if !ok {
		t.Fatal("web-optimized not found")
	}
	if p.Params.MaxWidth != 1920 || p.Params.MaxHeight != 1080 || p.Params.Format != core.FormatWebP {
		t.Errorf("unexpected preset params: %+v", p.Params)
	}
	for _, p := range core.Presets() {
		if err := p.Params.Validate(); err != nil {
			t.Errorf("preset %q invalid: %v", p.Name, err)
		}
	}
	if _, ok := core.PresetByName("nope"); ok {
		t.Error("unknown preset found")
	}
}

func TestBatchResult_Outcome(t *testing.T) {
	ok := core.ProcessingResult{Success: true, SizeBefore: 100, SizeAfter: 40}
	bad := core.ProcessingResult{Err: apperrors.New(apperrors.KindDiskFull, "write", nil)}

	cases := []struct {
		results []core.ProcessingResult
		want    core.Outcome
	}{
		{[]core.ProcessingResult{ok, ok}, core.OutcomeAllSucceeded},
		{[]core.ProcessingResult{ok, bad}, core.OutcomePartial},
		{[]core.ProcessingResult{bad, bad}, core.OutcomeNothingWritten},
	}
	for i, tc := range cases {
		if got := (core.BatchResult{Results: tc.results}).Outcome(); got != tc.want {
			t.Errorf("case %d: got %v, want %v", i, got, tc.want)
		}
	}
	if r := ok.SizeReduction(); r != 60 {
		t.Errorf("size reduction: got %v, want 60", r)
	}
	if k := bad.Kind(); k != apperrors.KindDiskFull {
		t.Errorf("kind: got %q", k)
	}
}
