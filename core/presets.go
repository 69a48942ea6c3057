package core

import "strings"

// Preset is a named, read-only parameter set.
type Preset struct {
	Name   string
	Params Parameters
}

// Presets returns the built-in presets in display order.
func Presets() []Preset {
	return []Preset{
		{Name: "High Quality", Params: Parameters{Quality: 0.9, Format: FormatWebP, TargetDPI: 300}},
		{Name: "Web Optimized", Params: Parameters{MaxWidth: 1920, MaxHeight: 1080, Quality: 0.8, Format: FormatWebP, TargetDPI: 72}},
		{Name: "Social Media", Params: Parameters{MaxWidth: 1080, MaxHeight: 1080, Quality: 0.7, Format: FormatJPEG, TargetDPI: 72}},
		{Name: "Print Ready", Params: Parameters{Quality: 0.85, Format: FormatPNG, TargetDPI: 300}},
	}
}

// PresetByName looks up a built-in preset, ignoring case and surrounding
// whitespace. Hyphens and underscores match spaces ("web-optimized").
func PresetByName(name string) (Preset, bool) {
	norm := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		return strings.NewReplacer("-", " ", "_", " ").Replace(s)
	}
	want := norm(name)
	for _, p := range Presets() {
		if norm(p.Name) == want {
			return p, true
		}
	}
	return Preset{}, false
}
