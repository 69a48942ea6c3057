package config_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Skryldev/imagebatch/config"
	"github.com/Skryldev/imagebatch/core"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	p, err := cfg.Defaults.Parameters()
	if err != nil {
		t.Fatalf("Parameters: %v", err)
	}
	if p.Format != core.FormatJPEG || p.Quality < 0.799 || p.Quality > 0.801 || p.TargetDPI != 72 {
		t.Errorf("default parameters: %+v", p)
	}
	if cfg.ResolvedWorkers() < 1 {
		t.Error("resolved workers < 1")
	}
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, path, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("exists reported for a missing file")
	}
	if !strings.HasSuffix(path, filepath.Join("imagebatch", "config.toml")) || cfg.PreviewCacheSize != 32 {
		t.Errorf("got %q, %+v", path, cfg)
	}
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("got %v, want a not-exist error", err)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
workers = 3
preview_cache_size = 8
resampler = "bilinear"
log_level = "DEBUG"

[defaults]
max_width = 1920
max_height = 1080
compression = 30.0
format = "webp"
dpi = 150.0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Error("exists = false")
	}
	if cfg.Workers != 3 || cfg.PreviewCacheSize != 8 || cfg.Resampler != "bilinear" || cfg.LogLevel != "debug" {
		t.Errorf("top level: %+v", cfg)
	}
	p, err := cfg.Defaults.Parameters()
	if err != nil {
		t.Fatalf("Parameters: %v", err)
	}
	if p.MaxWidth != 1920 || p.MaxHeight != 1080 || p.Format != core.FormatWebP || p.TargetDPI != 150 {
		t.Errorf("parameters: %+v", p)
	}
	if p.Quality < 0.699 || p.Quality > 0.701 {
		t.Errorf("quality: got %v, want 0.7", p.Quality)
	}
	// untouched fields keep their defaults
	if cfg.FilePermissions != 0o644 || cfg.Backend != "std" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "colour_scheme = \"dark\"\n",
		"bad format":    "[defaults]\nformat = \"heic\"\n",
		"bad cache":     "preview_cache_size = 0\n",
		"bad backend":   "backend = \"imagemagick\"\n",
		"bad syntax":    "workers = = 2\n",
		"bad compress":  "[defaults]\ncompression = 140.0\n",
		"negative pool": "workers = -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestDefaultConfigPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	got, err := config.DefaultConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/xdg", "imagebatch", "config.toml"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
