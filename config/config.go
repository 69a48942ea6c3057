package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/Skryldev/imagebatch/core"
)

// Config is the top-level configuration struct. All fields have safe
// defaults so callers can start with Default() and override only what they
// need.
type Config struct {
	// Worker pool size for batches; 0 resolves to runtime.NumCPU().
	Workers int `toml:"workers"`

	// PreviewCacheSize bounds the number of cached preview encodes.
	PreviewCacheSize int `toml:"preview_cache_size"`

	// ScratchDir holds the transient files used to measure preview sizes.
	// Empty means os.TempDir().
	ScratchDir string `toml:"scratch_dir"`

	// Resampler names the interpolation kernel of the pure-Go backend:
	// nearest, approx-bilinear, bilinear or catmull-rom.
	Resampler string `toml:"resampler"`

	// Backend selects the codec capability: "std" or "vips".
	Backend string `toml:"backend"`

	FilePermissions uint32 `toml:"file_permissions"`

	LogLevel  string `toml:"log_level"`  // "debug", "info", "warn", "error"
	LogFormat string `toml:"log_format"` // "text" or "json"

	Defaults Defaults `toml:"defaults"`
}

// Defaults are the processing parameters the CLI falls back to when a flag
// is not given.
type Defaults struct {
	MaxWidth    int     `toml:"max_width"`
	MaxHeight   int     `toml:"max_height"`
	Compression float64 `toml:"compression"` // percent; quality = 1 - compression/100
	Format      string  `toml:"format"`
	DPI         float64 `toml:"dpi"`
	OutputDir   string  `toml:"output_dir"`
}

// Default returns a Config populated with sensible production defaults.
func Default() Config {
	return Config{
		Workers:          0, // resolved at runtime to NumCPU
		PreviewCacheSize: 32,
		Resampler:        "catmull-rom",
		Backend:          "std",
		FilePermissions:  0o644,
		LogLevel:         "info",
		LogFormat:        "text",
		Defaults: Defaults{
			Compression: 20,
			Format:      string(core.FormatJPEG),
			DPI:         core.DefaultDPI,
		},
	}
}

// ResolvedWorkers returns the effective worker count.
func (c Config) ResolvedWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// Parameters converts the configured defaults into processing parameters.
func (d Defaults) Parameters() (core.Parameters, error) {
	f, err := core.ParseFormat(d.Format)
	if err != nil {
		return core.Parameters{}, err
	}
	p := core.Parameters{
		MaxWidth:  d.MaxWidth,
		MaxHeight: d.MaxHeight,
		Quality:   core.QualityFromCompression(d.Compression),
		Format:    f,
		TargetDPI: d.DPI,
	}
	return p, p.Validate()
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.Workers < 0 {
		return errors.New("config: workers must not be negative")
	}
	if c.PreviewCacheSize < 1 {
		return errors.New("config: preview_cache_size must be at least 1")
	}
	switch c.Backend {
	case "std", "vips":
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	if c.FilePermissions == 0 || c.FilePermissions > 0o777 {
		return fmt.Errorf("config: file_permissions %o out of range", c.FilePermissions)
	}
	if c.Defaults.Compression < 0 || c.Defaults.Compression > 100 {
		return errors.New("config: defaults.compression must be between 0 and 100")
	}
	if _, err := c.Defaults.Parameters(); err != nil {
		return fmt.Errorf("config: defaults: %w", err)
	}
	return nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/imagebatch/config.toml, or the
// same under ~/.config.
func DefaultConfigPath() (string, error) {
	if base, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "imagebatch", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "imagebatch", "config.toml"), nil
}

// Load reads the TOML file at path over the defaults. An empty path uses
// DefaultConfigPath, where a missing file is not an error; the returned bool
// reports whether a file was read. A path given explicitly must exist.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, "", false, err
		}
		path = p
	}

	exists := true
	file, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && explicit:
		return nil, "", false, fmt.Errorf("config file %s: %w", path, err)
	case errors.Is(err, fs.ErrNotExist):
		exists = false
	case err != nil:
		return nil, "", false, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := Validate(cfg); err != nil {
		return nil, "", false, err
	}
	return &cfg, path, exists, nil
}
