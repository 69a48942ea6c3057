package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Skryldev/imagebatch"
	"github.com/Skryldev/imagebatch/config"
	"github.com/Skryldev/imagebatch/hooks"
)

type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
	backend   string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the config file once and applies the global flag
// overrides on top of it.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if v := strings.TrimSpace(c.flags.logLevel); v != "" {
			cfg.LogLevel = strings.ToLower(v)
		}
		if v := strings.TrimSpace(c.flags.logFormat); v != "" {
			cfg.LogFormat = strings.ToLower(v)
		}
		if v := strings.TrimSpace(c.flags.backend); v != "" {
			cfg.Backend = strings.ToLower(v)
		}
		if err := config.Validate(*cfg); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the slog logger described by cfg, writing to w.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("component", "imagebatch")
}

// withProcessor builds a Processor from the loaded config, overriding the
// worker count when workers > 0, and closes it after fn returns.
func (c *commandContext) withProcessor(cmd *cobra.Command, workers int, fn func(*imagebatch.Processor, *config.Config) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	run := *cfg
	if workers > 0 {
		run.Workers = workers
	}

	proc, err := imagebatch.New(run)
	if err != nil {
		return fmt.Errorf("initialise engine: %w", err)
	}
	defer proc.Close()

	logger := hooks.NewSlogLogger(newLogger(&run, cmd.ErrOrStderr()))
	proc.SetLogger(logger)
	if run.LogLevel == "debug" {
		proc.AddHook(hooks.NewLoggingHook(logger))
	}
	return fn(proc, &run)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
