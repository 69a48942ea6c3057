// Package hooks provides the Hook, Logger and MetricsCollector
// implementations used by the engine and the CLI.
package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Skryldev/imagebatch/core"
	apperrors "github.com/Skryldev/imagebatch/errors"
)

// ── Structured logger adapter ─────────────────────────────────────────────────

// SlogLogger wraps the standard library slog.Logger to satisfy core.Logger.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger creates a logger backed by slog.
func NewSlogLogger(l *slog.Logger) *SlogLogger { return &SlogLogger{log: l} }

func (s *SlogLogger) Debug(msg string, fields ...interface{}) {
	s.log.Debug(msg, toAttrs(fields)...)
}
func (s *SlogLogger) Info(msg string, fields ...interface{}) {
	s.log.Info(msg, toAttrs(fields)...)
}
func (s *SlogLogger) Warn(msg string, fields ...interface{}) {
	s.log.Warn(msg, toAttrs(fields)...)
}
func (s *SlogLogger) Error(msg string, fields ...interface{}) {
	s.log.Error(msg, toAttrs(fields)...)
}

func toAttrs(fields []interface{}) []any { return fields }

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}

// ── Logging hook ──────────────────────────────────────────────────────────────

// LoggingHook logs before/after each pipeline step.
type LoggingHook struct {
	logger core.Logger
}

// NewLoggingHook creates a LoggingHook.
func NewLoggingHook(l core.Logger) *LoggingHook { return &LoggingHook{logger: l} }

func (h *LoggingHook) BeforeStep(_ context.Context, stepName string, img *core.ImageData) {
	if img == nil {
		h.logger.Debug("pipeline.step.start", "step", stepName)
		return
	}
	h.logger.Debug("pipeline.step.start",
		"step", stepName,
		"file", img.Name,
		"width", img.Meta.Width,
		"height", img.Meta.Height,
	)
}

func (h *LoggingHook) AfterStep(_ context.Context, stepName string, img *core.ImageData, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("pipeline.step.error",
			"step", stepName,
			"duration_ms", d.Milliseconds(),
			"kind", apperrors.KindOf(err),
			"error", err.Error(),
		)
		return
	}
	out := "nil"
	if img != nil {
		out = fmt.Sprintf("%dx%d %s %dB", img.Meta.Width, img.Meta.Height, img.Format, img.Meta.SizeBytes)
	}
	h.logger.Debug("pipeline.step.done",
		"step", stepName,
		"duration_ms", d.Milliseconds(),
		"output", out,
	)
}

// ── In-memory metrics collector ───────────────────────────────────────────────

// InMemoryMetrics accumulates metrics; safe for concurrent use.
type InMemoryMetrics struct {
	mu sync.RWMutex

	stepDurationsMs map[string]int64 // cumulative ms per step
	stepCalls       map[string]int64 // call count per step
	stepErrors      map[string]int64
	errorKinds      map[string]int64
	fallbacks       map[string]int64 // keyed "WEBP->JPEG"

	totalThroughputB int64
	cacheHits        int64
	cacheMisses      int64
}

// NewInMemoryMetrics creates an empty metrics store.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		stepDurationsMs: make(map[string]int64),
		stepCalls:       make(map[string]int64),
		stepErrors:      make(map[string]int64),
		errorKinds:      make(map[string]int64),
		fallbacks:       make(map[string]int64),
	}
}

func (m *InMemoryMetrics) RecordProcessingTime(stepName string, d time.Duration) {
	m.mu.Lock()
	m.stepDurationsMs[stepName] += d.Milliseconds()
	m.stepCalls[stepName]++
	m.mu.Unlock()
}

func (m *InMemoryMetrics) RecordThroughput(bytes int64) {
	atomic.AddInt64(&m.totalThroughputB, bytes)
}

func (m *InMemoryMetrics) RecordError(stepName string, kind string) {
	m.mu.Lock()
	m.stepErrors[stepName]++
	m.errorKinds[kind]++
	m.mu.Unlock()
}

func (m *InMemoryMetrics) RecordFallback(from, to core.Format) {
	m.mu.Lock()
	m.fallbacks[string(from)+"->"+string(to)]++
	m.mu.Unlock()
}

func (m *InMemoryMetrics) RecordCache(hit bool) {
	if hit {
		atomic.AddInt64(&m.cacheHits, 1)
		return
	}
	atomic.AddInt64(&m.cacheMisses, 1)
}

// Snapshot returns a copy of current metrics.
func (m *InMemoryMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		StepDurationsMs:  copyCounts(m.stepDurationsMs),
		StepCalls:        copyCounts(m.stepCalls),
		StepErrors:       copyCounts(m.stepErrors),
		ErrorKinds:       copyCounts(m.errorKinds),
		Fallbacks:        copyCounts(m.fallbacks),
		TotalThroughputB: atomic.LoadInt64(&m.totalThroughputB),
		CacheHits:        atomic.LoadInt64(&m.cacheHits),
		CacheMisses:      atomic.LoadInt64(&m.cacheMisses),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// MetricsSnapshot is an immutable point-in-time copy of metrics.
type MetricsSnapshot struct {
	StepDurationsMs  map[string]int64
	StepCalls        map[string]int64
	StepErrors       map[string]int64
	ErrorKinds       map[string]int64
	Fallbacks        map[string]int64
	TotalThroughputB int64
	CacheHits        int64
	CacheMisses      int64
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) RecordProcessingTime(string, time.Duration) {}
func (NopMetrics) RecordThroughput(int64)                     {}
func (NopMetrics) RecordError(string, string)                 {}
func (NopMetrics) RecordFallback(core.Format, core.Format)    {}
func (NopMetrics) RecordCache(bool)                           {}

// ── Metrics hook ──────────────────────────────────────────────────────────────

// MetricsHook feeds pipeline events into a MetricsCollector.
type MetricsHook struct {
	collector core.MetricsCollector
}

// NewMetricsHook creates a MetricsHook.
func NewMetricsHook(c core.MetricsCollector) *MetricsHook { return &MetricsHook{collector: c} }

func (h *MetricsHook) BeforeStep(_ context.Context, _ string, _ *core.ImageData) {}

func (h *MetricsHook) AfterStep(_ context.Context, stepName string, img *core.ImageData, d time.Duration, err error) {
	h.collector.RecordProcessingTime(stepName, d)
	if err != nil {
		h.collector.RecordError(stepName, string(apperrors.KindOf(err)))
		return
	}
	if img != nil && stepName == "encode" {
		h.collector.RecordThroughput(img.Meta.SizeBytes)
	}
}

var (
	_ core.Logger           = (*SlogLogger)(nil)
	_ core.Logger           = NopLogger{}
	_ core.Hook             = (*LoggingHook)(nil)
	_ core.Hook             = (*MetricsHook)(nil)
	_ core.MetricsCollector = (*InMemoryMetrics)(nil)
	_ core.MetricsCollector = NopMetrics{}
)
