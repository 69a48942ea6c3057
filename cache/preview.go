// Package cache memoises preview encodes keyed by the full parameter tuple.
package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Skryldev/imagebatch/core"
)

// DefaultSize is the preview cache capacity when none is configured.
const DefaultSize = 32

// PreviewKey identifies one preview encode. Any field change is a miss.
type PreviewKey struct {
	InputPath string
	MaxWidth  int
	MaxHeight int
	Quality   float64
	Format    core.Format
	TargetDPI float64
}

// KeyFor builds the key for previewing path with p.
func KeyFor(path string, p core.Parameters) PreviewKey {
	return PreviewKey{
		InputPath: path,
		MaxWidth:  p.MaxWidth,
		MaxHeight: p.MaxHeight,
		Quality:   p.Quality,
		Format:    p.Format,
		TargetDPI: p.TargetDPI,
	}
}

func (k PreviewKey) String() string {
	return fmt.Sprintf("%s|%d|%d|%g|%s|%g", k.InputPath, k.MaxWidth, k.MaxHeight, k.Quality, k.Format, k.TargetDPI)
}

// PreviewEntry is a cached preview artifact.
type PreviewEntry struct {
	Data        []byte
	Width       int
	Height      int
	Format      core.Format // format actually encoded
	EncodedSize int64
}

// PreviewCache is a bounded LRU of preview entries. Concurrent misses on
// the same key share one compute call. Safe for concurrent use.
type PreviewCache struct {
	entries *lru.Cache[PreviewKey, PreviewEntry]
	group   singleflight.Group
}

// NewPreviewCache returns a cache holding at most size entries.
func NewPreviewCache(size int) (*PreviewCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[PreviewKey, PreviewEntry](size)
	if err != nil {
		return nil, fmt.Errorf("preview cache: %w", err)
	}
	return &PreviewCache{entries: entries}, nil
}

// Get returns the entry stored under key.
func (c *PreviewCache) Get(key PreviewKey) (PreviewEntry, bool) {
	return c.entries.Get(key)
}

// GetOrCompute returns the entry for key, calling compute on a miss and
// storing its result. Errors are returned to every waiting caller and are
// not cached. hit reports whether compute was skipped.
func (c *PreviewCache) GetOrCompute(ctx context.Context, key PreviewKey, compute func(context.Context) (PreviewEntry, error)) (entry PreviewEntry, hit bool, err error) {
	if e, ok := c.entries.Get(key); ok {
		return e, true, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		// another caller may have filled the slot while we waited
		if e, ok := c.entries.Get(key); ok {
			return e, nil
		}
		e, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.entries.Add(key, e)
		return e, nil
	})
	if err != nil {
		return PreviewEntry{}, false, err
	}
	return v.(PreviewEntry), false, nil
}

// Len returns the number of cached entries.
func (c *PreviewCache) Len() int { return c.entries.Len() }

// Purge drops every entry.
func (c *PreviewCache) Purge() { c.entries.Purge() }
