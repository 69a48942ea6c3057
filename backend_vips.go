//go:build vips

package imagebatch

import (
	"github.com/Skryldev/imagebatch/adapters/vips"
	"github.com/Skryldev/imagebatch/config"
	"github.com/Skryldev/imagebatch/core"
)

// registerBackend swaps the codecs and resizer for libvips when selected.
func registerBackend(reg *core.DefaultRegistry, cfg config.Config) (func(), error) {
	if cfg.Backend != "vips" {
		return func() {}, nil
	}
	b := vips.NewBackend(vips.BackendConfig{MaxWorkers: cfg.ResolvedWorkers()})
	vips.Register(reg, b)
	return b.Shutdown, nil
}

// Backends lists the backends this build supports.
func Backends() []string { return []string{"std", "vips"} }
