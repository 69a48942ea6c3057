//go:build !vips

package imagebatch

import (
	"fmt"

	"github.com/Skryldev/imagebatch/config"
	"github.com/Skryldev/imagebatch/core"
)

// registerBackend keeps the pure-Go codecs; libvips needs the vips build tag.
func registerBackend(_ *core.DefaultRegistry, cfg config.Config) (func(), error) {
	if cfg.Backend == "vips" {
		return nil, fmt.Errorf("backend %q is not compiled in; rebuild with -tags vips", cfg.Backend)
	}
	return func() {}, nil
}

// Backends lists the backends this build supports.
func Backends() []string { return []string{"std"} }
