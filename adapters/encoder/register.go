package encoder

import "github.com/Skryldev/imagebatch/core"

var (
	_ core.Encoder = (*JPEG)(nil)
	_ core.Encoder = (*PNG)(nil)
	_ core.Encoder = (*WebP)(nil)
)

// Register installs the pure-Go encoders into reg.
func Register(reg *core.DefaultRegistry) {
	reg.RegisterEncoder(core.FormatJPEG, NewJPEG())
	reg.RegisterEncoder(core.FormatPNG, NewPNG())
	reg.RegisterEncoder(core.FormatWebP, NewWebP())
}
