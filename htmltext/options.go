package htmltext

import (
	"github.com/ByLCY/htmltext/renderer"
	"github.com/ByLCY/htmltext/svgdoc"
)

// Defaults applied by New.
var (
	DefaultMaxWidth       = 2024
	DefaultMaxHeight      = 2024
	DefaultResolution     = 1.0
	DefaultAutoResolution = true
	DefaultDestroyOptions = DestroyOptions{Texture: true, BaseTexture: true}
)

// DestroyOptions selects what Destroy releases besides the node itself.
type DestroyOptions struct {
	Texture     bool
	BaseTexture bool
}

// Option configures a Text at construction.
type Option func(*Text)

// WithRenderer lays out and rasterizes with r.
func WithRenderer(r renderer.Renderer) Option {
	return func(t *Text) { t.renderer = r }
}

// WithDecoder decodes the document data URI with d instead of a
// svgdoc.Loader over the renderer.
func WithDecoder(d svgdoc.Decoder) Option {
	return func(t *Text) { t.decoder = d }
}

// WithMaxSize clamps the content box, in device pixels.
func WithMaxSize(width, height int) Option {
	return func(t *Text) {
		t.maxWidth, t.maxHeight = width, height
	}
}

// WithResolution fixes the resolution and turns auto resolution off.
func WithResolution(res float64) Option {
	return func(t *Text) {
		if res > 0 {
			t.resolution = res
			t.autoResolution = false
		}
	}
}
