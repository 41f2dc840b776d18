// Package htmltext renders styled HTML markup into a texture for a 2D scene
// graph. A Text measures its markup with a document renderer, rasterizes
// it through an SVG document holding a foreignObject, and keeps the
// texture geometry in line with the resulting pixel buffer.
package htmltext

import (
	"image"
	"sync"

	"github.com/ByLCY/htmltext/internal/logging"
	"github.com/ByLCY/htmltext/layout"
	"github.com/ByLCY/htmltext/renderer"
	canvasrenderer "github.com/ByLCY/htmltext/renderer/canvas"
	"github.com/ByLCY/htmltext/style"
	"github.com/ByLCY/htmltext/svgdoc"
	"github.com/ByLCY/htmltext/texture"
)

var defaultRenderer = sync.OnceValue(func() renderer.Renderer {
	return canvasrenderer.NewRenderer()
})

// Text is a scene node showing HTML markup. It is safe for concurrent use;
// at most one rasterization pass runs at a time.
type Text struct {
	mu sync.Mutex

	text              string
	style             *style.Descriptor
	ownsStyle         bool
	localStyleVersion int64

	resolution     float64
	autoResolution bool
	maxWidth       int
	maxHeight      int

	dirty      bool
	generation uint64 // bumped by every mutation
	pass       *pass

	buf         *image.RGBA
	root        *layoutRoot
	tex         *texture.Texture
	unsubscribe func()
	sprite      sprite

	renderer renderer.Renderer
	decoder  svgdoc.Decoder

	destroyed bool
}

// New creates a Text. src may be a shared *style.Descriptor, or Props /
// TextStyle values that are cloned into a descriptor the node owns; nil
// gives the node its own default style.
func New(text string, src style.Source, opts ...Option) (*Text, error) {
	d, owned, err := style.Resolve(src)
	if err != nil {
		return nil, err
	}
	t := &Text{
		text:              sanitize(text),
		style:             d,
		ownsStyle:         owned,
		localStyleVersion: -1,
		resolution:        DefaultResolution,
		autoResolution:    DefaultAutoResolution,
		maxWidth:          DefaultMaxWidth,
		maxHeight:         DefaultMaxHeight,
		dirty:             true,
		root:              &layoutRoot{},
		tex:               texture.New(),
		sprite:            newSprite(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.renderer == nil {
		t.renderer = defaultRenderer()
	}
	if t.decoder == nil {
		t.decoder = svgdoc.NewLoader(t.renderer)
	}
	t.unsubscribe = t.tex.OnUpdate(t.onTextureUpdate)
	return t, nil
}

// markDirty must be called with t.mu held.
func (t *Text) markDirty() {
	t.dirty = true
	t.generation++
}

// Text returns the sanitized markup.
func (t *Text) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text
}

// SetText replaces the markup. It is sanitized first; setting the current
// markup again is a no-op.
func (t *Text) SetText(text string) {
	text = sanitize(text)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed || t.text == text {
		return
	}
	t.text = text
	t.markDirty()
}

// Style returns the style descriptor, nil after Destroy.
func (t *Text) Style() *style.Descriptor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.style
}

// SetStyle replaces the style. An owned previous style has its fonts
// cleaned.
func (t *Text) SetStyle(src style.Source) error {
	d, owned, err := style.Resolve(src)
	if err != nil {
		return err
	}
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return ErrDestroyed
	}
	prev, prevOwned := t.style, t.ownsStyle
	t.style, t.ownsStyle = d, owned
	t.localStyleVersion = -1
	t.markDirty()
	t.mu.Unlock()

	if prevOwned && prev != d {
		prev.CleanFonts()
	}
	return nil
}

// Resolution returns the pixel density the node rasterizes at.
func (t *Text) Resolution() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resolution
}

// SetResolution fixes the resolution and turns auto resolution off.
func (t *Text) SetResolution(res float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.autoResolution = false
	if t.destroyed || res <= 0 || res == t.resolution {
		return
	}
	t.resolution = res
	t.markDirty()
}

// AutoResolution reports whether Render follows the host resolution.
func (t *Text) AutoResolution() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.autoResolution
}

// Dirty reports whether the buffer is stale.
func (t *Text) Dirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dirty || (t.style != nil && t.style.Version() != t.localStyleVersion)
}

// Buffer returns the last rasterized pixels, nil before the first pass and
// after Destroy. The image must not be modified.
func (t *Text) Buffer() *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf
}

// Texture returns the node's texture.
func (t *Text) Texture() *texture.Texture {
	return t.tex
}

// Destroy releases the buffer and the layout root, cleans the fonts of an
// owned style and, per opts, destroys the texture. Later calls are no-ops.
func (t *Text) Destroy(opts DestroyOptions) {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	t.destroyed = true
	d, owned := t.style, t.ownsStyle
	t.style, t.ownsStyle = nil, false
	t.buf = nil
	unsubscribe := t.unsubscribe
	t.mu.Unlock()

	unsubscribe()
	t.root.detach()
	if owned {
		d.CleanFonts()
	}
	if opts.Texture {
		t.tex.Destroy(opts.BaseTexture)
	}
	logging.Logger().Debug("html text destroyed", "ownedStyle", owned)
}

func (t *Text) isDestroyed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.destroyed
}

// liveDocument must be called with t.mu held.
func (t *Text) liveDocument() layout.Document {
	return layout.Document{
		GlobalCSS: t.style.ToGlobalCSS(),
		CSS:       t.style.ToCSS(t.resolution),
		Markup:    t.text,
	}
}
