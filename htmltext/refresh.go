package htmltext

import (
	"context"
	"errors"
	"image"
	"image/draw"
	"math"

	"github.com/ByLCY/htmltext/internal/logging"
	"github.com/ByLCY/htmltext/svgdoc"
	"github.com/ByLCY/htmltext/texture"
)

// pass is one in-flight rasterization. err is written before done closes.
type pass struct {
	done    chan struct{}
	err     error
	waiters int // callers that joined instead of starting a pass, guarded by Text.mu
}

// Render is the host render hook: with auto resolution it adopts
// rendererResolution, then refreshes if anything changed.
func (t *Text) Render(ctx context.Context, rendererResolution float64) error {
	t.mu.Lock()
	if t.autoResolution && rendererResolution > 0 && rendererResolution != t.resolution {
		t.resolution = rendererResolution
		t.markDirty()
	}
	t.mu.Unlock()
	return t.Refresh(ctx, true)
}

// Refresh rasterizes the node. With respectDirty it does nothing unless
// the node or its style changed since the last successful pass. A call
// arriving while a pass runs waits for that pass instead of starting one.
//
// Rasterization failures are logged and leave the node dirty; Refresh
// then returns nil. Context errors are returned.
func (t *Text) Refresh(ctx context.Context, respectDirty bool) error {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return ErrDestroyed
	}
	if t.style.Version() != t.localStyleVersion {
		t.dirty = true
	}
	if respectDirty && !t.dirty {
		t.mu.Unlock()
		return nil
	}
	if p := t.pass; p != nil {
		p.waiters++
		t.mu.Unlock()
		select {
		case <-p.done:
			return p.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p := &pass{done: make(chan struct{})}
	t.pass = p
	generation := t.generation
	styleVersion := t.style.Version()
	t.mu.Unlock()

	err := t.rasterize(ctx)

	t.mu.Lock()
	t.pass = nil
	if p.waiters > 0 {
		logging.Logger().Debug("refresh joined in-flight pass", "waiters", p.waiters)
	}
	if err == nil && !t.destroyed && t.generation == generation {
		t.dirty = false
		t.localStyleVersion = styleVersion
	}
	t.mu.Unlock()

	var rerr *RasterizeError
	if errors.As(err, &rerr) {
		logging.Logger().Warn("rasterization failed", "error", rerr.Err)
		err = nil
	}
	p.err = err
	close(p.done)
	return err
}

// rasterize runs one pass: measure, assemble the document, decode it,
// draw it into a fresh buffer and sync the texture.
func (t *Text) rasterize(ctx context.Context) error {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return nil
	}
	cfg := measureConfig{text: t.text, style: t.style, resolution: t.resolution}
	live := t.liveDocument()
	maxW, maxH := t.maxWidth, t.maxHeight
	r, dec, root := t.renderer, t.decoder, t.root
	t.mu.Unlock()

	m, err := measure(root, r, cfg, live, maxW, maxH)
	if err != nil {
		if errors.Is(err, ErrDestroyed) {
			return nil
		}
		return &RasterizeError{Err: err}
	}
	w := max(1, int(math.Ceil(m.total.Width)))
	h := max(1, int(math.Ceil(m.total.Height)))

	doc := svgdoc.Document{
		Width:         w,
		Height:        h,
		Padding:       m.padding,
		ContentWidth:  m.content.Width,
		ContentHeight: m.content.Height,
		GlobalCSS:     m.doc.GlobalCSS,
		CSS:           m.doc.CSS,
		Markup:        m.doc.Markup,
	}
	uri, err := doc.URI()
	if err != nil {
		return &RasterizeError{Err: err}
	}
	img, err := dec.Decode(ctx, uri)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return err
		}
		return &RasterizeError{Err: err}
	}

	if err := cfg.style.BeforeDraw(ctx); err != nil {
		return err
	}
	buf := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(buf, buf.Bounds(), img, img.Bounds().Min, draw.Src)

	if t.isDestroyed() {
		return nil
	}
	// 纹理监听器会回调节点，同步时不能持有 t.mu
	buf = texture.Sync(t.tex, buf, cfg.style.Trim(), m.padding, cfg.resolution)

	t.mu.Lock()
	if !t.destroyed {
		t.buf = buf
	}
	t.mu.Unlock()
	logging.Logger().Debug("html text rasterized", "width", w, "height", h, "resolution", cfg.resolution)
	return nil
}
