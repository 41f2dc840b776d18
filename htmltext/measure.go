package htmltext

import (
	"errors"
	"fmt"
	"math"

	"github.com/ByLCY/htmltext/layout"
	"github.com/ByLCY/htmltext/renderer"
	"github.com/ByLCY/htmltext/style"
)

// MeasureOption overrides a node property for a single Measure call.
type MeasureOption func(*measureConfig)

type measureConfig struct {
	text       string
	style      *style.Descriptor
	resolution float64
}

// MeasureText measures text instead of the node's markup.
func MeasureText(text string) MeasureOption {
	return func(c *measureConfig) { c.text = sanitize(text) }
}

// MeasureStyle measures with d instead of the node's style.
func MeasureStyle(d *style.Descriptor) MeasureOption {
	return func(c *measureConfig) {
		if d != nil {
			c.style = d
		}
	}
}

// MeasureResolution measures at res instead of the node's resolution.
func MeasureResolution(res float64) MeasureOption {
	return func(c *measureConfig) {
		if res > 0 {
			c.resolution = res
		}
	}
}

// measurement is the outcome of laying out a node's content. Sizes are
// device pixels; padding is CSS pixels and is added as is.
type measurement struct {
	content layout.Size // clamped content box
	padding float64
	total   layout.Size // content plus padding on every side
	doc     layout.Document
}

// Measure returns the size the node would rasterize to: the content box
// clamped to the maximum size, plus padding on every side. Overrides apply
// to this call only; the layout root goes back to the node's own content
// afterwards.
func (t *Text) Measure(opts ...MeasureOption) (layout.Size, error) {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return layout.Size{}, ErrDestroyed
	}
	cfg := measureConfig{text: t.text, style: t.style, resolution: t.resolution}
	live := t.liveDocument()
	maxW, maxH := t.maxWidth, t.maxHeight
	r, root := t.renderer, t.root
	t.mu.Unlock()

	for _, opt := range opts {
		opt(&cfg)
	}
	m, err := measure(root, r, cfg, live, maxW, maxH)
	if err != nil {
		return layout.Size{}, err
	}
	return m.total, nil
}

func measure(root *layoutRoot, r renderer.Renderer, cfg measureConfig, live layout.Document, maxW, maxH int) (measurement, error) {
	doc := layout.Document{
		GlobalCSS: cfg.style.ToGlobalCSS(),
		CSS:       cfg.style.ToCSS(cfg.resolution),
		Markup:    cfg.text,
	}
	var size layout.Size
	err := root.with(doc, live, func(content layout.Document) error {
		var err error
		size, err = r.Measure(content)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrDestroyed) {
			return measurement{}, err
		}
		return measurement{}, fmt.Errorf("htmltext: 测量失败: %w", err)
	}

	content := layout.Size{
		Width:  math.Min(float64(maxW), math.Ceil(size.Width)),
		Height: math.Min(float64(maxH), math.Ceil(size.Height)),
	}
	root.setViewport(content)
	// 留白不随分辨率缩放，总尺寸不超过 max + 2*padding
	pad := cfg.style.Padding()
	return measurement{
		content: content,
		padding: pad,
		total:   layout.Size{Width: content.Width + 2*pad, Height: content.Height + 2*pad},
		doc:     doc,
	}, nil
}
