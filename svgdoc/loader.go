package svgdoc

import (
	"context"
	"fmt"
	"image"

	"github.com/ByLCY/htmltext/layout"
	"github.com/ByLCY/htmltext/renderer"
)

// Decoder turns a document data URI into pixels. It stands in for the
// image element of a host platform.
type Decoder interface {
	Decode(ctx context.Context, uri string) (image.Image, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(ctx context.Context, uri string) (image.Image, error)

func (f DecoderFunc) Decode(ctx context.Context, uri string) (image.Image, error) { return f(ctx, uri) }

// Loader decodes documents with a Renderer. Decoding runs on its own
// goroutine; Decode returns early when ctx is done.
type Loader struct {
	Renderer renderer.Renderer
}

// NewLoader creates a Loader drawing with r.
func NewLoader(r renderer.Renderer) *Loader { return &Loader{Renderer: r} }

// Decode parses uri and rasterizes it into a Width×Height image with the
// content clipped to its viewport.
func (l *Loader) Decode(ctx context.Context, uri string) (image.Image, error) {
	type result struct {
		img image.Image
		err error
	}
	ch := make(chan result, 1)
	go func() {
		img, err := l.decode(uri)
		ch <- result{img, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.img, r.err
	}
}

func (l *Loader) decode(uri string) (image.Image, error) {
	if l.Renderer == nil {
		return nil, fmt.Errorf("svgdoc: loader has no renderer")
	}
	doc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, fmt.Errorf("svgdoc: invalid document size %dx%d", doc.Width, doc.Height)
	}
	frame := layout.Frame{
		Width:  doc.Width,
		Height: doc.Height,
		Clip: layout.Rect{
			X:      doc.Padding,
			Y:      doc.Padding,
			Width:  doc.ContentWidth,
			Height: doc.ContentHeight,
		},
	}
	content := layout.Document{GlobalCSS: doc.GlobalCSS, CSS: doc.CSS, Markup: doc.Markup}
	img, err := l.Renderer.Render(content, frame)
	if err != nil {
		return nil, err
	}
	return img, nil
}
