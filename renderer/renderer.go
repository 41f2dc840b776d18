package renderer

import (
	"image"

	"github.com/ByLCY/htmltext/layout"
)

// Renderer lays out and rasterizes foreign-content documents. It stands in
// for the document renderer of a host platform.
type Renderer interface {
	// Measure returns the content box of doc in device pixels.
	Measure(doc layout.Document) (layout.Size, error)
	// Render rasterizes doc into a frame.Width×frame.Height image, drawing
	// content at frame.Clip and clipping it there.
	Render(doc layout.Document, frame layout.Frame) (*image.RGBA, error)
}
