// Package svgdoc assembles the vector document a text node is rasterized
// through: a root svg sized to the buffer, a nested svg that offsets and
// clips the content, and a foreignObject holding the stylesheet and the
// styled markup.
package svgdoc

import (
	"encoding/xml"
	"fmt"
)

const (
	svgNS   = "http://www.w3.org/2000/svg"
	xhtmlNS = "http://www.w3.org/1999/xhtml"

	// ForeignSize is the side of the foreignObject; large enough that
	// content never wraps because of it.
	ForeignSize = 10000
)

// Document describes one rasterization. Sizes are device pixels.
type Document struct {
	Width  int // root svg, equals the pixel buffer
	Height int

	Padding       float64 // offset of the content viewport
	ContentWidth  float64 // clamped content box
	ContentHeight float64

	GlobalCSS string
	CSS       string // declarations of the content element
	Markup    string // inserted verbatim, must be well-formed XHTML
}

type svgRoot struct {
	XMLName  xml.Name    `xml:"svg"`
	Xmlns    string      `xml:"xmlns,attr"`
	Width    int         `xml:"width,attr"`
	Height   int         `xml:"height,attr"`
	Viewport svgViewport `xml:"svg"`
}

type svgViewport struct {
	X       float64       `xml:"x,attr"`
	Y       float64       `xml:"y,attr"`
	Width   float64       `xml:"width,attr"`
	Height  float64       `xml:"height,attr"`
	Foreign foreignObject `xml:"foreignObject"`
}

type foreignObject struct {
	Width   int          `xml:"width,attr"`
	Height  int          `xml:"height,attr"`
	Style   string       `xml:"style,attr"`
	Sheet   styleElement `xml:"style"`
	Content divElement   `xml:"div"`
}

type styleElement struct {
	Xmlns string `xml:"xmlns,attr"`
	Text  string `xml:",chardata"`
}

type divElement struct {
	Xmlns string `xml:"xmlns,attr"`
	Style string `xml:"style,attr"`
	Inner string `xml:",innerxml"`
}

// Marshal serializes d.
func (d *Document) Marshal() ([]byte, error) {
	root := svgRoot{
		Xmlns:  svgNS,
		Width:  d.Width,
		Height: d.Height,
		Viewport: svgViewport{
			X:      d.Padding,
			Y:      d.Padding,
			Width:  d.ContentWidth,
			Height: d.ContentHeight,
			Foreign: foreignObject{
				Width:   ForeignSize,
				Height:  ForeignSize,
				Style:   "overflow:hidden",
				Sheet:   styleElement{Xmlns: xhtmlNS, Text: d.GlobalCSS},
				Content: divElement{Xmlns: xhtmlNS, Style: d.CSS, Inner: d.Markup},
			},
		},
	}
	out, err := xml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("序列化 svg 文档失败: %w", err)
	}
	return out, nil
}

// Parse reads a document produced by Marshal. Malformed content markup is
// an error, as it is for an image decoder.
func Parse(data []byte) (*Document, error) {
	var root svgRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("解析 svg 文档失败: %w", err)
	}
	vp := root.Viewport
	return &Document{
		Width:         root.Width,
		Height:        root.Height,
		Padding:       vp.X,
		ContentWidth:  vp.Width,
		ContentHeight: vp.Height,
		GlobalCSS:     vp.Foreign.Sheet.Text,
		CSS:           vp.Foreign.Content.Style,
		Markup:        vp.Foreign.Content.Inner,
	}, nil
}
