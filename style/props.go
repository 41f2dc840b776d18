package style

import "math"

// WhiteSpace is the CSS white-space mode of the text root.
type WhiteSpace string

const (
	WhiteSpaceNormal  WhiteSpace = "normal"
	WhiteSpacePre     WhiteSpace = "pre"
	WhiteSpacePreLine WhiteSpace = "pre-line"
	WhiteSpaceNoWrap  WhiteSpace = "nowrap"
	WhiteSpacePreWrap WhiteSpace = "pre-wrap"
)

// Valid reports whether w is one of the supported modes.
func (w WhiteSpace) Valid() bool {
	switch w {
	case WhiteSpaceNormal, WhiteSpacePre, WhiteSpacePreLine, WhiteSpaceNoWrap, WhiteSpacePreWrap:
		return true
	}
	return false
}

// Props are the rendering properties of a Descriptor. Lengths are CSS pixels,
// angles radians.
type Props struct {
	FontFamily  string
	FontSize    float64
	FontWeight  string
	FontStyle   string
	FontVariant string

	Fill            Color
	Stroke          Color
	StrokeThickness float64

	Align      string
	WhiteSpace WhiteSpace
	Padding    float64

	DropShadow         bool
	DropShadowAngle    float64
	DropShadowBlur     float64
	DropShadowColor    Color
	DropShadowDistance float64
	DropShadowAlpha    float64

	WordWrap      bool
	WordWrapWidth float64
	BreakWords    bool

	LetterSpacing float64
	LineHeight    float64 // 0 means the font's natural line height

	Trim bool
}

// DefaultFontFamily is restored when a style's fonts are cleaned.
const DefaultFontFamily = "Arial"

// DefaultProps returns the documented defaults.
func DefaultProps() Props {
	return Props{
		FontFamily:         DefaultFontFamily,
		FontSize:           26,
		FontWeight:         "normal",
		FontStyle:          "normal",
		FontVariant:        "normal",
		Fill:               CSSColor("black"),
		Stroke:             CSSColor("black"),
		Align:              "left",
		WhiteSpace:         WhiteSpaceNormal,
		DropShadowAngle:    math.Pi / 6,
		DropShadowColor:    CSSColor("black"),
		DropShadowDistance: 5,
		DropShadowAlpha:    1,
		WordWrapWidth:      100,
	}
}

// normalize fills zero values that have no meaningful zero.
func (p *Props) normalize() {
	def := DefaultProps()
	if p.FontFamily == "" {
		p.FontFamily = def.FontFamily
	}
	if p.FontSize <= 0 {
		p.FontSize = def.FontSize
	}
	if p.FontWeight == "" {
		p.FontWeight = def.FontWeight
	}
	if p.FontStyle == "" {
		p.FontStyle = def.FontStyle
	}
	if p.FontVariant == "" {
		p.FontVariant = def.FontVariant
	}
	if p.Align == "" {
		p.Align = def.Align
	}
	if !p.WhiteSpace.Valid() {
		p.WhiteSpace = def.WhiteSpace
	}
	if p.Padding < 0 {
		p.Padding = 0
	}
}
