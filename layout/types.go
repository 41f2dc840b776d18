package layout

// 该文件定义文档、样式与布局结果，供布局计算、渲染与调试 JSON 共用。
// 所有长度均为设备像素（已乘以 transform: scale）。

import "github.com/ByLCY/htmltext/css"

// Document is the payload of the foreign-content region: a global
// stylesheet, the declaration list of the content element and its markup.
type Document struct {
	GlobalCSS string `json:"globalCSS"`
	CSS       string `json:"css"`
	Markup    string `json:"markup"`
}

// Size is a width/height pair in device pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Frame places a laid-out document on a canvas: the canvas is Width×Height
// pixels and content is drawn at Clip.X/Clip.Y, clipped to Clip.
type Frame struct {
	Width  int  `json:"width"`
	Height int  `json:"height"`
	Clip   Rect `json:"clip"`
}

// Rect is an axis aligned rectangle in pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Color 采用 0-255 的 RGBA 数值。
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Shadow is a computed text-shadow. A zero Color.A means no shadow.
type Shadow struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Blur    float64 `json:"blur"`
	Color   Color   `json:"color"`
}

// Stroke is a computed -webkit-text-stroke. Width 0 means no stroke.
type Stroke struct {
	Width float64 `json:"width"`
	Color Color   `json:"color"`
}

// TextStyle is the computed style of an inline run. It is comparable, so
// adjacent pieces with equal styles merge into one run.
type TextStyle struct {
	FontFamily    string  `json:"fontFamily"` // 原始 font-family 列表（逗号分隔）
	FontSize      float64 `json:"fontSize"`
	FontWeight    string  `json:"fontWeight"`
	FontStyle     string  `json:"fontStyle"`
	Color         Color   `json:"color"`
	LetterSpacing float64 `json:"letterSpacing,omitempty"`
	Underline     bool    `json:"underline,omitempty"`
	LineThrough   bool    `json:"lineThrough,omitempty"`
	BaselineShift float64 `json:"baselineShift,omitempty"` // sub/sup，向上为正
	Shadow        Shadow  `json:"shadow"`
	Stroke        Stroke  `json:"stroke"`
}

// HasShadow reports whether the run casts a visible shadow.
func (s TextStyle) HasShadow() bool { return s.Shadow.Color.A > 0 }

// HasStroke reports whether the run is outlined.
func (s TextStyle) HasStroke() bool { return s.Stroke.Width > 0 && s.Stroke.Color.A > 0 }

// Span is a piece of inline content produced from markup. Exactly one of
// Text, Break or Rule is meaningful.
type Span struct {
	Text  string    `json:"text,omitempty"`
	Style TextStyle `json:"style"`
	Break bool      `json:"break,omitempty"` // <br> 或块级元素边界
	Rule  bool      `json:"rule,omitempty"`  // <hr>
}

// Block carries the properties of the content element that govern line
// building.
type Block struct {
	Align      string         `json:"align"`
	WhiteSpace string         `json:"whiteSpace"`
	LineHeight float64        `json:"lineHeight,omitempty"` // 0 = normal
	MaxWidth   float64        `json:"maxWidth,omitempty"`   // 0 = 不限宽
	BreakAll   bool           `json:"breakAll,omitempty"`
	BreakWord  bool           `json:"breakWord,omitempty"`
	Scale      float64        `json:"scale"`
	Root       TextStyle      `json:"root"`
	FontFaces  []css.FontFace `json:"fontFaces,omitempty"`
}

// Wraps reports whether soft wrapping is allowed by the white-space mode.
func (b Block) Wraps() bool {
	return b.WhiteSpace != "nowrap" && b.WhiteSpace != "pre"
}

// PreservesSpaces reports whether runs of spaces are kept as written.
func (b Block) PreservesSpaces() bool {
	return b.WhiteSpace == "pre" || b.WhiteSpace == "pre-wrap"
}

// Run is a styled piece of a line.
type Run struct {
	Text  string    `json:"text"`
	X     float64   `json:"x"` // 相对行起点
	Width float64   `json:"width"`
	Style TextStyle `json:"style"`
}

// Line is one line box. Y is its top edge; Baseline is measured from Y.
type Line struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Baseline float64 `json:"baseline"`
	Runs     []Run   `json:"runs,omitempty"`
	Rule     bool    `json:"rule,omitempty"`
}

// Result is a laid-out document.
type Result struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Block  Block   `json:"block"`
	Lines  []Line  `json:"lines"`
}

// Size returns the content box of the result.
func (r *Result) Size() Size {
	if r == nil {
		return Size{}
	}
	return Size{Width: r.Width, Height: r.Height}
}
