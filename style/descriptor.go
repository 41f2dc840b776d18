// Package style holds the style descriptor of an HTML text node and turns it
// into the CSS that the document renderer lays out.
package style

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ByLCY/htmltext/css"
	"github.com/ByLCY/htmltext/fonts"
)

// Descriptor is the style of an HTML text node. Every change to a property
// that affects rendering bumps Version, so nodes can detect stale rasters
// without comparing properties.
//
// A Descriptor is safe for concurrent use.
type Descriptor struct {
	mu sync.RWMutex

	props      Props
	version    int64
	overrides  []string
	stylesheet string

	registry   *fonts.Registry
	fonts      []*fonts.Resource
	fontsDirty bool
	hook       DrawHook
}

// Option configures a Descriptor at construction.
type Option func(*Descriptor)

// WithProps starts from p instead of DefaultProps.
func WithProps(p Props) Option {
	return func(d *Descriptor) {
		p.normalize()
		d.props = p
	}
}

// WithRegistry loads fonts through r instead of fonts.Default().
func WithRegistry(r *fonts.Registry) Option {
	return func(d *Descriptor) { d.registry = r }
}

// WithDrawHook installs a pre-draw hook.
func WithDrawHook(h DrawHook) Option {
	return func(d *Descriptor) { d.hook = h }
}

// WithStylesheet sets the freeform global stylesheet.
func WithStylesheet(sheet string) Option {
	return func(d *Descriptor) { d.stylesheet = sheet }
}

// New creates a descriptor with DefaultProps.
func New(opts ...Option) *Descriptor {
	d := &Descriptor{props: DefaultProps(), registry: fonts.Default()}
	for _, opt := range opts {
		opt(d)
	}
	if d.registry == nil {
		d.registry = fonts.Default()
	}
	return d
}

// Version returns the mutation counter.
func (d *Descriptor) Version() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Props returns a copy of the current properties.
func (d *Descriptor) Props() Props {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.props
}

// Update applies fn to the properties and bumps the version once.
func (d *Descriptor) Update(fn func(p *Props)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.props)
	d.props.normalize()
	d.version++
}

func (d *Descriptor) SetFontFamily(family string) { d.Update(func(p *Props) { p.FontFamily = family }) }
func (d *Descriptor) SetFontSize(px float64)      { d.Update(func(p *Props) { p.FontSize = px }) }
func (d *Descriptor) SetFontWeight(w string)      { d.Update(func(p *Props) { p.FontWeight = w }) }
func (d *Descriptor) SetFontStyle(s string)       { d.Update(func(p *Props) { p.FontStyle = s }) }
func (d *Descriptor) SetFill(c Color)             { d.Update(func(p *Props) { p.Fill = c }) }
func (d *Descriptor) SetAlign(a string)           { d.Update(func(p *Props) { p.Align = a }) }
func (d *Descriptor) SetWhiteSpace(w WhiteSpace)  { d.Update(func(p *Props) { p.WhiteSpace = w }) }
func (d *Descriptor) SetPadding(px float64)       { d.Update(func(p *Props) { p.Padding = px }) }
func (d *Descriptor) SetTrim(trim bool)           { d.Update(func(p *Props) { p.Trim = trim }) }

// SetStroke sets the text stroke color and width.
func (d *Descriptor) SetStroke(c Color, thickness float64) {
	d.Update(func(p *Props) {
		p.Stroke = c
		p.StrokeThickness = thickness
	})
}

// SetWordWrap enables wrapping at width CSS pixels.
func (d *Descriptor) SetWordWrap(enabled bool, width float64) {
	d.Update(func(p *Props) {
		p.WordWrap = enabled
		p.WordWrapWidth = width
	})
}

// Padding returns the uniform padding in CSS pixels.
func (d *Descriptor) Padding() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.props.Padding
}

// Trim reports whether rasters are cropped to their visible pixels.
func (d *Descriptor) Trim() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.props.Trim
}

// Stylesheet returns the freeform global stylesheet.
func (d *Descriptor) Stylesheet() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stylesheet
}

// SetStylesheet replaces the freeform global stylesheet.
func (d *Descriptor) SetStylesheet(sheet string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stylesheet == sheet {
		return
	}
	d.stylesheet = sheet
	d.version++
}

// AddOverride appends raw "property: value" declarations that win over every
// built-in declaration. Duplicates are ignored. Malformed declarations are
// rejected and nothing is added.
func (d *Descriptor) AddOverride(values ...string) error {
	for _, v := range values {
		list, err := css.Parse(v)
		if err != nil {
			return fmt.Errorf("style override: %w", err)
		}
		if len(list.Declarations) == 0 {
			return fmt.Errorf("style override %q: %w", v, css.ErrInvalidDeclaration)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	added := false
	for _, v := range values {
		if !slices.Contains(d.overrides, v) {
			d.overrides = append(d.overrides, v)
			added = true
		}
	}
	if added {
		d.version++
	}
	return nil
}

// RemoveOverride deletes overrides equal to any of values.
func (d *Descriptor) RemoveOverride(values ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.overrides[:0]
	removed := false
	for _, o := range d.overrides {
		if slices.Contains(values, o) {
			removed = true
			continue
		}
		kept = append(kept, o)
	}
	d.overrides = kept
	if removed {
		d.version++
	}
}

// Overrides returns a copy of the override list.
func (d *Descriptor) Overrides() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.overrides)
}

// Reset restores DefaultProps and drops overrides and the stylesheet.
// Loaded fonts are kept.
func (d *Descriptor) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.props = DefaultProps()
	d.overrides = nil
	d.stylesheet = ""
	d.version++
}

// ToCSS returns the declaration list for the content element. scale is the
// pixel density: layout happens at device pixels while CSS lengths stay
// density independent. Overrides come last.
func (d *Descriptor) ToCSS(scale float64) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p := d.props

	decls := []string{
		"transform: scale(" + num(scale) + ")",
		"transform-origin: top left",
		"display: inline-block",
		"color: " + p.Fill.String(),
		"font-size: " + px(p.FontSize),
		"font-family: " + p.FontFamily,
		"font-weight: " + p.FontWeight,
		"font-style: " + p.FontStyle,
		"font-variant: " + p.FontVariant,
		"letter-spacing: " + px(p.LetterSpacing),
		"text-align: " + p.Align,
		"white-space: " + string(p.WhiteSpace),
	}
	if p.LineHeight > 0 {
		decls = append(decls, "line-height: "+px(p.LineHeight))
	}
	if p.WordWrap {
		wrap := "break-word"
		if p.BreakWords {
			wrap = "break-all"
		}
		decls = append(decls, "word-wrap: "+wrap, "max-width: "+px(p.WordWrapWidth))
	}
	if p.StrokeThickness > 0 {
		decls = append(decls,
			"-webkit-text-stroke-width: "+px(p.StrokeThickness),
			"-webkit-text-stroke-color: "+p.Stroke.String(),
			"text-stroke-width: "+px(p.StrokeThickness),
			"text-stroke-color: "+p.Stroke.String(),
			"paint-order: stroke",
		)
	}
	if p.DropShadow {
		decls = append(decls, dropShadowToCSS(p))
	}
	decls = append(decls, d.overrides...)
	return strings.Join(decls, "; ")
}

// ToGlobalCSS returns the stylesheet for the document: the freeform
// stylesheet followed by an @font-face rule per loaded font.
func (d *Descriptor) ToGlobalCSS() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var b strings.Builder
	b.WriteString(d.stylesheet)
	for _, f := range d.fonts {
		fmt.Fprintf(&b, "\n@font-face {\n    font-family: %q;\n    src: url('%s');\n    font-weight: %s;\n    font-style: %s;\n}",
			f.Family, f.URL, f.Weight, f.Style)
	}
	return b.String()
}

// dropShadowToCSS converts distance/angle/blur/color/alpha to text-shadow.
func dropShadowToCSS(p Props) string {
	x := math.Round(math.Cos(p.DropShadowAngle) * p.DropShadowDistance)
	y := math.Round(math.Sin(p.DropShadowAngle) * p.DropShadowDistance)
	color := p.DropShadowColor.withAlpha(p.DropShadowAlpha)
	position := px(x) + " " + px(y)
	if p.DropShadowBlur > 0 {
		return "text-shadow: " + position + " " + px(p.DropShadowBlur) + " " + color
	}
	return "text-shadow: " + position + " " + color
}

func num(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func px(v float64) string { return num(v) + "px" }
