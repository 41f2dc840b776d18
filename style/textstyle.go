package style

import (
	"errors"

	"github.com/ByLCY/htmltext/internal/logging"
)

// ErrInvalidStyle is returned when a node is given a style it cannot use.
var ErrInvalidStyle = errors.New("invalid style assignment")

// TextStyle is the richer canvas text style model. Only the subset CSS can
// express survives conversion to a Descriptor.
type TextStyle struct {
	Props

	// Fill may hold several colors for a gradient; only the first is kept.
	FillColors        []Color
	FillGradientType  int
	FillGradientStops []float64
	MiterLimit        float64
	TextBaseline      string
	Leading           float64
	LineJoin          string
}

// From converts a TextStyle into a new, unlinked Descriptor.
func From(ts TextStyle, opts ...Option) *Descriptor {
	p := ts.Props
	if len(ts.FillColors) > 0 {
		p.Fill = ts.FillColors[0]
	}
	if p.Fill.IsZero() {
		p.Fill = DefaultProps().Fill
	}
	if p.Stroke.IsZero() {
		p.Stroke = DefaultProps().Stroke
	}
	if p.DropShadowColor.IsZero() {
		p.DropShadowColor = DefaultProps().DropShadowColor
	}
	if len(ts.FillColors) > 1 || len(ts.FillGradientStops) > 0 {
		logging.Logger().Warn("gradient fill is not supported by html text, using the first color")
	}
	return New(append([]Option{WithProps(p)}, opts...)...)
}

// Source is anything a text node accepts as its style: a shared *Descriptor,
// plain Props or a TextStyle (both cloned into a Descriptor the node owns).
type Source interface {
	resolve() (d *Descriptor, owned bool, err error)
}

func (d *Descriptor) resolve() (*Descriptor, bool, error) {
	if d == nil {
		return nil, false, ErrInvalidStyle
	}
	return d, false, nil
}

func (p Props) resolve() (*Descriptor, bool, error) {
	return New(WithProps(p)), true, nil
}

func (ts TextStyle) resolve() (*Descriptor, bool, error) {
	logging.Logger().Warn("cloning TextStyle into a style descriptor; later changes to it are not linked")
	return From(ts), true, nil
}

// Resolve turns src into a Descriptor and reports whether the caller owns it.
// A nil src yields a fresh default Descriptor, owned.
func Resolve(src Source) (*Descriptor, bool, error) {
	switch v := src.(type) {
	case nil:
		return New(), true, nil
	case *TextStyle:
		if v == nil {
			return nil, false, ErrInvalidStyle
		}
	case *Props:
		if v == nil {
			return nil, false, ErrInvalidStyle
		}
	}
	return src.resolve()
}
