package style

import (
	"fmt"
	"math"
	"strings"
)

// Color is a CSS color. Numeric colors normalize to #rrggbb.
type Color struct {
	css string
}

// Hex builds a color from a 0xRRGGBB number.
func Hex(v uint32) Color {
	return Color{css: fmt.Sprintf("#%06x", v&0xffffff)}
}

// RGB builds a color from a 0..1 triple.
func RGB(r, g, b float64) Color {
	return Color{css: fmt.Sprintf("#%02x%02x%02x", unit8(r), unit8(g), unit8(b))}
}

// CSSColor wraps any CSS color expression, e.g. "red" or "rgba(0,0,0,.5)".
func CSSColor(s string) Color {
	return Color{css: strings.TrimSpace(s)}
}

// String returns the CSS form. The zero Color is black.
func (c Color) String() string {
	if c.css == "" {
		return "black"
	}
	return c.css
}

// IsZero reports whether c was never set.
func (c Color) IsZero() bool { return c.css == "" }

// withAlpha appends an alpha byte to #rrggbb colors when alpha < 1.
func (c Color) withAlpha(alpha float64) string {
	s := c.String()
	if alpha >= 1 || !strings.HasPrefix(s, "#") || len(s) != 7 {
		return s
	}
	return s + fmt.Sprintf("%02x", int(math.Max(alpha, 0)*255))
}

func unit8(v float64) int {
	v = math.Max(0, math.Min(1, v))
	return int(math.Round(v * 255))
}
