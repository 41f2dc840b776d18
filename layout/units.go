package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for CSS lengths and line-height.

// Unit represents the original unit of a CSS length.
type Unit int

const (
	UnitNone    Unit = iota // unit-less numbers like line-height factors
	UnitPX                  // CSS pixels
	UnitPT                  // points
	UnitMM                  // millimeters
	UnitCM                  // centimeters
	UnitIN                  // inches
	UnitEM                  // relative to the element font size
	UnitREM                 // relative to the root font size
	UnitPercent             // relative to the element font size
)

// Conversion constants. canvas works in millimeters and sizes fonts in
// points; layout works in CSS pixels (96 per inch).
const (
	PxPerIn = 96.0
	PxToMm  = 25.4 / PxPerIn
	MmToPx  = 1.0 / PxToMm
	PxToPt  = 72.0 / PxPerIn
	PtToPx  = 1.0 / PxToPt
)

// RootFontSize is the font size rem units refer to.
const RootFontSize = 16.0

// UnitToString returns the CSS suffix for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitEM:
		return "em"
	case UnitREM:
		return "rem"
	case UnitPercent:
		return "%"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// PX converts the length to CSS pixels. fontSize resolves em and %.
func (l Length) PX(fontSize float64) float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PtToPx
	case UnitMM:
		return l.Value * MmToPx
	case UnitCM:
		return l.Value * 10 * MmToPx
	case UnitIN:
		return l.Value * PxPerIn
	case UnitEM:
		return l.Value * fontSize
	case UnitREM:
		return l.Value * RootFontSize
	case UnitPercent:
		return l.Value / 100 * fontSize
	default:
		// px and unit-less numbers
		return l.Value
	}
}

var unitSuffixes = []struct {
	s string
	u Unit
}{{"rem", UnitREM}, {"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"em", UnitEM}, {"%", UnitPercent}}

// ParseLength parses a CSS length such as "12px", "1.5em" or "0".
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightNormal LineHeightKind = iota
	LineHeightFactor
	LineHeightAbsolute
)

// LineHeightSpec preserves author intent: `normal`, a factor (1.5) or an
// absolute length (18px, 1.2em).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight parses a CSS line-height value.
func ParseLineHeight(value string) LineHeightSpec {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, "normal") {
		return LineHeightSpec{Kind: LineHeightNormal}
	}
	l, ok := ParseLength(v)
	if !ok {
		return LineHeightSpec{Kind: LineHeightNormal}
	}
	if l.Unit == UnitNone {
		return LineHeightSpec{Kind: LineHeightFactor, Factor: l.Value}
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}
}

// Resolve computes the line height in pixels for fontSize (px). `normal`
// resolves to 0, meaning "use the font metrics".
func (s LineHeightSpec) Resolve(fontSize float64) float64 {
	switch s.Kind {
	case LineHeightFactor:
		return fontSize * s.Factor
	case LineHeightAbsolute:
		return s.Len.PX(fontSize)
	default:
		return 0
	}
}
