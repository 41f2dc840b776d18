package layout

import (
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor parses a CSS color: named colors, #rgb, #rgba, #rrggbb,
// #rrggbbaa, rgb() and rgba().
func ParseColor(value string) (Color, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Color{}, false
	}
	if v == "transparent" {
		return Color{}, true
	}
	if strings.HasPrefix(v, "#") {
		return parseHexColor(v[1:])
	}
	if strings.HasPrefix(v, "rgb") {
		return parseRGBFunc(v)
	}
	if c, ok := colornames.Map[v]; ok {
		return Color{R: c.R, G: c.G, B: c.B, A: c.A}, true
	}
	return Color{}, false
}

func parseHexColor(h string) (Color, bool) {
	switch len(h) {
	case 3, 4:
		// #rgb / #rgba：每位扩展为两位
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	case 6, 8:
	default:
		return Color{}, false
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, false
	}
	if len(h) == 6 {
		return Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}, true
	}
	return Color{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, true
}

func parseRGBFunc(v string) (Color, bool) {
	open := strings.IndexByte(v, '(')
	end := strings.LastIndexByte(v, ')')
	if open < 0 || end < open {
		return Color{}, false
	}
	args := strings.FieldsFunc(v[open+1:end], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(args) != 3 && len(args) != 4 {
		return Color{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		f, ok := parseChannel(args[i], 255)
		if !ok {
			return Color{}, false
		}
		ch[i] = uint8(f)
	}
	alpha := 255.0
	if len(args) == 4 {
		f, ok := parseChannel(args[3], 1)
		if !ok {
			return Color{}, false
		}
		alpha = f * 255
		if alpha > 255 {
			alpha = 255
		}
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: uint8(alpha + 0.5)}, true
}

// parseChannel parses a number or percentage, clamped to [0, max].
func parseChannel(s string, max float64) (float64, bool) {
	pct := strings.HasSuffix(s, "%")
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, false
	}
	if pct {
		f = f / 100 * max
	}
	if f < 0 {
		f = 0
	}
	if f > max {
		f = max
	}
	return f, true
}
