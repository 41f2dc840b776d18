package layout

import (
	"sort"
	"strings"

	"github.com/ByLCY/htmltext/css"
)

// 该文件实现简化的层叠：标签默认样式 → 样式表规则（按特异性）→ 行内 style。
// 所有长度在此阶段以 CSS px 保存，缩放在 Build 中统一处理。

var fontSizeKeywords = map[string]float64{
	"xx-small": 9,
	"x-small":  10,
	"small":    13,
	"medium":   16,
	"large":    18,
	"x-large":  24,
	"xx-large": 32,
}

// defaultStyle is the user agent style of the content element.
func defaultStyle() TextStyle {
	return TextStyle{
		FontSize:   RootFontSize,
		FontWeight: "normal",
		FontStyle:  "normal",
		Color:      Color{A: 255},
	}
}

// element is what selector matching needs to know about a node.
type element struct {
	tag     string
	id      string
	classes []string
}

// compound is one simple selector sequence such as `p.note#x`.
type compound struct {
	tag     string
	id      string
	classes []string
}

func (c compound) matches(el element) bool {
	if c.tag != "" && c.tag != "*" && c.tag != el.tag {
		return false
	}
	if c.id != "" && c.id != el.id {
		return false
	}
	for _, cls := range c.classes {
		found := false
		for _, have := range el.classes {
			if have == cls {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func parseCompound(s string) (compound, bool) {
	var c compound
	i := 0
	readName := func() string {
		start := i
		for i < len(s) && s[i] != '.' && s[i] != '#' {
			i++
		}
		return s[start:i]
	}
	c.tag = strings.ToLower(readName())
	for i < len(s) {
		kind := s[i]
		i++
		name := readName()
		if name == "" {
			return compound{}, false
		}
		if kind == '.' {
			c.classes = append(c.classes, name)
		} else {
			c.id = name
		}
	}
	if strings.ContainsAny(c.tag, ":[>+~") {
		// 伪类、属性选择器等不支持
		return compound{}, false
	}
	return c, true
}

// selector is a descendant chain; the last compound is the subject.
type selector struct {
	parts       []compound
	specificity int
}

func parseSelector(s string) (selector, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return selector{}, false
	}
	sel := selector{}
	for _, f := range fields {
		c, ok := parseCompound(f)
		if !ok {
			return selector{}, false
		}
		sel.parts = append(sel.parts, c)
		if c.id != "" {
			sel.specificity += 100
		}
		sel.specificity += 10 * len(c.classes)
		if c.tag != "" && c.tag != "*" {
			sel.specificity++
		}
	}
	return sel, true
}

// matches checks el against the subject and the remaining compounds against
// ancestors, innermost first.
func (s selector) matches(el element, ancestors []element) bool {
	last := len(s.parts) - 1
	if !s.parts[last].matches(el) {
		return false
	}
	j := len(ancestors) - 1
	for i := last - 1; i >= 0; i-- {
		for j >= 0 && !s.parts[i].matches(ancestors[j]) {
			j--
		}
		if j < 0 {
			return false
		}
		j--
	}
	return true
}

type matchedRule struct {
	specificity int
	order       int
	decls       map[string]string
}

// rulesFor returns the declarations of every rule matching el, lowest
// specificity first; ties keep source order.
func rulesFor(sheet *css.Stylesheet, el element, ancestors []element) []map[string]string {
	if sheet == nil {
		return nil
	}
	var matched []matchedRule
	for order, rule := range sheet.Rules {
		best := -1
		for _, raw := range rule.Selectors {
			sel, ok := parseSelector(raw)
			if !ok || !sel.matches(el, ancestors) {
				continue
			}
			if sel.specificity > best {
				best = sel.specificity
			}
		}
		if best >= 0 {
			matched = append(matched, matchedRule{specificity: best, order: order, decls: rule.Declarations})
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].specificity < matched[j].specificity })
	out := make([]map[string]string, len(matched))
	for i, m := range matched {
		out[i] = m.decls
	}
	return out
}

// applyDeclarations applies decls on top of st. parent is the style of the
// parent element; em and % font sizes resolve against it.
func applyDeclarations(st *TextStyle, decls map[string]string, parent TextStyle) {
	if v, ok := decls["font-size"]; ok {
		if size, ok := parseFontSize(v, parent.FontSize); ok {
			st.FontSize = size
		}
	}
	for prop, v := range decls {
		v = strings.TrimSpace(v)
		lv := strings.ToLower(v)
		switch prop {
		case "color":
			if c, ok := ParseColor(v); ok {
				st.Color = c
			}
		case "font-family":
			st.FontFamily = v
		case "font-weight":
			switch lv {
			case "bolder":
				st.FontWeight = "bold"
			case "lighter":
				st.FontWeight = "normal"
			default:
				st.FontWeight = lv
			}
		case "font-style":
			st.FontStyle = lv
		case "font":
			applyFontShorthand(st, lv, parent)
		case "letter-spacing":
			if lv == "normal" {
				st.LetterSpacing = 0
			} else if l, ok := ParseLength(v); ok {
				st.LetterSpacing = l.PX(st.FontSize)
			}
		case "text-decoration", "text-decoration-line":
			if lv == "none" {
				st.Underline, st.LineThrough = false, false
			}
			if strings.Contains(lv, "underline") {
				st.Underline = true
			}
			if strings.Contains(lv, "line-through") {
				st.LineThrough = true
			}
		case "text-shadow":
			st.Shadow = parseShadow(v, st.FontSize)
		case "-webkit-text-stroke-width", "text-stroke-width":
			if l, ok := ParseLength(v); ok {
				st.Stroke.Width = l.PX(st.FontSize)
			}
		case "-webkit-text-stroke-color", "text-stroke-color":
			if c, ok := ParseColor(v); ok {
				st.Stroke.Color = c
			}
		case "-webkit-text-stroke", "text-stroke":
			for _, part := range splitValue(v) {
				if l, ok := ParseLength(part); ok {
					st.Stroke.Width = l.PX(st.FontSize)
				} else if c, ok := ParseColor(part); ok {
					st.Stroke.Color = c
				}
			}
		case "vertical-align":
			switch lv {
			case "sub":
				st.BaselineShift = parent.BaselineShift - 0.25*parent.FontSize
			case "super":
				st.BaselineShift = parent.BaselineShift + 0.4*parent.FontSize
			case "baseline":
				st.BaselineShift = parent.BaselineShift
			}
		}
	}
	// 描边颜色缺省为文字颜色（currentColor）
	if st.Stroke.Width > 0 && st.Stroke.Color == (Color{}) {
		st.Stroke.Color = st.Color
	}
}

func parseFontSize(v string, parentSize float64) (float64, bool) {
	lv := strings.ToLower(strings.TrimSpace(v))
	if size, ok := fontSizeKeywords[lv]; ok {
		return size, true
	}
	switch lv {
	case "smaller":
		return parentSize * 0.83, true
	case "larger":
		return parentSize * 1.2, true
	}
	l, ok := ParseLength(lv)
	if !ok || l.Value < 0 {
		return 0, false
	}
	return l.PX(parentSize), true
}

// applyFontShorthand handles `font: [style] [weight] size[/line-height] family`.
func applyFontShorthand(st *TextStyle, v string, parent TextStyle) {
	parts := splitValue(v)
	for i, p := range parts {
		switch {
		case p == "italic" || p == "oblique":
			st.FontStyle = p
		case p == "bold" || p == "bolder" || (len(p) == 3 && p[1:] == "00"):
			st.FontWeight = p
		default:
			sizePart, _, _ := strings.Cut(p, "/")
			if size, ok := parseFontSize(sizePart, parent.FontSize); ok {
				st.FontSize = size
				if rest := strings.Join(parts[i+1:], " "); rest != "" {
					st.FontFamily = rest
				}
				return
			}
		}
	}
}

// parseShadow reads the first shadow of a text-shadow list.
func parseShadow(v string, fontSize float64) Shadow {
	if strings.EqualFold(strings.TrimSpace(v), "none") {
		return Shadow{}
	}
	first := splitTopLevel(v, ',')[0]
	var lengths []float64
	sh := Shadow{Color: Color{A: 255}}
	for _, part := range splitValue(first) {
		if l, ok := ParseLength(part); ok {
			lengths = append(lengths, l.PX(fontSize))
			continue
		}
		if c, ok := ParseColor(part); ok {
			sh.Color = c
		}
	}
	if len(lengths) < 2 {
		return Shadow{}
	}
	sh.OffsetX, sh.OffsetY = lengths[0], lengths[1]
	if len(lengths) > 2 && lengths[2] > 0 {
		sh.Blur = lengths[2]
	}
	return sh
}

// splitValue splits a CSS value on whitespace outside parentheses.
func splitValue(v string) []string {
	var out []string
	depth := 0
	start := -1
	for i, r := range v {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n'):
			if start >= 0 {
				out = append(out, v[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, v[start:])
	}
	return out
}

// splitTopLevel splits on sep outside parentheses. It always returns at
// least one element.
func splitTopLevel(v string, sep rune) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range v {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				out = append(out, v[start:i])
				start = i + 1
			}
		}
	}
	return append(out, v[start:])
}

// parseScale reads `scale(n)` (or `scale(x, y)`, x is used) from a
// transform value. It returns 1 when nothing usable is found.
func parseScale(transform string) float64 {
	lv := strings.ToLower(transform)
	i := strings.Index(lv, "scale(")
	if i < 0 {
		return 1
	}
	rest := lv[i+len("scale("):]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return 1
	}
	arg := strings.TrimSpace(splitTopLevel(rest[:end], ',')[0])
	l, ok := ParseLength(arg)
	if !ok || l.Unit != UnitNone || l.Value <= 0 {
		return 1
	}
	return l.Value
}

func scaleStyle(st TextStyle, s float64) TextStyle {
	if s == 1 {
		return st
	}
	st.FontSize *= s
	st.LetterSpacing *= s
	st.BaselineShift *= s
	st.Shadow.OffsetX *= s
	st.Shadow.OffsetY *= s
	st.Shadow.Blur *= s
	st.Stroke.Width *= s
	return st
}
