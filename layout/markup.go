package layout

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ByLCY/htmltext/css"
)

// 块级元素前后各产生一次换行。
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "center": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figure": true, "footer": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "li": true, "main": true, "nav": true, "ol": true, "p": true,
	"pre": true, "section": true, "table": true, "tr": true, "ul": true,
}

// 不产生可见内容的元素。
var skippedTags = map[string]bool{
	"head": true, "script": true, "template": true, "title": true, "noscript": true,
}

var headingSizes = map[string]float64{
	"h1": 2, "h2": 1.5, "h3": 1.17, "h4": 1, "h5": 0.83, "h6": 0.67,
}

// <font size=N> 对应的像素大小。
var fontTagSizes = []float64{10, 13, 16, 18, 24, 32, 48}

// markupWalker flattens an element tree into inline spans.
type markupWalker struct {
	sheet     *css.Stylesheet
	spans     []Span
	ancestors []element
}

// ParseMarkup parses markup as the children of a div whose computed style is
// root and returns its inline spans. Whitespace is left untouched.
func ParseMarkup(markup string, root TextStyle, sheet *css.Stylesheet) ([]Span, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("解析标记失败: %w", err)
	}
	if sheet == nil {
		sheet = &css.Stylesheet{}
	}
	w := &markupWalker{sheet: sheet, ancestors: []element{{tag: "div"}}}
	for _, n := range nodes {
		w.walk(n, root)
	}
	return w.spans, nil
}

func (w *markupWalker) walk(n *html.Node, parent TextStyle) {
	switch n.Type {
	case html.TextNode:
		if n.Data != "" {
			w.spans = append(w.spans, Span{Text: n.Data, Style: parent})
		}
		return
	case html.ElementNode:
	default:
		return
	}

	tag := strings.ToLower(n.Data)
	if skippedTags[tag] {
		return
	}
	if tag == "style" {
		w.addStylesheet(n)
		return
	}

	el := elementOf(n, tag)
	st := tagDefaults(tag, n, parent)
	for _, decls := range rulesFor(w.sheet, el, w.ancestors) {
		applyDeclarations(&st, decls, parent)
	}
	inline := inlineDeclarations(n)
	applyDeclarations(&st, inline, parent)

	display := displayOf(tag, w.sheet, el, w.ancestors, inline)
	if display == "none" {
		return
	}

	switch tag {
	case "br":
		w.spans = append(w.spans, Span{Break: true, Style: st})
		return
	case "hr":
		w.spans = append(w.spans, Span{Rule: true, Style: st})
		return
	}

	block := display == "block" || display == "list-item" || display == "flex" || display == "table" || display == "grid"
	if block {
		w.ensureBreak(st)
	}
	w.ancestors = append(w.ancestors, el)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, st)
	}
	w.ancestors = w.ancestors[:len(w.ancestors)-1]
	if block {
		w.ensureBreak(st)
	}
}

// ensureBreak ends the current line unless nothing but whitespace has been
// emitted since the last break.
func (w *markupWalker) ensureBreak(st TextStyle) {
	for i := len(w.spans) - 1; i >= 0; i-- {
		sp := w.spans[i]
		if sp.Break || sp.Rule {
			return
		}
		if strings.TrimFunc(sp.Text, isCollapsible) != "" {
			w.spans = append(w.spans, Span{Break: true, Style: st})
			return
		}
	}
}

func (w *markupWalker) addStylesheet(n *html.Node) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	sheet, err := css.ParseStylesheet(b.String())
	if err != nil {
		return
	}
	w.sheet.Rules = append(w.sheet.Rules, sheet.Rules...)
	w.sheet.FontFaces = append(w.sheet.FontFaces, sheet.FontFaces...)
}

func elementOf(n *html.Node, tag string) element {
	el := element{tag: tag}
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "id":
			el.id = a.Val
		case "class":
			el.classes = strings.Fields(a.Val)
		}
	}
	return el
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func inlineDeclarations(n *html.Node) map[string]string {
	raw, ok := attr(n, "style")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	list, err := css.Parse(raw)
	if err != nil {
		// 浏览器会忽略无法解析的 style 属性
		return nil
	}
	return list.Map()
}

func displayOf(tag string, sheet *css.Stylesheet, el element, ancestors []element, inline map[string]string) string {
	display := "inline"
	if blockTags[tag] {
		display = "block"
	}
	for _, decls := range rulesFor(sheet, el, ancestors) {
		if v, ok := decls["display"]; ok {
			display = strings.ToLower(strings.TrimSpace(v))
		}
	}
	if v, ok := inline["display"]; ok {
		display = strings.ToLower(strings.TrimSpace(v))
	}
	return display
}

// tagDefaults applies the user agent style of tag on top of the inherited
// style.
func tagDefaults(tag string, n *html.Node, parent TextStyle) TextStyle {
	st := parent
	switch tag {
	case "b", "strong", "th":
		st.FontWeight = "bold"
	case "i", "em", "cite", "var", "dfn", "address":
		st.FontStyle = "italic"
	case "u", "ins":
		st.Underline = true
	case "s", "strike", "del":
		st.LineThrough = true
	case "small":
		st.FontSize = parent.FontSize * 0.83
	case "big":
		st.FontSize = parent.FontSize * 1.2
	case "sub":
		st.FontSize = parent.FontSize * 0.83
		st.BaselineShift = parent.BaselineShift - 0.25*parent.FontSize
	case "sup":
		st.FontSize = parent.FontSize * 0.83
		st.BaselineShift = parent.BaselineShift + 0.4*parent.FontSize
	case "code", "kbd", "samp", "tt", "pre":
		st.FontFamily = "monospace"
	case "h1", "h2", "h3", "h4", "h5", "h6":
		st.FontSize = parent.FontSize * headingSizes[tag]
		st.FontWeight = "bold"
	case "font":
		if v, ok := attr(n, "color"); ok {
			if c, ok := ParseColor(v); ok {
				st.Color = c
			}
		}
		if v, ok := attr(n, "face"); ok && v != "" {
			st.FontFamily = v
		}
		if v, ok := attr(n, "size"); ok {
			st.FontSize = fontTagSize(v, parent.FontSize)
		}
	}
	return st
}

func fontTagSize(v string, current float64) float64 {
	v = strings.TrimSpace(v)
	base := 3
	rel := strings.HasPrefix(v, "+") || strings.HasPrefix(v, "-")
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return current
	}
	if rel {
		n += base
	}
	n = max(1, min(7, n))
	return fontTagSizes[n-1]
}
