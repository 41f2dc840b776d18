package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/htmltext/css"
)

// ErrNoTypesetter is returned by Build when no typesetter is configured.
var ErrNoTypesetter = errors.New("缺少排版后端")

// 该文件负责：根据样式表与内容元素声明计算根样式，展开标记为行内片段，
// 交给 Typesetter 断行，最后做纵向排布与水平对齐。

// Build lays out doc. Lengths in the result are device pixels: the
// content element's `transform: scale(n)` is folded into every length.
func Build(doc Document, opts BuildOptions) (*Result, error) {
	if opts.Typesetter == nil {
		return nil, ErrNoTypesetter
	}
	sheet, err := css.ParseStylesheet(doc.GlobalCSS)
	if err != nil {
		return nil, err
	}
	var decls map[string]string
	if strings.TrimSpace(doc.CSS) != "" {
		list, err := css.Parse(doc.CSS)
		if err != nil {
			return nil, fmt.Errorf("解析内容样式失败: %w", err)
		}
		decls = list.Map()
	}

	// 内容元素本身是 div：先应用样式表中匹配它的规则，再应用其声明
	merged := map[string]string{}
	ua := defaultStyle()
	root := ua
	for _, rule := range rulesFor(sheet, element{tag: "div"}, nil) {
		applyDeclarations(&root, rule, ua)
		for k, v := range rule {
			merged[k] = v
		}
	}
	applyDeclarations(&root, decls, ua)
	for k, v := range decls {
		merged[k] = v
	}

	block := computeBlock(merged, root)
	spans, err := ParseMarkup(doc.Markup, root, sheet)
	if err != nil {
		return nil, err
	}
	spans = NormalizeWhitespace(spans, block.WhiteSpace)
	spans = trimTrailingBreak(spans)

	s := block.Scale
	for i := range spans {
		spans[i].Style = scaleStyle(spans[i].Style, s)
	}
	block.Root = scaleStyle(root, s)
	block.LineHeight *= s
	block.MaxWidth *= s
	block.FontFaces = sheet.FontFaces

	lines, err := opts.Typesetter.LayoutLines(spans, block)
	if err != nil {
		return nil, fmt.Errorf("排版失败: %w", err)
	}
	return arrange(lines, spans, block), nil
}

func computeBlock(decls map[string]string, root TextStyle) Block {
	b := Block{Align: "left", WhiteSpace: "normal", Scale: 1}
	if v, ok := decls["text-align"]; ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "center":
			b.Align = "center"
		case "right", "end":
			b.Align = "right"
		}
	}
	if v, ok := decls["white-space"]; ok {
		switch ws := strings.ToLower(strings.TrimSpace(v)); ws {
		case "normal", "nowrap", "pre", "pre-wrap", "pre-line":
			b.WhiteSpace = ws
		case "break-spaces":
			b.WhiteSpace = "pre-wrap"
		}
	}
	if v, ok := decls["line-height"]; ok {
		b.LineHeight = ParseLineHeight(v).Resolve(root.FontSize)
	}
	if v, ok := decls["max-width"]; ok {
		if l, ok := ParseLength(v); ok && l.Value > 0 {
			b.MaxWidth = l.PX(root.FontSize)
		}
	}
	for _, prop := range []string{"word-wrap", "overflow-wrap", "word-break"} {
		switch strings.ToLower(strings.TrimSpace(decls[prop])) {
		case "break-word", "anywhere":
			b.BreakWord = true
		case "break-all":
			b.BreakAll = true
		}
	}
	if v, ok := decls["transform"]; ok {
		b.Scale = parseScale(v)
	}
	return b
}

// arrange stacks lines vertically and applies horizontal alignment. The box
// is as wide as its widest line, or max-width once soft wrapping happened.
func arrange(lines []Line, spans []Span, block Block) *Result {
	width := 0.0
	for _, ln := range lines {
		if !ln.Rule {
			width = math.Max(width, ln.Width)
		}
	}
	hard := 1
	for _, sp := range spans {
		if sp.Break || sp.Rule {
			hard++
		}
	}
	if block.MaxWidth > 0 && block.Wraps() && len(lines) > hard {
		width = block.MaxWidth
	}

	y := 0.0
	for i := range lines {
		ln := &lines[i]
		ln.Y = y
		if ln.Rule {
			ln.Width = width
		} else {
			ln.X = alignOffset(block.Align, width, ln.Width)
		}
		y += ln.Height
	}
	return &Result{Width: width, Height: y, Block: block, Lines: lines}
}

func alignOffset(align string, box, line float64) float64 {
	free := box - line
	if free <= 0 {
		return 0
	}
	switch align {
	case "center":
		return free / 2
	case "right":
		return free
	default:
		return 0
	}
}

// isCollapsible reports whether r is white space that CSS may collapse.
// U+00A0 is deliberately not included.
func isCollapsible(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// NormalizeWhitespace applies the white-space processing of mode to spans:
// collapsing modes fold runs of white space into one space and drop it at
// line starts; pre-line and the pre modes turn newlines into breaks.
func NormalizeWhitespace(spans []Span, mode string) []Span {
	out := make([]Span, 0, len(spans))
	atLineStart := true
	lastSpace := false
	lineBreak := func(st TextStyle) {
		out = append(out, Span{Break: true, Style: st})
		atLineStart = true
		lastSpace = false
	}

	for _, sp := range spans {
		if sp.Break || sp.Rule {
			out = append(out, sp)
			atLineStart = true
			lastSpace = false
			continue
		}
		text := strings.ReplaceAll(sp.Text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\r", "\n")

		if mode == "pre" || mode == "pre-wrap" {
			text = strings.ReplaceAll(text, "\t", "        ")
			for i, part := range strings.Split(text, "\n") {
				if i > 0 {
					lineBreak(sp.Style)
				}
				if part != "" {
					out = append(out, Span{Text: part, Style: sp.Style})
					atLineStart = false
				}
			}
			continue
		}

		keepNewlines := mode == "pre-line"
		var b strings.Builder
		flush := func() {
			if b.Len() > 0 {
				out = append(out, Span{Text: b.String(), Style: sp.Style})
				b.Reset()
			}
		}
		for _, r := range text {
			if r == '\n' && keepNewlines {
				flush()
				lineBreak(sp.Style)
				continue
			}
			if isCollapsible(r) {
				if lastSpace || atLineStart {
					continue
				}
				b.WriteByte(' ')
				lastSpace = true
				continue
			}
			b.WriteRune(r)
			lastSpace = false
			atLineStart = false
		}
		flush()
	}
	return out
}

// trimTrailingBreak drops a final break: a line break at the very end of a
// block does not open a new line.
func trimTrailingBreak(spans []Span) []Span {
	if n := len(spans); n > 0 && spans[n-1].Break {
		return spans[:n-1]
	}
	return spans
}
