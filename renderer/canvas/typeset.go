package canvasrenderer

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/htmltext/layout"
)

// piece is a word or a run of spaces with its measured width (px).
type piece struct {
	text  string
	width float64
	space bool
	style layout.TextStyle
}

type lineBuilder struct {
	pieces []piece
	width  float64
}

func (b *lineBuilder) add(p piece) {
	b.pieces = append(b.pieces, p)
	b.width += p.width
}

// LayoutLines 实现 layout.Typesetter 接口，使用贪心换行算法。
// 所有宽度均为像素；与字体系统交互时在边界做 px↔mm/pt 换算。
func (r *Renderer) LayoutLines(spans []layout.Span, block layout.Block) ([]layout.Line, error) {
	limit := math.MaxFloat64
	if block.MaxWidth > 0 && block.Wraps() {
		limit = block.MaxWidth
	}
	preserve := block.PreservesSpaces()

	var (
		lines     []layout.Line
		cur       lineBuilder
		lastBreak bool
	)
	emit := func() {
		lines = append(lines, r.finishLine(cur, block, preserve))
		cur = lineBuilder{}
	}

	for _, sp := range spans {
		switch {
		case sp.Break:
			emit()
			lastBreak = true
			continue
		case sp.Rule:
			if len(cur.pieces) > 0 {
				emit()
			}
			lines = append(lines, ruleLine(sp.Style))
			lastBreak = false
			continue
		}
		lastBreak = false

		face := r.face(sp.Style, block.FontFaces, sp.Style.Color)
		for _, token := range tokenizeContent(sp.Text) {
			p := piece{text: token, style: sp.Style, space: isSpaceToken(token)}
			p.width = textWidth(face, token, sp.Style.LetterSpacing)
			if p.space {
				// 空白不触发换行，行尾空白在 finishLine 中去除
				if len(cur.pieces) == 0 && !preserve {
					continue
				}
				cur.add(p)
				continue
			}

			if cur.width > 0 && cur.width+p.width > limit {
				if block.BreakAll {
					// break-all：先填满当前行剩余空间
					for _, chunk := range splitByWidth(token, limit-cur.width, limit, face, sp.Style.LetterSpacing) {
						if cur.width > 0 && cur.width+chunk.width > limit {
							emit()
						}
						cur.add(piece{text: chunk.text, width: chunk.width, style: sp.Style})
					}
					continue
				}
				emit()
			}
			if p.width > limit && (block.BreakWord || block.BreakAll) {
				for _, chunk := range splitByWidth(token, limit, limit, face, sp.Style.LetterSpacing) {
					if cur.width > 0 && cur.width+chunk.width > limit {
						emit()
					}
					cur.add(piece{text: chunk.text, width: chunk.width, style: sp.Style})
				}
				continue
			}
			cur.add(p)
		}
	}
	if len(cur.pieces) > 0 || lastBreak {
		emit()
	}
	return lines, nil
}

// finishLine trims hanging spaces, merges equally styled pieces into runs
// and computes the line box from the font metrics.
func (r *Renderer) finishLine(cur lineBuilder, block layout.Block, preserve bool) layout.Line {
	pieces := cur.pieces
	if !preserve {
		for len(pieces) > 0 && pieces[len(pieces)-1].space {
			pieces = pieces[:len(pieces)-1]
		}
	}

	var ascent, descent, height float64
	measure := func(st layout.TextStyle) {
		m := r.face(st, block.FontFaces, st.Color).Metrics()
		a := m.Ascent*layout.MmToPx + st.BaselineShift
		d := math.Abs(m.Descent)*layout.MmToPx - st.BaselineShift
		ascent = math.Max(ascent, a)
		descent = math.Max(descent, d)
		height = math.Max(height, m.LineHeight*layout.MmToPx)
	}

	var runs []layout.Run
	x := 0.0
	for _, p := range pieces {
		if n := len(runs); n > 0 && runs[n-1].Style == p.style {
			runs[n-1].Text += p.text
			runs[n-1].Width += p.width
		} else {
			measure(p.style)
			runs = append(runs, layout.Run{Text: p.text, X: x, Width: p.width, Style: p.style})
		}
		x += p.width
	}
	if len(runs) == 0 {
		// 空行使用根样式的度量
		measure(block.Root)
	}

	content := ascent + descent
	if block.LineHeight > 0 {
		height = block.LineHeight
	} else {
		height = math.Max(height, content)
	}
	return layout.Line{
		Width:    x,
		Height:   height,
		Baseline: (height-content)/2 + ascent,
		Runs:     runs,
	}
}

// ruleLine is the line box of an <hr>: half an em above and below a 2px rule.
func ruleLine(st layout.TextStyle) layout.Line {
	h := st.FontSize + 2
	return layout.Line{Rule: true, Height: h, Baseline: h / 2}
}

// textWidth measures s in pixels. Letter spacing is added after every
// character, as CSS does.
func textWidth(face *canvas.FontFace, s string, letterSpacing float64) float64 {
	w := face.TextWidth(s) * layout.MmToPx
	if letterSpacing != 0 {
		w += letterSpacing * float64(utf8.RuneCountInString(s))
	}
	return w
}

func isSpaceToken(s string) bool {
	return s != "" && strings.Trim(s, " \t") == ""
}

// tokenizeContent splits s into alternating words and runs of spaces.
// U+00A0 belongs to words.
func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		isSpace := r == ' ' || r == '\t'
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

type chunk struct {
	text  string
	width float64
}

// splitByWidth cuts token into chunks: the first no wider than first, the
// rest no wider than limit. Every chunk holds at least one character.
func splitByWidth(token string, first, limit float64, face *canvas.FontFace, letterSpacing float64) []chunk {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []chunk{{text: token, width: textWidth(face, token, letterSpacing)}}
	}
	var parts []chunk
	var builder strings.Builder
	budget := first
	prevWidth := 0.0
	for _, r := range token {
		builder.WriteRune(r)
		w := textWidth(face, builder.String(), letterSpacing)
		if w > budget && utf8.RuneCountInString(builder.String()) > 1 {
			runes := []rune(builder.String())
			parts = append(parts, chunk{text: string(runes[:len(runes)-1]), width: prevWidth})
			builder.Reset()
			builder.WriteRune(r)
			w = textWidth(face, string(r), letterSpacing)
			budget = limit
		} else if w > budget && len(parts) == 0 && budget < limit {
			// 首段连一个字符都放不下：整体移到下一行
			budget = limit
		}
		prevWidth = w
	}
	if builder.Len() > 0 {
		parts = append(parts, chunk{text: builder.String(), width: prevWidth})
	}
	return parts
}
