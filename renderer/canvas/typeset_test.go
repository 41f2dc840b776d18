package canvasrenderer

import (
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/htmltext/fonts"
	"github.com/ByLCY/htmltext/layout"
)

func testRenderer() *Renderer {
	return NewRendererWithOptions(Options{Registry: fonts.NewRegistry(nil)})
}

func textStyle(size float64) layout.TextStyle {
	return layout.TextStyle{FontSize: size, FontWeight: "normal", FontStyle: "normal", Color: layout.Color{A: 255}}
}

func block(maxWidth float64) layout.Block {
	return layout.Block{Align: "left", WhiteSpace: "normal", MaxWidth: maxWidth, Scale: 1, Root: textStyle(16)}
}

func text(s string) layout.Span { return layout.Span{Text: s, Style: textStyle(16)} }

func brk() layout.Span { return layout.Span{Break: true, Style: textStyle(16)} }

func joinRuns(ln layout.Line) string {
	var b strings.Builder
	for _, r := range ln.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

func TestLayoutLinesGreedyWrapsText(t *testing.T) {
	r := testRenderer()
	lines, err := r.LayoutLines([]layout.Span{text("hello world again")}, block(60))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(lines))
	}
	for i, ln := range lines {
		if strings.HasSuffix(joinRuns(ln), " ") {
			t.Fatalf("line %d keeps a hanging space: %q", i, joinRuns(ln))
		}
	}
}

func TestGreedyWrapHonorsBreaks(t *testing.T) {
	r := testRenderer()
	lines, err := r.LayoutLines([]layout.Span{text("foo"), brk(), brk(), text("bar")}, block(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines including blank, got %d", len(lines))
	}
	if joinRuns(lines[1]) != "" {
		t.Fatalf("expected middle line to be blank, got %q", joinRuns(lines[1]))
	}
	if lines[1].Height <= 0 {
		t.Fatalf("blank line must still take the root line height")
	}
}

// TestGreedyWrapWidthLimit 验证开启 break-word 后每行宽度不超过限制（px）。
func TestGreedyWrapWidthLimit(t *testing.T) {
	r := testRenderer()
	limit := 100.0
	b := block(limit)
	b.BreakWord = true
	lines, err := r.LayoutLines([]layout.Span{text(strings.Repeat("a", 60))}, b)
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected the word to be split, got %d lines", len(lines))
	}
	total := 0
	for i, ln := range lines {
		if ln.Width-limit > 1e-6 { // 允许极小的数值误差
			t.Fatalf("line %d width exceeds limit: width=%g limit=%g", i, ln.Width, limit)
		}
		total += len(joinRuns(ln))
	}
	if total != 60 {
		t.Fatalf("characters lost while splitting: %d", total)
	}
}

func TestLongWordOverflowsWithoutBreakWord(t *testing.T) {
	r := testRenderer()
	lines, err := r.LayoutLines([]layout.Span{text(strings.Repeat("a", 60))}, block(100))
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) != 1 || lines[0].Width <= 100 {
		t.Fatalf("expected one overflowing line, got %d lines", len(lines))
	}
}

func TestBreakAllFillsCurrentLine(t *testing.T) {
	r := testRenderer()
	b := block(100)
	b.BreakAll = true
	lines, err := r.LayoutLines([]layout.Span{text("ab " + strings.Repeat("c", 30))}, b)
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if !strings.HasPrefix(joinRuns(lines[0]), "ab c") {
		t.Fatalf("break-all should continue on the first line, got %q", joinRuns(lines[0]))
	}
}

// 当第一行宽度与容器宽度恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestNoBlankLineWhenEqualWidthThenBreak(t *testing.T) {
	r := testRenderer()
	first := "SAMPLE-A"
	measured, err := r.LayoutLines([]layout.Span{text(first)}, block(0))
	if err != nil {
		t.Fatalf("measure error: %v", err)
	}
	if len(measured) != 1 {
		t.Fatalf("unexpected measured lines: %d", len(measured))
	}
	limit := measured[0].Width
	if limit <= 0 {
		t.Fatalf("invalid measured width: %g", limit)
	}

	lines, err := r.LayoutLines([]layout.Span{text(first), brk(), text("SAMPLE-B")}, block(limit))
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if got := len(lines); got != 2 {
		t.Fatalf("expected 2 lines without blank, got %d", got)
	}
	if joinRuns(lines[0]) != first || joinRuns(lines[1]) != "SAMPLE-B" {
		t.Fatalf("line mismatch: %q / %q", joinRuns(lines[0]), joinRuns(lines[1]))
	}
}

func TestNowrapIgnoresMaxWidth(t *testing.T) {
	r := testRenderer()
	b := block(10)
	b.WhiteSpace = "nowrap"
	lines, err := r.LayoutLines([]layout.Span{text("one two three")}, b)
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("nowrap must not wrap, got %d lines", len(lines))
	}
}

// TestLineHeightsInvariant 验证：显式 line-height 覆盖字体度量，且基线位于行框内。
func TestLineHeightsInvariant(t *testing.T) {
	r := testRenderer()
	b := block(80)
	b.LineHeight = 40
	lines, err := r.LayoutLines([]layout.Span{text("longlonglong longlonglong longlonglong")}, b)
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines for invariant test, got %d", len(lines))
	}
	for i, ln := range lines {
		if ln.Height != 40 {
			t.Fatalf("line %d height mismatch: %g", i, ln.Height)
		}
		if ln.Baseline <= 0 || ln.Baseline >= ln.Height {
			t.Fatalf("line %d baseline outside the line box: %g", i, ln.Baseline)
		}
	}
}

func TestMixedSizesShareBaseline(t *testing.T) {
	r := testRenderer()
	big := layout.Span{Text: "B", Style: textStyle(40)}
	lines, err := r.LayoutLines([]layout.Span{text("a "), big}, block(0))
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) != 1 || len(lines[0].Runs) != 2 {
		t.Fatalf("expected one line with two runs, got %+v", lines)
	}
	small, _ := r.LayoutLines([]layout.Span{text("a")}, block(0))
	if lines[0].Height <= small[0].Height {
		t.Fatalf("line height must grow with the largest run: %g vs %g", lines[0].Height, small[0].Height)
	}
	if math.Abs(lines[0].Runs[1].X-lines[0].Runs[0].Width) > 1e-9 {
		t.Fatalf("runs must be adjacent: %+v", lines[0].Runs)
	}
}

func TestTokenizeContent(t *testing.T) {
	got := tokenizeContent("a  b\u00a0c d")
	want := []string{"a", "  ", "b\u00a0c", " ", "d"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("tokenize mismatch: %q", got)
	}
}
