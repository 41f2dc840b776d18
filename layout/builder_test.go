package layout

import (
	"bytes"
	"encoding/json"
	"math"
	"path/filepath"
	"strings"
	"testing"
)

// fixedTypesetter 每个字符宽 fontSize/2，行高 fontSize（或 block.LineHeight），不做软换行。
var fixedTypesetter = TypesetterFunc(func(spans []Span, block Block) ([]Line, error) {
	var lines []Line
	cur := Line{}
	lastBreak := false
	finish := func() {
		if cur.Height == 0 {
			cur.Height = block.Root.FontSize
		}
		if block.LineHeight > 0 {
			cur.Height = block.LineHeight
		}
		lines = append(lines, cur)
		cur = Line{}
	}
	for _, sp := range spans {
		switch {
		case sp.Break:
			finish()
			lastBreak = true
		case sp.Rule:
			if len(cur.Runs) > 0 {
				finish()
			}
			lines = append(lines, Line{Rule: true, Height: sp.Style.FontSize})
			lastBreak = false
		default:
			w := float64(len([]rune(sp.Text))) * sp.Style.FontSize / 2
			cur.Runs = append(cur.Runs, Run{Text: sp.Text, X: cur.Width, Width: w, Style: sp.Style})
			cur.Width += w
			cur.Height = math.Max(cur.Height, sp.Style.FontSize)
			lastBreak = false
		}
	}
	if len(cur.Runs) > 0 || lastBreak {
		finish()
	}
	return lines, nil
})

func build(t *testing.T, doc Document) *Result {
	t.Helper()
	res, err := Build(doc, BuildOptions{Typesetter: fixedTypesetter})
	if err != nil {
		t.Fatalf("Build 失败: %v", err)
	}
	return res
}

func lineText(ln Line) string {
	var b strings.Builder
	for _, r := range ln.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

func TestBuildRequiresTypesetter(t *testing.T) {
	if _, err := Build(Document{Markup: "x"}, BuildOptions{}); err != ErrNoTypesetter {
		t.Fatalf("缺少排版后端时应返回 ErrNoTypesetter，实际 %v", err)
	}
}

func TestBuildInlineStyles(t *testing.T) {
	res := build(t, Document{CSS: "font-size: 20px; color: #ff0000", Markup: "Hello <b>World</b>"})
	if len(res.Lines) != 1 {
		t.Fatalf("期望 1 行，实际 %d", len(res.Lines))
	}
	runs := res.Lines[0].Runs
	if len(runs) != 2 || runs[0].Text != "Hello " || runs[1].Text != "World" {
		t.Fatalf("片段拆分错误: %+v", runs)
	}
	if runs[0].Style.FontWeight != "normal" || runs[1].Style.FontWeight != "bold" {
		t.Fatalf("b 标签应加粗: %+v", runs)
	}
	if runs[1].Style.Color != (Color{255, 0, 0, 255}) {
		t.Fatalf("颜色应继承: %+v", runs[1].Style.Color)
	}
	if res.Width != 110 || res.Height != 20 {
		t.Fatalf("尺寸错误: %gx%g", res.Width, res.Height)
	}
}

func TestBuildFoldsScaleIntoLengths(t *testing.T) {
	res := build(t, Document{CSS: "transform: scale(2); font-size: 10px; max-width: 50px; line-height: 12px", Markup: "ab"})
	if res.Block.Scale != 2 || res.Block.MaxWidth != 100 || res.Block.LineHeight != 24 {
		t.Fatalf("缩放未折算: %+v", res.Block)
	}
	if got := res.Lines[0].Runs[0].Style.FontSize; got != 20 {
		t.Fatalf("字号应为 20，实际 %g", got)
	}
	if res.Width != 20 || res.Height != 24 {
		t.Fatalf("尺寸错误: %gx%g", res.Width, res.Height)
	}
}

func TestBuildBreaksAndBlocks(t *testing.T) {
	res := build(t, Document{CSS: "font-size: 10px", Markup: "<p>one</p>\n<p>two</p>line<br/>three<br/>"})
	var got []string
	for _, ln := range res.Lines {
		got = append(got, lineText(ln))
	}
	want := []string{"one", "two", "line", "three"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("行拆分错误: got=%q want=%q", got, want)
	}
	for i, ln := range res.Lines {
		if ln.Y != float64(i)*10 {
			t.Fatalf("第 %d 行 Y 错误: %g", i, ln.Y)
		}
	}
}

func TestBuildDoubleBreakKeepsBlankLine(t *testing.T) {
	res := build(t, Document{CSS: "font-size: 10px", Markup: "a<br/><br/>"})
	if len(res.Lines) != 2 || lineText(res.Lines[1]) != "" {
		t.Fatalf("期望 a 与一个空行，实际 %d 行", len(res.Lines))
	}
}

func TestBuildHorizontalRule(t *testing.T) {
	res := build(t, Document{CSS: "font-size: 10px", Markup: "abcd<hr/>ab"})
	if len(res.Lines) != 3 || !res.Lines[1].Rule {
		t.Fatalf("hr 应独占一行: %+v", res.Lines)
	}
	if res.Lines[1].Width != res.Width {
		t.Fatalf("hr 应撑满内容宽度: %g vs %g", res.Lines[1].Width, res.Width)
	}
}

func TestBuildAlignment(t *testing.T) {
	res := build(t, Document{CSS: "font-size: 10px; text-align: center", Markup: "abcd<br/>ab"})
	if res.Lines[1].X != 5 {
		t.Fatalf("居中偏移应为 5，实际 %g", res.Lines[1].X)
	}
	res = build(t, Document{CSS: "font-size: 10px; text-align: right", Markup: "abcd<br/>ab"})
	if res.Lines[1].X != 10 {
		t.Fatalf("右对齐偏移应为 10，实际 %g", res.Lines[1].X)
	}
}

func TestBuildStylesheetRules(t *testing.T) {
	doc := Document{
		GlobalCSS: `.hl { color: blue } p .hl { font-weight: bold } #x { font-size: 30px } span { color: green }`,
		CSS:       "font-size: 10px",
		Markup:    `<span class="hl">a</span><p><span class="hl" id="x">b</span></p>`,
	}
	res := build(t, doc)
	a := res.Lines[0].Runs[0].Style
	b := res.Lines[1].Runs[0].Style
	if a.Color != (Color{0, 0, 255, 255}) {
		t.Fatalf("类选择器特异性应高于标签选择器: %+v", a.Color)
	}
	if a.FontWeight != "normal" || b.FontWeight != "bold" {
		t.Fatalf("后代选择器匹配错误: a=%s b=%s", a.FontWeight, b.FontWeight)
	}
	if b.FontSize != 30 {
		t.Fatalf("id 选择器未生效: %g", b.FontSize)
	}
}

func TestBuildStylesheetSelectorList(t *testing.T) {
	res := build(t, Document{
		GlobalCSS: `b, i { color: red }`,
		CSS:       "font-size: 10px",
		Markup:    `<b>a</b>c<i>b</i>`,
	})
	runs := res.Lines[0].Runs
	if len(runs) != 3 {
		t.Fatalf("期望 3 个 run，得到 %d", len(runs))
	}
	red := Color{255, 0, 0, 255}
	if runs[0].Style.Color != red || runs[2].Style.Color != red {
		t.Fatalf("选择器列表中的每个选择器都应生效: %+v %+v", runs[0].Style.Color, runs[2].Style.Color)
	}
	if runs[1].Style.Color == red {
		t.Fatalf("未匹配的文本不应变色")
	}
}

func TestBuildInlineStyleAndDisplayNone(t *testing.T) {
	res := build(t, Document{
		CSS:    "font-size: 10px",
		Markup: `<span style="font-size: 2em; letter-spacing: 0.1em; text-shadow: 1px 2px 3px red">x</span><span style="display: none">hidden</span>`,
	})
	runs := res.Lines[0].Runs
	if len(runs) != 1 {
		t.Fatalf("display:none 内容应被跳过: %+v", runs)
	}
	st := runs[0].Style
	if st.FontSize != 20 || st.LetterSpacing != 2 {
		t.Fatalf("em 单位换算错误: %+v", st)
	}
	if !st.HasShadow() || st.Shadow.OffsetX != 1 || st.Shadow.OffsetY != 2 || st.Shadow.Blur != 3 {
		t.Fatalf("text-shadow 解析错误: %+v", st.Shadow)
	}
}

func TestBuildStrokeDefaultsToTextColor(t *testing.T) {
	res := build(t, Document{CSS: "color: #00ff00; -webkit-text-stroke-width: 2px", Markup: "x"})
	st := res.Lines[0].Runs[0].Style
	if !st.HasStroke() || st.Stroke.Color != st.Color {
		t.Fatalf("描边颜色应默认为文字颜色: %+v", st.Stroke)
	}
}

func TestBuildSubSupAndFontTag(t *testing.T) {
	res := build(t, Document{CSS: "font-size: 20px", Markup: `H<sub>2</sub>O<sup>+</sup><font color="red" size="7">F</font>`})
	runs := res.Lines[0].Runs
	if runs[1].Style.BaselineShift >= 0 || runs[3].Style.BaselineShift <= 0 {
		t.Fatalf("sub/sup 基线偏移方向错误: %+v", runs)
	}
	if runs[4].Style.FontSize != 48 || runs[4].Style.Color != (Color{255, 0, 0, 255}) {
		t.Fatalf("font 标签属性未生效: %+v", runs[4].Style)
	}
}

func TestBuildCarriesFontFaces(t *testing.T) {
	res := build(t, Document{
		GlobalCSS: `@font-face { font-family: "Lobster"; src: url('https://cdn.test/Lobster.ttf'); }`,
		CSS:       "font-family: Lobster",
		Markup:    "x",
	})
	if len(res.Block.FontFaces) != 1 || res.Block.FontFaces[0].Src != "https://cdn.test/Lobster.ttf" {
		t.Fatalf("@font-face 未传递给排版后端: %+v", res.Block.FontFaces)
	}
	if res.Block.Root.FontFamily != "Lobster" {
		t.Fatalf("根字体族错误: %q", res.Block.Root.FontFamily)
	}
}

func TestBuildEmptyMarkup(t *testing.T) {
	res := build(t, Document{Markup: " "})
	if len(res.Lines) != 0 || res.Width != 0 || res.Height != 0 {
		t.Fatalf("空白内容应没有行: %+v", res)
	}
}

func TestNormalizeWhitespaceModes(t *testing.T) {
	st := defaultStyle()
	in := []Span{{Text: "  a \n\t b  ", Style: st}, {Text: " c", Style: st}}

	join := func(spans []Span) string {
		var b strings.Builder
		for _, sp := range spans {
			if sp.Break {
				b.WriteString("⏎")
				continue
			}
			b.WriteString(sp.Text)
		}
		return b.String()
	}

	cases := map[string]string{
		"normal":   "a b c",
		"nowrap":   "a b c",
		"pre-line": "a ⏎b c",
		"pre":      "  a ⏎         b   c",
		"pre-wrap": "  a ⏎         b   c",
	}
	for mode, want := range cases {
		if got := join(NormalizeWhitespace(in, mode)); got != want {
			t.Fatalf("%s: got=%q want=%q", mode, got, want)
		}
	}
}

func TestNonBreakingSpaceSurvivesCollapse(t *testing.T) {
	res := build(t, Document{Markup: "a&#160;&#160;b"})
	if got := lineText(res.Lines[0]); got != "a\u00a0\u00a0b" {
		t.Fatalf("不换行空格不应被折叠: %q", got)
	}
}

func TestWriteDebugJSON(t *testing.T) {
	res := build(t, Document{Markup: "hi"})
	var buf bytes.Buffer
	if err := EncodeDebugJSON(&buf, res); err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	var back Result
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("JSON 无法解析: %v", err)
	}
	if len(back.Lines) != 1 || back.Lines[0].Runs[0].Text != "hi" {
		t.Fatalf("调试 JSON 内容错误: %s", buf.String())
	}
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteDebugJSON(res, path); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
}
