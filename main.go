package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ByLCY/htmltext/binding"
	"github.com/ByLCY/htmltext/fonts"
	"github.com/ByLCY/htmltext/htmltext"
	"github.com/ByLCY/htmltext/layout"
	canvasrenderer "github.com/ByLCY/htmltext/renderer/canvas"
	"github.com/ByLCY/htmltext/style"
)

type config struct {
	text       string
	overrides  string
	stylesheet string
	font       string
	fontFamily string
	data       any
	resolution float64
	padding    float64
	wrap       float64
	trim       bool
	out        string
	pdf        string
	debug      string
}

func main() {
	text := flag.String("text", "<b>Hello</b> World", "要渲染的 HTML 片段")
	input := flag.String("in", "", "从文件读取 HTML 片段，优先于 -text")
	overrides := flag.String("style", "", "追加的 CSS 声明，例如 'color: red; font-size: 40px'")
	stylesheet := flag.String("css", "", "全局样式表")
	font := flag.String("font", "", "字体 URL 或路径")
	fontFamily := flag.String("font-family", "", "字体族名称，默认取文件名")
	dataJSON := flag.String("data", "", "绑定到 ${path} 占位符的 JSON 数据")
	resolution := flag.Float64("resolution", 1, "像素密度")
	padding := flag.Float64("padding", 0, "四周留白（CSS 像素）")
	wrap := flag.Float64("wrap", 0, "自动换行宽度（CSS 像素），0 表示不换行")
	trim := flag.Bool("trim", false, "裁剪到可见像素")
	output := flag.String("out", "output/text.png", "PNG 输出路径")
	pdfPath := flag.String("pdf", "", "矢量 PDF 输出路径")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	if *verbose {
		htmltext.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := config{
		text:       *text,
		overrides:  *overrides,
		stylesheet: *stylesheet,
		font:       *font,
		fontFamily: *fontFamily,
		resolution: *resolution,
		padding:    *padding,
		wrap:       *wrap,
		trim:       *trim,
		out:        *output,
		pdf:        *pdfPath,
		debug:      *debug,
	}
	baseDir := "."
	if *input != "" {
		raw, err := os.ReadFile(*input)
		if err != nil {
			log.Fatalf("读取输入文件失败: %v", err)
		}
		cfg.text = string(raw)
		baseDir = filepath.Dir(*input)
	}
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &cfg.data); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{BaseDir: baseDir})
	if err := run(context.Background(), cfg, r); err != nil {
		log.Fatalf("渲染失败: %v", err)
	}
	fmt.Printf("已生成 PNG：%s\n", cfg.out)
}

// run 串联样式、光栅化与各类输出。
func run(ctx context.Context, cfg config, r *canvasrenderer.Renderer) error {
	d, err := buildStyle(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.CleanFonts()

	markup := binding.Interpolate(cfg.text, cfg.data)
	node, err := htmltext.New(markup, d, htmltext.WithRenderer(r), htmltext.WithResolution(cfg.resolution))
	if err != nil {
		return err
	}
	defer node.Destroy(htmltext.DefaultDestroyOptions)

	if err := node.Refresh(ctx, false); err != nil {
		return fmt.Errorf("光栅化失败: %w", err)
	}
	buf := node.Buffer()
	if buf == nil || node.Dirty() {
		return fmt.Errorf("光栅化未完成")
	}
	if err := writeFile(cfg.out, func(f *os.File) error { return png.Encode(f, buf) }); err != nil {
		return fmt.Errorf("写入 PNG 失败: %w", err)
	}

	doc := layout.Document{GlobalCSS: d.ToGlobalCSS(), CSS: d.ToCSS(1), Markup: node.Text()}
	if cfg.pdf != "" {
		info := canvasrenderer.PDFInfo{Title: "htmltext", Creator: "htmltext"}
		err := writeFile(cfg.pdf, func(f *os.File) error { return r.ExportPDF(f, doc, d.Padding(), info) })
		if err != nil {
			return fmt.Errorf("写入 PDF 失败: %w", err)
		}
	}
	if cfg.debug != "" {
		res, err := r.Layout(doc)
		if err != nil {
			return fmt.Errorf("布局计算失败: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(cfg.debug), 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
		if err := layout.WriteDebugJSON(res, cfg.debug); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}
	return nil
}

func buildStyle(ctx context.Context, cfg config) (*style.Descriptor, error) {
	d := style.New(style.WithStylesheet(cfg.stylesheet))
	d.Update(func(p *style.Props) {
		p.Padding = cfg.padding
		p.Trim = cfg.trim
		if cfg.wrap > 0 {
			p.WordWrap = true
			p.WordWrapWidth = cfg.wrap
		}
	})
	if cfg.overrides != "" {
		if err := d.AddOverride(cfg.overrides); err != nil {
			return nil, err
		}
	}
	if cfg.font != "" {
		if err := d.LoadFont(ctx, cfg.font, fonts.Options{Family: cfg.fontFamily}); err != nil {
			return nil, err
		}
		d.SetFontFamily(d.Fonts()[0].Family)
	}
	return d, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
