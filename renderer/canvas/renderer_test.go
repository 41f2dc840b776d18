package canvasrenderer

import (
	"bytes"
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/htmltext/fonts"
	"github.com/ByLCY/htmltext/layout"
)

func opaquePixels(img *image.RGBA, rect image.Rectangle) int {
	n := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if img.RGBAAt(x, y).A > 0 {
				n++
			}
		}
	}
	return n
}

func TestMeasureAndRender(t *testing.T) {
	r := testRenderer()
	doc := layout.Document{CSS: "font-size: 20px; color: black", Markup: "Hello <b>World</b>"}
	size, err := r.Measure(doc)
	if err != nil {
		t.Fatalf("measure error: %v", err)
	}
	if size.Width <= 0 || size.Height <= 0 {
		t.Fatalf("expected a positive size, got %+v", size)
	}

	w, h := int(size.Width)+1, int(size.Height)+1
	img, err := r.Render(doc, layout.Frame{Width: w, Height: h})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Fatalf("unexpected image size %v", img.Bounds())
	}
	if opaquePixels(img, img.Bounds()) == 0 {
		t.Fatalf("rendered image is empty")
	}
}

func TestRenderClipsToViewport(t *testing.T) {
	r := testRenderer()
	doc := layout.Document{CSS: "font-size: 20px", Markup: "WWWW"}
	size, err := r.Measure(doc)
	if err != nil {
		t.Fatalf("measure error: %v", err)
	}
	pad := 10
	w, h := int(size.Width)+2*pad, int(size.Height)+2*pad
	clip := layout.Rect{X: float64(pad), Y: float64(pad), Width: size.Width / 2, Height: size.Height}
	img, err := r.Render(doc, layout.Frame{Width: w, Height: h, Clip: clip})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if n := opaquePixels(img, image.Rect(0, 0, pad, h)); n != 0 {
		t.Fatalf("padding on the left must stay transparent, got %d pixels", n)
	}
	right := image.Rect(pad+int(size.Width/2)+1, 0, w, h)
	if n := opaquePixels(img, right); n != 0 {
		t.Fatalf("content beyond the clip must be cut, got %d pixels", n)
	}
	if opaquePixels(img, img.Bounds()) == 0 {
		t.Fatalf("clipped content is missing")
	}
}

func TestRenderShadowAndStroke(t *testing.T) {
	r := testRenderer()
	plain := layout.Document{CSS: "font-size: 20px", Markup: "x"}
	fancy := layout.Document{CSS: "font-size: 20px; text-shadow: 6px 6px 2px #00000080; -webkit-text-stroke-width: 2px; -webkit-text-stroke-color: red", Markup: "x"}
	frame := layout.Frame{Width: 40, Height: 40}

	a, err := r.Render(plain, frame)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	b, err := r.Render(fancy, frame)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if opaquePixels(b, b.Bounds()) <= opaquePixels(a, a.Bounds()) {
		t.Fatalf("shadow and stroke should cover more pixels")
	}
}

func TestRenderEmptyDocument(t *testing.T) {
	r := testRenderer()
	img, err := r.Render(layout.Document{Markup: " "}, layout.Frame{Width: 3, Height: 2})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if img.Bounds().Dx() != 3 || opaquePixels(img, img.Bounds()) != 0 {
		t.Fatalf("empty document must render a transparent frame")
	}
}

func TestFontResolutionUsesRegistry(t *testing.T) {
	reg := fonts.NewRegistry(fonts.FetchFunc(func(ctx context.Context, url string) ([]byte, error) {
		return gomono.TTF, nil
	}))
	if _, err := reg.Load(context.Background(), "https://cdn.test/Mono.ttf", fonts.Options{}); err != nil {
		t.Fatalf("load error: %v", err)
	}
	r := NewRendererWithOptions(Options{Registry: reg})

	proportional, err := r.Measure(layout.Document{CSS: "font-size: 20px", Markup: "iiii"})
	if err != nil {
		t.Fatalf("measure error: %v", err)
	}
	mono, err := r.Measure(layout.Document{CSS: "font-size: 20px; font-family: Mono, sans-serif", Markup: "iiii"})
	if err != nil {
		t.Fatalf("measure error: %v", err)
	}
	if mono.Width <= proportional.Width {
		t.Fatalf("registered monospace family not used: mono=%g proportional=%g", mono.Width, proportional.Width)
	}
}

func TestFontResolutionUsesFontFace(t *testing.T) {
	r := NewRendererWithOptions(Options{
		Registry: fonts.NewRegistry(nil),
		Fetcher: fonts.FetchFunc(func(ctx context.Context, url string) ([]byte, error) {
			return gomono.TTF, nil
		}),
	})
	doc := layout.Document{
		GlobalCSS: `@font-face { font-family: "Remote"; src: url('https://cdn.test/remote.ttf'); }`,
		CSS:       "font-size: 20px; font-family: 'Remote'",
		Markup:    "iiii",
	}
	remote, err := r.Measure(doc)
	if err != nil {
		t.Fatalf("measure error: %v", err)
	}
	doc.GlobalCSS = ""
	fallback, err := r.Measure(doc)
	if err != nil {
		t.Fatalf("measure error: %v", err)
	}
	if remote.Width <= fallback.Width {
		t.Fatalf("@font-face source not used: remote=%g fallback=%g", remote.Width, fallback.Width)
	}
}

func TestInjectedFonts(t *testing.T) {
	r := NewRendererWithOptions(Options{
		Registry: fonts.NewRegistry(nil),
		Fonts:    map[string]Resource{"Code": {Bytes: gomono.TTF}},
	})
	a, _ := r.Measure(layout.Document{CSS: "font-size: 20px; font-family: Code", Markup: "iiii"})
	b, _ := r.Measure(layout.Document{CSS: "font-size: 20px", Markup: "iiii"})
	if a.Width <= b.Width {
		t.Fatalf("injected font not used: %g vs %g", a.Width, b.Width)
	}
}

func TestExportPDF(t *testing.T) {
	r := testRenderer()
	var buf bytes.Buffer
	err := r.ExportPDF(&buf, layout.Document{CSS: "font-size: 20px", Markup: "Hello <u>PDF</u>"}, 4, PDFInfo{Title: "test"})
	if err != nil {
		t.Fatalf("export error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if err := r.ExportPDF(&buf, layout.Document{Markup: " "}, 0, PDFInfo{}); err == nil {
		t.Fatalf("empty document must be rejected")
	}
}

func TestSlowFontFetchDoesNotBlockOtherDocuments(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	r := NewRendererWithOptions(Options{
		Registry: fonts.NewRegistry(nil),
		Fetcher: fonts.FetchFunc(func(ctx context.Context, url string) ([]byte, error) {
			once.Do(func() { close(started) })
			<-gate
			return goregular.TTF, nil
		}),
	})
	slow := layout.Document{
		GlobalCSS: `@font-face { font-family: "Slow"; src: url('https://slow.test/slow.ttf'); }`,
		CSS:       "font-family: Slow; font-size: 16px",
		Markup:    "slow",
	}
	slowDone := make(chan error, 1)
	go func() {
		_, err := r.Measure(slow)
		slowDone <- err
	}()
	<-started

	fastDone := make(chan error, 1)
	go func() {
		_, err := r.Measure(layout.Document{CSS: "font-family: sans-serif; font-size: 16px", Markup: "fast"})
		fastDone <- err
	}()
	select {
	case err := <-fastDone:
		if err != nil {
			t.Fatalf("测量失败: %v", err)
		}
	case <-time.After(5 * time.Second):
		close(gate)
		t.Fatalf("字体下载阻塞了其他文档的测量")
	}

	close(gate)
	if err := <-slowDone; err != nil {
		t.Fatalf("慢字体文档测量失败: %v", err)
	}
}
