package canvasrenderer

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tdewolff/canvas"
	"golang.org/x/sync/singleflight"

	"github.com/ByLCY/htmltext/css"
	"github.com/ByLCY/htmltext/fonts"
	"github.com/ByLCY/htmltext/internal/logging"
	"github.com/ByLCY/htmltext/layout"
	"github.com/ByLCY/htmltext/renderer"
)

// Renderer lays out and draws documents via github.com/tdewolff/canvas.
type Renderer struct {
	baseDir  string
	registry *fonts.Registry
	fetch    fonts.Fetcher

	// injected resources
	fontBlobs map[string][]byte // by family name (lower case)

	fetchTimeout time.Duration

	// 字体加载在锁外进行，同一 key 的并发加载合并为一次
	loads        singleflight.Group
	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily // nil 表示加载失败，避免重复尝试
}

// DefaultFetchTimeout bounds fetching an @font-face source that is not in
// the registry.
const DefaultFetchTimeout = 10 * time.Second

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

var errFontUnavailable = errors.New("字体不可用")

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	// Registry is consulted for families loaded through a style; nil uses
	// fonts.Default().
	Registry *fonts.Registry
	// Fetcher reads @font-face sources that are not registered; nil uses a
	// fonts.DefaultFetcher rooted at BaseDir.
	Fetcher fonts.Fetcher
	// Fonts maps family names to font files, consulted after the registry.
	Fonts map[string]Resource
	// FetchTimeout bounds each @font-face fetch; zero uses DefaultFetchTimeout.
	FetchTimeout time.Duration
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a renderer with default options.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected resources.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		registry:     opts.Registry,
		fetch:        opts.Fetcher,
		fetchTimeout: opts.FetchTimeout,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	if r.registry == nil {
		r.registry = fonts.Default()
	}
	if r.fetch == nil {
		r.fetch = &fonts.DefaultFetcher{BaseDir: opts.BaseDir}
	}
	if r.fetchTimeout <= 0 {
		r.fetchTimeout = DefaultFetchTimeout
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if len(res.Bytes) > 0 {
			r.fontBlobs[key] = res.Bytes
			continue
		}
		if res.Path != "" {
			path := res.Path
			if !filepath.IsAbs(path) && r.baseDir != "" {
				path = filepath.Join(r.baseDir, path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				// 使用时回退到内置字体
				logging.Logger().Warn("读取字体失败", "family", name, "path", path, "err", err)
				continue
			}
			r.fontBlobs[key] = data
		}
	}
	return r
}

// Measure returns the content box of doc in device pixels.
func (r *Renderer) Measure(doc layout.Document) (layout.Size, error) {
	res, err := r.Layout(doc)
	if err != nil {
		return layout.Size{}, err
	}
	return res.Size(), nil
}

// Layout builds the layout of doc with this renderer as typesetter.
func (r *Renderer) Layout(doc layout.Document) (*layout.Result, error) {
	return layout.Build(doc, layout.BuildOptions{Typesetter: r})
}

// Render rasterizes doc into a frame.
func (r *Renderer) Render(doc layout.Document, frame layout.Frame) (*image.RGBA, error) {
	res, err := r.Layout(doc)
	if err != nil {
		return nil, err
	}
	return r.Rasterize(res, frame), nil
}

// face returns a font face for st at its font size, colored col.
func (r *Renderer) face(st layout.TextStyle, faces []css.FontFace, col layout.Color) *canvas.FontFace {
	family := r.resolveFamily(st, faces)
	return family.Face(st.FontSize*layout.PxToPt, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal)
}

// resolveFamily walks the font-family list: @font-face rules of the
// document, then the registry, then injected fonts, then generic families.
// Nothing matching falls back to the built-in Go fonts.
func (r *Renderer) resolveFamily(st layout.TextStyle, faces []css.FontFace) *canvas.FontFamily {
	bold, italic := fonts.IsBold(st.FontWeight), fonts.IsItalic(st.FontStyle)
	for _, name := range splitFamilies(st.FontFamily) {
		if fam := r.lookupFamily(name, st, faces); fam != nil {
			return fam
		}
	}
	return r.builtin(bold, italic, false)
}

func (r *Renderer) lookupFamily(name string, st layout.TextStyle, faces []css.FontFace) *canvas.FontFamily {
	if ff, ok := matchFontFace(name, st, faces); ok && ff.Src != "" {
		fam, err := r.ensureFontFamily("face|"+ff.Src, func() ([]byte, error) {
			if res, ok := r.registry.Lookup(ff.Src); ok {
				if data := r.registry.Bytes(res); len(data) > 0 {
					return data, nil
				}
			}
			ctx, cancel := context.WithTimeout(context.Background(), r.fetchTimeout)
			defer cancel()
			return r.fetch.Fetch(ctx, ff.Src)
		})
		if err == nil {
			return fam
		}
		logging.Logger().Debug("@font-face 字体不可用", "family", name, "src", ff.Src, "err", err)
	}
	if res, ok := r.registry.Find(name, st.FontWeight, st.FontStyle); ok {
		fam, err := r.ensureFontFamily("registry|"+res.URL+"|"+res.Weight+"|"+res.Style, func() ([]byte, error) {
			return r.registry.Bytes(res), nil
		})
		if err == nil {
			return fam
		}
	}
	key := strings.ToLower(name)
	if blob, ok := r.fontBlobs[key]; ok {
		if fam, err := r.ensureFontFamily("blob|"+key, func() ([]byte, error) { return blob, nil }); err == nil {
			return fam
		}
	}
	switch key {
	case "monospace", "ui-monospace":
		return r.builtin(fonts.IsBold(st.FontWeight), fonts.IsItalic(st.FontStyle), true)
	case "serif", "sans-serif", "system-ui", "ui-sans-serif", "ui-serif", "cursive", "fantasy", fonts.BuiltinFamily:
		return r.builtin(fonts.IsBold(st.FontWeight), fonts.IsItalic(st.FontStyle), false)
	}
	return nil
}

// matchFontFace picks the @font-face of family closest to st: exact
// weight/style first, then the same boldness, then any.
func matchFontFace(family string, st layout.TextStyle, faces []css.FontFace) (css.FontFace, bool) {
	var candidates []css.FontFace
	for _, ff := range faces {
		if strings.EqualFold(ff.Family, family) {
			candidates = append(candidates, ff)
		}
	}
	if len(candidates) == 0 {
		return css.FontFace{}, false
	}
	want := fonts.Style(st.FontWeight, st.FontStyle)
	for _, ff := range candidates {
		if fonts.Style(ff.Weight, ff.Style) == want {
			return ff, true
		}
	}
	for _, ff := range candidates {
		if fonts.IsBold(ff.Weight) == fonts.IsBold(st.FontWeight) {
			return ff, true
		}
	}
	return candidates[0], true
}

func (r *Renderer) builtin(bold, italic, mono bool) *canvas.FontFamily {
	key := "builtin|"
	switch {
	case mono:
		key += "mono"
	case bold && italic:
		key += "bolditalic"
	case bold:
		key += "bold"
	case italic:
		key += "italic"
	default:
		key += "regular"
	}
	fam, err := r.ensureFontFamily(key, func() ([]byte, error) {
		if mono {
			return fonts.BuiltinMono(), nil
		}
		return fonts.Builtin(bold, italic), nil
	})
	if err != nil {
		// 内置字体来自 gofont，解析失败属于程序错误
		panic("canvasrenderer: 内置字体解析失败: " + err.Error())
	}
	return fam
}

// ensureFontFamily returns the cached family for key, loading it with load
// on first use. Failures are cached as well. load runs without holding
// fontMu, so a slow fetch only delays documents that need that font.
func (r *Renderer) ensureFontFamily(key string, load func() ([]byte, error)) (*canvas.FontFamily, error) {
	if fam, ok, err := r.cachedFamily(key); ok {
		return fam, err
	}
	v, err, _ := r.loads.Do(key, func() (any, error) {
		if fam, ok, err := r.cachedFamily(key); ok {
			return fam, err
		}
		data, err := load()
		if err == nil && len(data) == 0 {
			err = errFontUnavailable
		}
		var fam *canvas.FontFamily
		if err == nil {
			fam = canvas.NewFontFamily(key)
			if err = fam.LoadFont(data, 0, canvas.FontRegular); err != nil {
				fam = nil
			}
		}
		r.fontMu.Lock()
		r.fontFamilies[key] = fam
		r.fontMu.Unlock()
		return fam, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*canvas.FontFamily), nil
}

// cachedFamily reports whether key was loaded before, and its outcome.
func (r *Renderer) cachedFamily(key string) (*canvas.FontFamily, bool, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	fam, ok := r.fontFamilies[key]
	if !ok {
		return nil, false, nil
	}
	if fam == nil {
		return nil, true, errFontUnavailable
	}
	return fam, true, nil
}

// splitFamilies splits a font-family list and unquotes each name.
func splitFamilies(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if name := css.Unquote(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
