package fonts

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"golang.org/x/sync/singleflight"

	"github.com/ByLCY/htmltext/internal/logging"
)

// Options selects how a loaded font is registered. Empty fields take
// defaults: Family is the URL basename without extension, Weight and Style
// are "normal".
type Options struct {
	Family string
	Weight string
	Style  string
}

func (o Options) withDefaults(url string) Options {
	if o.Family == "" {
		base := path.Base(url)
		o.Family = strings.TrimSuffix(base, path.Ext(base))
	}
	if o.Weight == "" {
		o.Weight = "normal"
	}
	if o.Style == "" {
		o.Style = "normal"
	}
	return o
}

// LoadError reports a font that could not be fetched or parsed.
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("加载字体 %s 失败: %v", e.URL, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

// Resource is one registered font. Resources are shared between every style
// that loaded the same (family, weight, style, url) and live until the last
// reference is released.
type Resource struct {
	URL    string
	Family string
	Weight string
	Style  string
	Data   []byte

	refs int
}

type key struct {
	family, weight, style, url string
}

func (k key) String() string {
	return k.family + "|" + k.weight + "|" + k.style + "|" + k.url
}

func keyOf(res *Resource) key {
	return key{strings.ToLower(res.Family), strings.ToLower(res.Weight), strings.ToLower(res.Style), res.URL}
}

// Registry is a reference-counted table of loaded fonts.
type Registry struct {
	fetch Fetcher
	group singleflight.Group

	mu    sync.Mutex
	fonts map[key]*Resource
}

var defaultRegistry = NewRegistry(nil)

// Default returns the process-wide registry shared by all styles.
func Default() *Registry { return defaultRegistry }

// NewRegistry creates a registry. A nil fetcher uses DefaultFetcher.
func NewRegistry(fetch Fetcher) *Registry {
	if fetch == nil {
		fetch = &DefaultFetcher{}
	}
	return &Registry{fetch: fetch, fonts: map[key]*Resource{}}
}

// Load registers the font at url, or takes another reference on an already
// registered identical font. Concurrent identical loads share one fetch.
// On failure the registry is left unchanged and a *LoadError is returned.
func (r *Registry) Load(ctx context.Context, url string, opts Options) (*Resource, error) {
	if url == "" {
		return nil, &LoadError{URL: url, Err: fmt.Errorf("empty url")}
	}
	opts = opts.withDefaults(url)
	k := key{strings.ToLower(opts.Family), strings.ToLower(opts.Weight), strings.ToLower(opts.Style), url}

	r.mu.Lock()
	if res, ok := r.fonts[k]; ok {
		res.refs++
		r.mu.Unlock()
		return res, nil
	}
	r.mu.Unlock()

	// 共享的下载不随首个调用方取消；每个调用方只按自己的 ctx 放弃等待
	fetchCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(k.String(), func() (any, error) {
		data, err := r.fetch.Fetch(fetchCtx, url)
		if err != nil {
			return nil, &LoadError{URL: url, Err: err}
		}
		family := canvas.NewFontFamily(opts.Family)
		if err := family.LoadFont(data, 0, Style(opts.Weight, opts.Style)); err != nil {
			return nil, &LoadError{URL: url, Err: err}
		}
		return &Resource{URL: url, Family: opts.Family, Weight: opts.Weight, Style: opts.Style, Data: data}, nil
	})
	var v any
	select {
	case <-ctx.Done():
		return nil, &LoadError{URL: url, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		v = res.Val
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.fonts[k]
	if !ok {
		// 每次注册使用副本，已释放的资源（Data 已清空）不会被重新注册
		cp := *v.(*Resource)
		res = &cp
		r.fonts[k] = res
		logging.Logger().Debug("font registered", "family", res.Family, "url", url)
	}
	res.refs++
	return res, nil
}

// Release drops one reference. The font is unregistered when none remain.
// Releasing an unknown or already released resource is a no-op.
func (r *Registry) Release(res *Resource) {
	if res == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := keyOf(res)
	if cur, ok := r.fonts[k]; !ok || cur != res {
		return
	}
	res.refs--
	if res.refs <= 0 {
		res.refs = 0
		res.Data = nil
		delete(r.fonts, k)
		logging.Logger().Debug("font released", "family", res.Family, "url", res.URL)
	}
}

// Refs returns the current reference count of res, 0 once released.
func (r *Registry) Refs(res *Resource) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.fonts[keyOf(res)]; ok && cur == res {
		return res.refs
	}
	return 0
}

// Bytes returns the font data of res, nil once it is released. Read font
// data through Bytes rather than Resource.Data when res may be released
// concurrently.
func (r *Registry) Bytes(res *Resource) []byte {
	if res == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return res.Data
}

// Lookup returns a registered font by URL.
func (r *Registry) Lookup(url string) (*Resource, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, res := range r.fonts {
		if k.url == url {
			return res, true
		}
	}
	return nil, false
}

// Find returns the registered font of family closest to the requested weight
// and style: an exact match first, then the same boldness, then any face.
func (r *Registry) Find(family, weight, style string) (*Resource, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var candidates []*Resource
	for k, res := range r.fonts {
		if k.family == strings.ToLower(family) {
			candidates = append(candidates, res)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].URL < candidates[j].URL })
	want := Style(weight, style)
	for _, res := range candidates {
		if Style(res.Weight, res.Style) == want {
			return res, true
		}
	}
	for _, res := range candidates {
		if IsBold(res.Weight) == IsBold(weight) {
			return res, true
		}
	}
	return candidates[0], true
}

// Len returns the number of registered fonts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fonts)
}

// Style maps CSS font-weight/font-style values to a canvas font style.
func Style(weight, style string) canvas.FontStyle {
	w := strings.ToLower(strings.TrimSpace(weight))
	result := canvas.FontRegular
	switch w {
	case "100", "thin":
		result = canvas.FontThin
	case "200", "extralight":
		result = canvas.FontExtraLight
	case "300", "light", "lighter":
		result = canvas.FontLight
	case "500", "medium":
		result = canvas.FontMedium
	case "600", "semibold":
		result = canvas.FontSemiBold
	case "700", "bold", "bolder":
		result = canvas.FontBold
	case "800", "extrabold":
		result = canvas.FontExtraBold
	case "900", "black":
		result = canvas.FontBlack
	}
	if IsItalic(style) {
		result |= canvas.FontItalic
	}
	return result
}
