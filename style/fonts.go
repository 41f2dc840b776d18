package style

import (
	"context"
	"fmt"

	"github.com/ByLCY/htmltext/fonts"
)

// LoadFont loads a font through the descriptor's registry and keeps a
// reference to it. The version is bumped so dependent nodes re-measure with
// the new font available. Failures return a *fonts.LoadError and leave the
// descriptor unchanged.
func (d *Descriptor) LoadFont(ctx context.Context, url string, opts fonts.Options) error {
	d.mu.RLock()
	reg := d.registry
	d.mu.RUnlock()

	res, err := reg.Load(ctx, url, opts)
	if err != nil {
		return fmt.Errorf("style: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.fonts = append(d.fonts, res)
	d.fontsDirty = true
	d.version++
	return nil
}

// UnloadFont releases one reference this descriptor holds on the font loaded
// from url. It reports whether such a font was held.
func (d *Descriptor) UnloadFont(url string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, res := range d.fonts {
		if res.URL != url {
			continue
		}
		d.registry.Release(res)
		d.fonts = append(d.fonts[:i], d.fonts[i+1:]...)
		d.fontsDirty = true
		d.version++
		return true
	}
	return false
}

// CleanFonts releases every font held by this descriptor and restores the
// default font family. Calling it with no fonts loaded does nothing.
func (d *Descriptor) CleanFonts() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.fonts) == 0 {
		return
	}
	for _, res := range d.fonts {
		d.registry.Release(res)
	}
	d.fonts = nil
	d.props.FontFamily = DefaultFontFamily
	d.fontsDirty = true
	d.version++
}

// Fonts returns the fonts currently held.
func (d *Descriptor) Fonts() []*fonts.Resource {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*fonts.Resource, len(d.fonts))
	copy(out, d.fonts)
	return out
}

// Registry returns the registry fonts are loaded through.
func (d *Descriptor) Registry() *fonts.Registry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.registry
}
