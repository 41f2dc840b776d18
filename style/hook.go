package style

import (
	"context"
	"time"
)

// DrawHook runs after the rasterized document decoded and before it is drawn.
// fontsChanged reports whether fonts were loaded or released since the last
// draw. It exists for platforms whose image decode can race font application.
type DrawHook func(ctx context.Context, fontsChanged bool) error

// SetDrawHook installs h. nil restores the no-op default.
func (d *Descriptor) SetDrawHook(h DrawHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hook = h
}

// BeforeDraw runs the draw hook and clears the fonts-changed flag.
func (d *Descriptor) BeforeDraw(ctx context.Context) error {
	d.mu.Lock()
	changed := d.fontsDirty
	d.fontsDirty = false
	hook := d.hook
	d.mu.Unlock()

	if hook == nil {
		return nil
	}
	return hook(ctx, changed)
}

// DelayAfterFontChange waits delay before drawing whenever fonts changed,
// giving the platform a chance to apply them.
func DelayAfterFontChange(delay time.Duration) DrawHook {
	return func(ctx context.Context, fontsChanged bool) error {
		if !fontsChanged {
			return nil
		}
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}
