package htmltext

import (
	"context"
	"math"

	"github.com/ByLCY/htmltext/texture"
)

// sprite is the display geometry of a node: scale and anchor on top of the
// texture frame. width and height are the sizes requested through
// SetWidth/SetHeight, NaN when unset.
type sprite struct {
	scaleX, scaleY   float64
	anchorX, anchorY float64
	width, height    float64
}

func newSprite() sprite {
	return sprite{scaleX: 1, scaleY: 1, width: math.NaN(), height: math.NaN()}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// Scale returns the sprite scale.
func (t *Text) Scale() (x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sprite.scaleX, t.sprite.scaleY
}

// SetScale sets the sprite scale and forgets requested sizes.
func (t *Text) SetScale(x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sprite.scaleX, t.sprite.scaleY = x, y
	t.sprite.width, t.sprite.height = math.NaN(), math.NaN()
}

// Anchor returns the anchor as a fraction of the texture size.
func (t *Text) Anchor() (x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sprite.anchorX, t.sprite.anchorY
}

// SetAnchor sets the anchor; (0.5, 0.5) centres the text on its position.
func (t *Text) SetAnchor(x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sprite.anchorX, t.sprite.anchorY = x, y
}

// Width refreshes the node and returns its displayed width: the buffer
// width over the resolution, padding included, times the scale.
func (t *Text) Width(ctx context.Context) (float64, error) {
	if err := t.Refresh(ctx, true); err != nil {
		return 0, err
	}
	frame := t.tex.Frame()
	t.mu.Lock()
	defer t.mu.Unlock()
	return math.Abs(t.sprite.scaleX) * frame.Width, nil
}

// SetWidth refreshes the node and scales it to be v wide. The request is
// kept and applied again whenever the texture changes.
func (t *Text) SetWidth(ctx context.Context, v float64) error {
	if err := t.Refresh(ctx, true); err != nil {
		return err
	}
	frame := t.tex.Frame()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sprite.width = v
	if frame.Width > 0 {
		t.sprite.scaleX = sign(t.sprite.scaleX) * v / frame.Width
	}
	return nil
}

// Height refreshes the node and returns its displayed height.
func (t *Text) Height(ctx context.Context) (float64, error) {
	if err := t.Refresh(ctx, true); err != nil {
		return 0, err
	}
	frame := t.tex.Frame()
	t.mu.Lock()
	defer t.mu.Unlock()
	return math.Abs(t.sprite.scaleY) * frame.Height, nil
}

// SetHeight refreshes the node and scales it to be v high.
func (t *Text) SetHeight(ctx context.Context, v float64) error {
	if err := t.Refresh(ctx, true); err != nil {
		return err
	}
	frame := t.tex.Frame()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sprite.height = v
	if frame.Height > 0 {
		t.sprite.scaleY = sign(t.sprite.scaleY) * v / frame.Height
	}
	return nil
}

// onTextureUpdate re-applies requested sizes to the new texture frame.
func (t *Text) onTextureUpdate(tex *texture.Texture) {
	frame := tex.Frame()
	t.mu.Lock()
	defer t.mu.Unlock()
	if !math.IsNaN(t.sprite.width) && frame.Width > 0 {
		t.sprite.scaleX = sign(t.sprite.scaleX) * t.sprite.width / frame.Width
	}
	if !math.IsNaN(t.sprite.height) && frame.Height > 0 {
		t.sprite.scaleY = sign(t.sprite.scaleY) * t.sprite.height / frame.Height
	}
}

// Vertices refreshes the node and returns the four corners of its quad in
// local space, clockwise from the top left, as x,y pairs.
func (t *Text) Vertices(ctx context.Context) ([8]float64, error) {
	if err := t.Refresh(ctx, true); err != nil {
		return [8]float64{}, err
	}
	orig, trim := t.tex.Orig(), t.tex.Trim()
	t.mu.Lock()
	s := t.sprite
	t.mu.Unlock()

	var x0, x1, y0, y1 float64
	if trim.Width > 0 && trim.Height > 0 {
		x0 = trim.X - s.anchorX*orig.Width
		x1 = x0 + trim.Width
		y0 = trim.Y - s.anchorY*orig.Height
		y1 = y0 + trim.Height
	} else {
		x0 = -s.anchorX * orig.Width
		x1 = x0 + orig.Width
		y0 = -s.anchorY * orig.Height
		y1 = y0 + orig.Height
	}
	x0, x1 = x0*s.scaleX, x1*s.scaleX
	y0, y1 = y0*s.scaleY, y1*s.scaleY
	return [8]float64{x0, y0, x1, y0, x1, y1, x0, y1}, nil
}

// Bounds refreshes the node and returns the rectangle its quad covers.
func (t *Text) Bounds(ctx context.Context) (texture.Rect, error) {
	v, err := t.Vertices(ctx)
	if err != nil {
		return texture.Rect{}, err
	}
	minX, maxX := math.Min(v[0], v[2]), math.Max(v[0], v[2])
	minY, maxY := math.Min(v[1], v[5]), math.Max(v[1], v[5])
	return texture.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, nil
}
