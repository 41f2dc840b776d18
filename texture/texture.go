// Package texture keeps the geometry of a text texture (frame, trim, orig
// and real pixel size) consistent with its pixel buffer.
package texture

import "sync"

// Rect is a rectangle in logical units (device pixels / resolution).
type Rect struct {
	X, Y, Width, Height float64
}

// BaseTexture is the GPU-side resource backing a Texture. Only its size
// matters here; uploading is the host's business.
type BaseTexture struct {
	mu         sync.RWMutex
	realWidth  int
	realHeight int
	resolution float64
	destroyed  bool
}

// SetRealSize records the pixel size of the buffer and the resolution it
// was rasterized at.
func (b *BaseTexture) SetRealSize(width, height int, resolution float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if resolution <= 0 {
		resolution = 1
	}
	b.realWidth, b.realHeight, b.resolution = width, height, resolution
}

// RealSize returns the buffer size in device pixels.
func (b *BaseTexture) RealSize() (int, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.realWidth, b.realHeight
}

// Resolution returns the resolution of the last SetRealSize, 1 before that.
func (b *BaseTexture) Resolution() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.resolution == 0 {
		return 1
	}
	return b.resolution
}

// Width returns the logical width.
func (b *BaseTexture) Width() float64 {
	w, _ := b.RealSize()
	return float64(w) / b.Resolution()
}

// Height returns the logical height.
func (b *BaseTexture) Height() float64 {
	_, h := b.RealSize()
	return float64(h) / b.Resolution()
}

// Destroy marks the base texture as released.
func (b *BaseTexture) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyed = true
	b.realWidth, b.realHeight = 0, 0
}

// Destroyed reports whether Destroy was called.
func (b *BaseTexture) Destroyed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.destroyed
}

// Texture is a view onto a BaseTexture. Listeners registered with OnUpdate
// run on every Update, outside the texture lock.
type Texture struct {
	Base *BaseTexture

	mu        sync.Mutex
	frame     Rect
	trim      Rect
	orig      Rect
	listeners map[int]func(*Texture)
	nextID    int
	destroyed bool
}

// New creates an empty texture with its own base texture.
func New() *Texture {
	return &Texture{Base: &BaseTexture{}, listeners: map[int]func(*Texture){}}
}

func (t *Texture) Frame() Rect {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frame
}

func (t *Texture) Trim() Rect {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.trim
}

func (t *Texture) Orig() Rect {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.orig
}

// SetGeometry replaces frame, trim and orig at once.
func (t *Texture) SetGeometry(frame, trim, orig Rect) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frame, t.trim, t.orig = frame, trim, orig
}

// OnUpdate registers fn and returns a function that removes it.
func (t *Texture) OnUpdate(fn func(*Texture)) (remove func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.listeners, id)
	}
}

// Update notifies listeners that the texture changed. A destroyed texture
// notifies nobody.
func (t *Texture) Update() {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	fns := make([]func(*Texture), 0, len(t.listeners))
	// 按注册顺序通知
	for id := 0; id < t.nextID; id++ {
		if fn, ok := t.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	t.mu.Unlock()
	for _, fn := range fns {
		fn(t)
	}
}

// Destroy drops all listeners; with base it also destroys the base texture.
func (t *Texture) Destroy(base bool) {
	t.mu.Lock()
	t.destroyed = true
	t.listeners = map[int]func(*Texture){}
	t.mu.Unlock()
	if base && t.Base != nil {
		t.Base.Destroy()
	}
}

// Destroyed reports whether Destroy was called.
func (t *Texture) Destroyed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.destroyed
}
