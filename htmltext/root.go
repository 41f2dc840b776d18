package htmltext

import (
	"sync"

	"github.com/ByLCY/htmltext/layout"
)

// layoutRoot is the node's private layout context: the content document
// the renderer measures and the viewport it was last measured into.
// Measurement holds its lock, so overrides of one Measure call never reach
// another.
type layoutRoot struct {
	mu       sync.Mutex
	content  layout.Document
	viewport layout.Size
	detached bool
}

// with loads doc for the duration of fn, hands fn the loaded content and
// puts live back afterwards, also when fn fails or panics.
func (r *layoutRoot) with(doc, live layout.Document, fn func(content layout.Document) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.detached {
		return ErrDestroyed
	}
	defer func() { r.content = live }()
	r.content = doc
	return fn(r.content)
}

func (r *layoutRoot) setViewport(s layout.Size) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewport = s
}

func (r *layoutRoot) snapshot() (layout.Document, layout.Size) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content, r.viewport
}

func (r *layoutRoot) detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detached = true
	r.content = layout.Document{}
	r.viewport = layout.Size{}
}

func (r *layoutRoot) isDetached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.detached
}
