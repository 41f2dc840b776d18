package style

// Properties of the richer text style model that CSS rendering cannot honor.
// Reads return a fixed value and writes are dropped without touching the
// version.

// FillGradientStops always returns nil.
func (d *Descriptor) FillGradientStops() []float64 { return nil }

// SetFillGradientStops is ignored.
func (d *Descriptor) SetFillGradientStops([]float64) {}

// FillGradientType always returns 0 (linear vertical).
func (d *Descriptor) FillGradientType() int { return 0 }

// SetFillGradientType is ignored.
func (d *Descriptor) SetFillGradientType(int) {}

// MiterLimit always returns 0.
func (d *Descriptor) MiterLimit() float64 { return 0 }

// SetMiterLimit is ignored.
func (d *Descriptor) SetMiterLimit(float64) {}

// TextBaseline always returns "alphabetic".
func (d *Descriptor) TextBaseline() string { return "alphabetic" }

// SetTextBaseline is ignored.
func (d *Descriptor) SetTextBaseline(string) {}

// Leading always returns 0.
func (d *Descriptor) Leading() float64 { return 0 }

// SetLeading is ignored.
func (d *Descriptor) SetLeading(float64) {}

// LineJoin always returns "miter".
func (d *Descriptor) LineJoin() string { return "miter" }

// SetLineJoin is ignored.
func (d *Descriptor) SetLineJoin(string) {}
