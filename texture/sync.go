package texture

import "image"

// Sync brings tex in line with buf and returns the buffer to keep, which is
// a cropped copy when trim is set and buf has visible pixels. padding is in
// CSS pixels, unscaled, and is dropped by trimming.
//
// Afterwards the frame covers the whole buffer, trim is offset by -padding
// and orig is the content size without padding. Listeners are notified.
func Sync(tex *Texture, buf *image.RGBA, trim bool, padding, resolution float64) *image.RGBA {
	if resolution <= 0 {
		resolution = 1
	}
	if trim {
		if r, ok := OpaqueBounds(buf); ok {
			buf = Crop(buf, r)
		}
		padding = 0
	}

	w, h := buf.Bounds().Dx(), buf.Bounds().Dy()
	tex.Base.SetRealSize(w, h, resolution)

	lw, lh := float64(w)/resolution, float64(h)/resolution
	tex.SetGeometry(
		Rect{Width: lw, Height: lh},
		Rect{X: -padding, Y: -padding, Width: lw, Height: lh},
		Rect{Width: lw - 2*padding, Height: lh - 2*padding},
	)
	tex.Update()
	return buf
}
