package canvasrenderer

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/htmltext/css"
	"github.com/ByLCY/htmltext/layout"
)

// drawPass selects what drawLines paints.
type drawPass int

const (
	passShadow drawPass = iota
	passStroke
	passFill
)

// 描边用 8 个方向的偏移近似。
var strokeOffsets = [][2]float64{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

var ruleColor = layout.Color{R: 128, G: 128, B: 128, A: 255}

// Rasterize draws a laid-out document into a frame.Width×frame.Height image.
// Content is placed at frame.Clip and clipped to it; an empty clip means
// the whole frame.
func (r *Renderer) Rasterize(res *layout.Result, frame layout.Frame) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, max(frame.Width, 0), max(frame.Height, 0)))
	clip := frame.Clip
	if clip.Width <= 0 || clip.Height <= 0 {
		clip = layout.Rect{Width: float64(frame.Width), Height: float64(frame.Height)}
	}
	cw, ch := int(math.Ceil(clip.Width)), int(math.Ceil(clip.Height))
	if res == nil || len(res.Lines) == 0 || cw <= 0 || ch <= 0 {
		return out
	}

	content := r.drawContent(res, cw, ch)
	at := image.Pt(int(math.Round(clip.X)), int(math.Round(clip.Y)))
	dst := image.Rectangle{Min: at, Max: at.Add(image.Pt(cw, ch))}.Intersect(out.Bounds())
	draw.Draw(out, dst, content, dst.Min.Sub(at), draw.Over)
	return out
}

// drawContent paints shadows (blurred per radius), then strokes and fills.
func (r *Renderer) drawContent(res *layout.Result, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for _, blur := range shadowBlurs(res) {
		c, ctx := newCanvas(w, h)
		r.drawLines(ctx, res, passShadow, func(st layout.TextStyle) bool { return st.Shadow.Blur == blur })
		var layer image.Image = rasterize(c, w, h)
		if blur > 0 {
			// CSS 模糊半径约为高斯标准差的两倍
			layer = imaging.Blur(layer, blur/2)
		}
		draw.Draw(img, img.Bounds(), layer, image.Point{}, draw.Over)
	}

	c, ctx := newCanvas(w, h)
	r.drawRules(ctx, res)
	r.drawLines(ctx, res, passStroke, nil)
	r.drawLines(ctx, res, passFill, nil)
	draw.Draw(img, img.Bounds(), rasterize(c, w, h), image.Point{}, draw.Over)
	return img
}

func newCanvas(w, h int) (*canvas.Canvas, *canvas.Context) {
	c := canvas.New(float64(w)*layout.PxToMm, float64(h)*layout.PxToMm)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	return c, ctx
}

// rasterize renders c at 96 DPI and copies it into an exact w×h image.
func rasterize(c *canvas.Canvas, w, h int) *image.RGBA {
	src := rasterizer.Draw(c, canvas.DPMM(layout.MmToPx), canvas.DefaultColorSpace)
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out
}

// shadowBlurs lists the distinct blur radii of shadowed runs, ascending.
func shadowBlurs(res *layout.Result) []float64 {
	seen := map[float64]bool{}
	var blurs []float64
	for _, ln := range res.Lines {
		for _, run := range ln.Runs {
			if run.Style.HasShadow() && !seen[run.Style.Shadow.Blur] {
				seen[run.Style.Shadow.Blur] = true
				blurs = append(blurs, run.Style.Shadow.Blur)
			}
		}
	}
	sort.Float64s(blurs)
	return blurs
}

func (r *Renderer) drawLines(ctx *canvas.Context, res *layout.Result, pass drawPass, filter func(layout.TextStyle) bool) {
	faces := res.Block.FontFaces
	for _, ln := range res.Lines {
		for _, run := range ln.Runs {
			if filter != nil && !filter(run.Style) {
				continue
			}
			st := run.Style
			x := ln.X + run.X
			baseline := ln.Y + ln.Baseline - st.BaselineShift
			switch pass {
			case passShadow:
				if !st.HasShadow() {
					continue
				}
				r.drawText(ctx, x+st.Shadow.OffsetX, baseline+st.Shadow.OffsetY, run, st.Shadow.Color, faces)
			case passStroke:
				if !st.HasStroke() {
					continue
				}
				d := st.Stroke.Width / 2
				for _, o := range strokeOffsets {
					r.drawText(ctx, x+o[0]*d, baseline+o[1]*d, run, st.Stroke.Color, faces)
				}
			case passFill:
				r.drawText(ctx, x, baseline, run, st.Color, faces)
				drawDecorations(ctx, x, baseline, run)
			}
		}
	}
}

// drawText draws run with its baseline at y (pixels). Letter spacing needs
// per-character placement.
func (r *Renderer) drawText(ctx *canvas.Context, x, y float64, run layout.Run, col layout.Color, faces []css.FontFace) {
	if col.A == 0 {
		return
	}
	face := r.face(run.Style, faces, col)
	if run.Style.LetterSpacing == 0 {
		ctx.DrawText(x*layout.PxToMm, y*layout.PxToMm, canvas.NewTextLine(face, run.Text, canvas.Left))
		return
	}
	for _, ch := range run.Text {
		s := string(ch)
		ctx.DrawText(x*layout.PxToMm, y*layout.PxToMm, canvas.NewTextLine(face, s, canvas.Left))
		x += textWidth(face, s, run.Style.LetterSpacing)
	}
}

func drawDecorations(ctx *canvas.Context, x, baseline float64, run layout.Run) {
	st := run.Style
	if !st.Underline && !st.LineThrough {
		return
	}
	thickness := math.Max(1, st.FontSize/14)
	if st.Underline {
		fillRect(ctx, x, baseline+thickness, run.Width, thickness, st.Color)
	}
	if st.LineThrough {
		fillRect(ctx, x, baseline-st.FontSize*0.3, run.Width, thickness, st.Color)
	}
}

func (r *Renderer) drawRules(ctx *canvas.Context, res *layout.Result) {
	for _, ln := range res.Lines {
		if ln.Rule {
			fillRect(ctx, ln.X, ln.Y+ln.Height/2-1, ln.Width, 2, ruleColor)
		}
	}
}

// fillRect fills a rectangle given in pixels.
func fillRect(ctx *canvas.Context, x, y, w, h float64, col layout.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	ctx.SetFillColor(colorFromLayout(col))
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.DrawPath(x*layout.PxToMm, y*layout.PxToMm, canvas.Rectangle(w*layout.PxToMm, h*layout.PxToMm))
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, float64(c.A)/255.0)
}
