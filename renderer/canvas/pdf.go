package canvasrenderer

import (
	"fmt"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/htmltext/layout"
)

// PDFInfo 为导出的 PDF 写入文档信息。
type PDFInfo struct {
	Title   string
	Subject string
	Author  string
	Creator string
}

// ExportPDF writes doc as a single-page vector PDF sized to its content box
// plus padding (px) on every side. Shadows are drawn without blur.
func (r *Renderer) ExportPDF(w io.Writer, doc layout.Document, padding float64, info PDFInfo) error {
	res, err := r.Layout(doc)
	if err != nil {
		return err
	}
	if res.Width <= 0 || res.Height <= 0 {
		return fmt.Errorf("缺少可渲染的内容")
	}
	widthMM := (res.Width + 2*padding) * layout.PxToMm
	heightMM := (res.Height + 2*padding) * layout.PxToMm

	writer := pdf.New(w, widthMM, heightMM, nil)
	writer.SetInfo(info.Title, info.Subject, "", info.Author, info.Creator)

	c := canvas.New(widthMM, heightMM)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)
	shifted := *res
	shifted.Lines = make([]layout.Line, len(res.Lines))
	for i, ln := range res.Lines {
		ln.X += padding
		ln.Y += padding
		shifted.Lines[i] = ln
	}
	r.drawLines(ctx, &shifted, passShadow, nil)
	r.drawRules(ctx, &shifted)
	r.drawLines(ctx, &shifted, passStroke, nil)
	r.drawLines(ctx, &shifted, passFill, nil)
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return nil
}
