package canvas

import (
	"image"
	"io"

	"github.com/gogpu/gg"

	"github.com/matzehuels/historygraph/pkg/fonts"
)

// Raster is a Surface backed by gogpu/gg's software rasterizer.
type Raster struct {
	dc     *gg.Context
	fonts  *fonts.Set
	w, h   int
	dx, dy float64
	err    error
}

// NewRaster returns a w x h raster surface drawing text with fs.
func NewRaster(w, h int, fs *fonts.Set) *Raster {
	return &Raster{
		dc:    gg.NewContext(w, h),
		fonts: fs,
		w:     w,
		h:     h,
	}
}

func (r *Raster) Size() (int, int) { return r.w, r.h }

func (r *Raster) Clear(bg string) {
	r.err = nil
	r.dc.ClearWithColor(gg.Hex(bg))
}

func (r *Raster) Translate(dx, dy float64) {
	r.dx, r.dy = dx, dy
}

func (r *Raster) Line(x1, y1, x2, y2, width float64, color string) {
	r.dc.SetHexColor(color)
	r.dc.SetLineWidth(width)
	r.dc.DrawLine(x1+r.dx, y1+r.dy, x2+r.dx, y2+r.dy)
	r.keep(r.dc.Stroke())
}

func (r *Raster) Sprite(sheet *SpriteSheet, f Frame, x, y float64) {
	rect := sheet.FrameRect(f)
	r.dc.DrawImageEx(sheet.buf, gg.DrawImageOptions{
		X:             x + r.dx,
		Y:             y + r.dy,
		DstWidth:      float64(rect.Dx()),
		DstHeight:     float64(rect.Dy()),
		SrcRect:       &rect,
		Interpolation: gg.InterpNearest,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
}

func (r *Raster) Circle(cx, cy, radius float64, fill, stroke string) {
	r.dc.DrawCircle(cx+r.dx, cy+r.dy, radius)
	r.fillStroke(fill, stroke)
}

func (r *Raster) RoundRect(x, y, w, h, radius float64, fill, stroke string) {
	r.dc.DrawRoundedRectangle(x+r.dx, y+r.dy, w, h, radius)
	r.fillStroke(fill, stroke)
}

func (r *Raster) Polygon(pts []Point, fill string) {
	if len(pts) < 3 {
		return
	}
	r.dc.MoveTo(pts[0].X+r.dx, pts[0].Y+r.dy)
	for _, p := range pts[1:] {
		r.dc.LineTo(p.X+r.dx, p.Y+r.dy)
	}
	r.dc.ClosePath()
	r.dc.SetHexColor(fill)
	r.keep(r.dc.Fill())
}

// Text positions the baseline at 80% of the line height below y; DrawString
// ignores the context transform so the translation is applied here.
func (r *Raster) Text(s string, x, y float64, bold bool, color string) {
	if s == "" || r.fonts == nil {
		return
	}
	r.dc.SetFont(r.fonts.Face(bold))
	r.dc.SetHexColor(color)
	_, h := r.dc.MeasureString(s)
	r.dc.DrawString(s, x+r.dx, y+r.dy+h*0.8)
}

func (r *Raster) Measure(s string, bold bool) float64 {
	if r.fonts == nil {
		return 0
	}
	w, _ := r.fonts.Measure(s, bold)
	return w
}

func (r *Raster) Flush() error { return r.err }

// Image returns the rendered pixels.
func (r *Raster) Image() image.Image { return r.dc.Image() }

// EncodePNG writes the rendered pixels as PNG.
func (r *Raster) EncodePNG(w io.Writer) error { return r.dc.EncodePNG(w) }

// Close releases the rasterizer's resources.
func (r *Raster) Close() error { return r.dc.Close() }

func (r *Raster) fillStroke(fill, stroke string) {
	switch {
	case fill != "" && stroke != "":
		r.dc.SetHexColor(fill)
		r.keep(r.dc.FillPreserve())
		r.dc.SetHexColor(stroke)
		r.dc.SetLineWidth(1)
		r.keep(r.dc.Stroke())
	case fill != "":
		r.dc.SetHexColor(fill)
		r.keep(r.dc.Fill())
	case stroke != "":
		r.dc.SetHexColor(stroke)
		r.dc.SetLineWidth(1)
		r.keep(r.dc.Stroke())
	}
}

func (r *Raster) keep(err error) {
	if r.err == nil {
		r.err = err
	}
}
