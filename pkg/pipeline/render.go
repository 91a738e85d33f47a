package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/historygraph/pkg/canvas"
	"github.com/matzehuels/historygraph/pkg/fonts"
	"github.com/matzehuels/historygraph/pkg/history"
	"github.com/matzehuels/historygraph/pkg/render"
	"github.com/matzehuels/historygraph/pkg/render/nodelink"
	"github.com/matzehuels/historygraph/pkg/scene"
)

// Assets are the resources shared by the painting renderers.
type Assets struct {
	Fonts   *fonts.Set
	Sprites *canvas.SpriteSheet
}

// StageHeight is the full paintable height of s: the scene plus the bottom
// margin.
func StageHeight(s *scene.Scene) int {
	return s.Height + canvas.DefaultBottomMargin
}

// PageCount is the number of viewport pages needed to show s.
func PageCount(s *scene.Scene, pageHeight int) int {
	return canvas.Paginate(StageHeight(s), pageHeight)
}

func (o *Options) canvasOptions(extra ...canvas.Option) []canvas.Option {
	opts := []canvas.Option{canvas.WithColors(o.Colors), canvas.WithLogger(o.Logger)}
	return append(opts, extra...)
}

// RenderPages rasterizes s one viewport page at a time and returns a PNG per
// page. With FullPage it returns a single PNG of the whole stage.
func RenderPages(s *scene.Scene, a Assets, opts Options) ([][]byte, error) {
	w, h := opts.Width, opts.Height
	var extra []canvas.Option
	if opts.FullPage {
		h = StageHeight(s)
		extra = append(extra, canvas.WithPageHeight(h))
	}

	r := canvas.NewRaster(w, h, a.Fonts)
	defer r.Close()
	c := canvas.New(r, opts.canvasOptions(extra...)...)
	c.Ready(a.Sprites)
	if err := c.Render(s); err != nil {
		return nil, fmt.Errorf("paint: %w", err)
	}

	pages := make([][]byte, 0, c.PageCount())
	for {
		var buf bytes.Buffer
		if err := r.EncodePNG(&buf); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", c.Page(), err)
		}
		pages = append(pages, buf.Bytes())
		if c.Page() >= c.PageCount()-1 {
			return pages, nil
		}
		if err := c.Next(); err != nil {
			return nil, fmt.Errorf("paint page %d: %w", c.Page(), err)
		}
	}
}

// RenderPage rasterizes a single viewport page of s.
func RenderPage(s *scene.Scene, a Assets, opts Options, page int) ([]byte, error) {
	r := canvas.NewRaster(opts.Width, opts.Height, a.Fonts)
	defer r.Close()
	c := canvas.New(r, opts.canvasOptions()...)
	c.Ready(a.Sprites)
	if err := c.Render(s); err != nil {
		return nil, fmt.Errorf("paint: %w", err)
	}
	if page < 0 || page >= c.PageCount() {
		return nil, fmt.Errorf("page %d out of range [0, %d)", page, c.PageCount())
	}
	if err := c.Goto(page); err != nil {
		return nil, fmt.Errorf("paint page %d: %w", page, err)
	}
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode page %d: %w", page, err)
	}
	return buf.Bytes(), nil
}

// RenderSVG paints the whole stage of s as one SVG document.
func RenderSVG(s *scene.Scene, a Assets, opts Options) ([]byte, error) {
	h := StageHeight(s)
	svg := canvas.NewSVG(opts.Width, h, a.Fonts)
	c := canvas.New(svg, opts.canvasOptions(canvas.WithPageHeight(h))...)
	c.Ready(a.Sprites)
	if err := c.Render(s); err != nil {
		return nil, fmt.Errorf("paint: %w", err)
	}
	return svg.Bytes(), nil
}

// RenderPDF converts the SVG rendering of s to PDF.
func RenderPDF(s *scene.Scene, a Assets, opts Options) ([]byte, error) {
	svg, err := RenderSVG(s, a, opts)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderDOT draws the commit DAG of seq with graphviz.
func RenderDOT(ctx context.Context, seq history.Sequence, opts Options) ([]byte, error) {
	return nodelink.RenderSVG(ctx, nodelink.ToDOT(seq, nodelink.Options{Detailed: opts.Detailed}))
}
