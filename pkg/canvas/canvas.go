package canvas

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/historygraph/pkg/errors"
	"github.com/matzehuels/historygraph/pkg/observability"
	"github.com/matzehuels/historygraph/pkg/scene"
)

// ErrNotReady is returned when painting before a sprite sheet is ready.
var ErrNotReady = errors.New(errors.ErrCodeNotReady, "sprite sheet not loaded")

// Label and text placement relative to a row centre, in pixels.
const (
	textRise       = 8  // text top above the row centre
	labelRise      = 15 // badge top above the row centre
	labelHeight    = 28
	labelInset     = 12 // badge padding left of the text
	labelRadius    = 4
	labelAdvance   = 32 // cursor advance past a label's text
	textAfterLabel = 5  // text pulled back towards the last label
)

// Canvas paints scenes onto a Surface and handles paging and clicks.
//
// A Canvas is not safe for concurrent use; the host dispatches events one
// at a time.
type Canvas struct {
	surface    Surface
	colors     Colors
	onClick    ClickHandler
	pageHeight int
	margin     int
	logger     *log.Logger

	sheet *SpriteSheet
	scene *scene.Scene

	items   []item
	dots    []*dotItem
	overlay []item

	page  int
	pages int
}

// New returns a canvas painting onto s. It cannot render until [Canvas.Ready]
// supplies a sprite sheet.
func New(s Surface, opts ...Option) *Canvas {
	c := &Canvas{
		surface: s,
		colors:  DefaultColors(),
		margin:  DefaultBottomMargin,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ready supplies the sprite sheet, moving the canvas out of its loading
// state. A nil sheet is ignored.
func (c *Canvas) Ready(sheet *SpriteSheet) {
	if sheet != nil {
		c.sheet = sheet
	}
}

// IsReady reports whether a sprite sheet is available.
func (c *Canvas) IsReady() bool { return c.sheet != nil }

// Mount waits for asset, then renders s.
func (c *Canvas) Mount(ctx context.Context, asset *Asset, s *scene.Scene) error {
	sheet, err := asset.Wait(ctx)
	if err != nil {
		return err
	}
	c.Ready(sheet)
	return c.Render(s)
}

// Render replaces everything on the canvas with s and shows its first page.
func (c *Canvas) Render(s *scene.Scene) error {
	if c.sheet == nil {
		return ErrNotReady
	}
	if s == nil {
		s = scene.New()
	}
	c.scene = s
	c.items = c.items[:0]
	c.dots = c.dots[:0]
	c.overlay = nil

	rc := newRowCursor()
	for _, l := range s.Lines {
		color := c.colors.InactiveLine
		if l.Active() {
			color = c.colors.ActiveLine
		}
		c.items = append(c.items, &lineItem{
			x1: float64(l.X1), y1: float64(l.Y1),
			x2: float64(l.X2), y2: float64(l.Y2),
			width: float64(l.Width), color: color,
		})
	}
	for _, b := range s.Boundaries {
		c.items = append(c.items, &boundaryItem{x: float64(b.X), y: float64(b.Y), size: float64(b.Size)})
	}
	for _, d := range s.Commits {
		dot := &dotItem{commit: d, frame: frameFor(d.CommitState)}
		c.items = append(c.items, dot)
		c.dots = append(c.dots, dot)
	}
	for _, l := range s.Labels {
		c.items = append(c.items, c.placeLabel(rc, l))
	}
	for _, t := range s.Texts {
		c.items = append(c.items, c.placeText(rc, t))
	}

	c.pages = Paginate(c.StageHeight(), c.PageHeight())
	c.page = 0
	return c.paint()
}

func (c *Canvas) placeLabel(rc rowCursor, l scene.Label) *labelItem {
	head := l.Head()
	x := rc.at(l.Y)
	if x == 0 {
		x = float64(l.X)
	}
	w := c.surface.Measure(l.Text, head)
	rc.set(l.Y, x+w+labelAdvance)
	return &labelItem{text: l.Text, x: x, y: float64(l.Y), w: w, head: head}
}

func (c *Canvas) placeText(rc rowCursor, t scene.Text) *textItem {
	x := rc.at(t.Y)
	if x == 0 {
		x = float64(t.X)
	} else {
		x -= textAfterLabel
	}
	return &textItem{msg: t.Message, x: x, y: float64(t.Y)}
}

// paint redraws the display list at the current page's translation.
func (c *Canvas) paint() error {
	if c.sheet == nil {
		return ErrNotReady
	}
	start := time.Now()
	c.surface.Clear(c.colors.Background)
	c.surface.Translate(0, -float64(c.page*c.PageHeight()))
	for _, it := range c.items {
		it.paint(c.surface, c)
	}
	for _, it := range c.overlay {
		it.paint(c.surface, c)
	}
	err := c.surface.Flush()
	observability.Canvas().OnPaint(c.page, len(c.items)+len(c.overlay), time.Since(start))
	c.logger.Debug("painted page", "page", c.page, "pages", c.pages, "items", len(c.items)+len(c.overlay))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "paint page %d", c.page)
	}
	return nil
}

// Scene returns the scene last rendered, or nil.
func (c *Canvas) Scene() *scene.Scene { return c.scene }

// Surface returns the surface the canvas paints onto.
func (c *Canvas) Surface() Surface { return c.surface }

// =============================================================================
// Row Cursor
// =============================================================================

// rowCursor maps a row centre to the next free x on that row. A fresh
// cursor is created for every Render call.
type rowCursor map[int]float64

func newRowCursor() rowCursor { return rowCursor{} }

func (rc rowCursor) at(y int) float64 { return rc[y] }

func (rc rowCursor) set(y int, x float64) { rc[y] = x }

// =============================================================================
// Display List
// =============================================================================

type item interface {
	paint(s Surface, c *Canvas)
}

type lineItem struct {
	x1, y1, x2, y2 float64
	width          float64
	color          string
}

func (l *lineItem) paint(s Surface, _ *Canvas) {
	s.Line(l.x1, l.y1, l.x2, l.y2, l.width, l.color)
}

type boundaryItem struct {
	x, y, size float64
}

func (b *boundaryItem) paint(s Surface, c *Canvas) {
	r := b.size / 2
	s.Circle(b.x+r, b.y+r, r, c.colors.Background, c.colors.Boundary)
}

type dotItem struct {
	commit scene.Commit
	frame  Frame
}

func (d *dotItem) paint(s Surface, c *Canvas) {
	s.Sprite(c.sheet, d.frame, float64(d.commit.X), float64(d.commit.Y))
}

func (d *dotItem) contains(x, y float64) bool {
	dx, dy := x-float64(d.commit.X), y-float64(d.commit.Y)
	return dx >= 0 && dx < FrameSize && dy >= 0 && dy < FrameSize
}

type labelItem struct {
	text string
	x, y float64
	w    float64
	head bool
}

func (l *labelItem) paint(s Surface, c *Canvas) {
	bg, border, fg := c.colors.BranchBackground, c.colors.BranchBorder, c.colors.BranchText
	if l.head {
		bg, border, fg = c.colors.HeadBackground, c.colors.HeadBorder, c.colors.HeadText
	}
	s.RoundRect(l.x-labelInset, l.y-labelRise, l.w+2*labelInset, labelHeight, labelRadius, bg, border)
	s.Text(l.text, l.x, l.y-textRise, l.head, fg)
}

type textItem struct {
	msg  string
	x, y float64
}

func (t *textItem) paint(s Surface, c *Canvas) {
	s.Text(t.msg, t.x, t.y-textRise, false, c.colors.Text)
}

type polygonItem struct {
	pts   []Point
	color string
}

func (p *polygonItem) paint(s Surface, _ *Canvas) {
	s.Polygon(p.pts, p.color)
}
