package layout

import (
	"github.com/matzehuels/historygraph/pkg/decor"
	"github.com/matzehuels/historygraph/pkg/history"
	"github.com/matzehuels/historygraph/pkg/scene"
)

// Painter is the set of drawing primitives the engine emits. Coordinates are
// absolute pixels within the full stage.
type Painter interface {
	// DrawLine draws a lane segment between two centre points.
	DrawLine(active bool, x1, y1, x2, y2, width int)
	// DrawCommitDot draws a clickable commit marker; x, y is the top left of
	// its bounding box.
	DrawCommitDot(hash, message string, active bool, x, y, w, h int)
	// DrawBoundaryDot draws a passive marker for an uninteresting commit.
	DrawBoundaryDot(x, y, w, h int)
	// DrawLabel draws a ref badge starting at x, centred on y, and returns
	// the horizontal space it consumed.
	DrawLabel(x, y int, d decor.Decoration) int
	// DrawText draws the commit message starting at x, centred on y.
	DrawText(msg string, x, y int)
}

// Engine lays out commit sequences with a fixed configuration.
type Engine struct {
	cfg Config
}

// New returns an engine for cfg, completed by [Config.WithDefaults].
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.WithDefaults()}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Build lays out seq with the default configuration.
func Build(seq history.Sequence) *scene.Scene {
	return New(DefaultConfig()).Build(seq)
}

// Build lays out seq into a fresh scene.
func (e *Engine) Build(seq history.Sequence) *scene.Scene {
	b := scene.NewBuilder()
	b.SetHeight(e.Paint(seq, b))
	return b.Scene()
}

// Paint runs a single pass over seq, emitting primitives to p, and returns
// the stage height. Commits are painted in sequence order; the position of a
// commit in seq is its row.
func (e *Engine) Paint(seq history.Sequence, p Painter) int {
	pass := &pass{
		cfg:    e.cfg,
		p:      p,
		rows:   make(map[*history.Commit]int, len(seq)),
		active: make(map[*history.Commit]bool, len(seq)),
	}
	for i, c := range seq {
		if c != nil {
			pass.rows[c] = i
		}
	}
	for i, c := range seq {
		if c != nil {
			pass.commit(i, c)
		}
	}
	return e.cfg.Height(len(seq))
}

// pass holds the accumulators of one Paint call.
type pass struct {
	cfg       Config
	p         Painter
	rows      map[*history.Commit]int
	active    map[*history.Commit]bool
	maxCenter int
}

// isActive returns the computed flag of a processed commit, or the input
// flag of one not yet reached.
func (s *pass) isActive(c *history.Commit) bool {
	if v, ok := s.active[c]; ok {
		return v
	}
	return c.Active
}

func (s *pass) commit(row int, c *history.Commit) {
	cfg := s.cfg

	active := c.Active || c.HasRef(decor.Head)
	for _, child := range c.Children {
		if _, ok := s.rows[child]; ok && child != c && s.isActive(child) {
			active = true
		}
	}
	s.active[c] = active

	h := cfg.RowExtent(row)
	y := h / 2
	dotSize := cfg.DotSize()
	laneX := cfg.LaneCenter(c.LanePosition())

	if c.Lane != nil {
		drawn := make(map[*history.Commit]bool, len(c.Children))
		for _, child := range c.Children {
			childRow, ok := s.rows[child]
			if !ok || child == c || child.Lane == nil || drawn[child] {
				continue
			}
			drawn[child] = true
			cx := cfg.LaneCenter(child.Lane.Position)
			s.p.DrawLine(s.isActive(child), laneX, y, cx, cfg.RowExtent(childRow)/2, cfg.LineWidth)
			s.maxCenter = max(s.maxCenter, cx)
		}
	}

	dotX := laneX - dotSize/2 - 1
	dotY := (h - dotSize) / 2
	if c.IsBoundary() {
		s.p.DrawBoundaryDot(dotX, dotY, dotSize, dotSize)
	} else {
		s.maxCenter = max(s.maxCenter, laneX)
		s.p.DrawCommitDot(c.Hash, c.Message, active, dotX, dotY, dotSize, dotSize)
	}

	x := max(s.maxCenter+cfg.LaneWidth/2, dotX+dotSize) + cfg.LabelGap
	labels := decor.ClassifyAll(c.Refs)
	for _, d := range labels {
		x += s.p.DrawLabel(x+dotSize, y, d)
	}
	s.p.DrawText(c.Message, x+dotSize+len(labels)*cfg.LabelPad, y)
}
