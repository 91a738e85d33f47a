package canvas

import (
	"github.com/matzehuels/historygraph/pkg/observability"
	"github.com/matzehuels/historygraph/pkg/scene"
)

// Click hit-tests the viewport point x, y against the commit dots of the
// current page, topmost first. A hit switches that dot to the highlight
// frame, repaints, and calls the click handler.
func (c *Canvas) Click(x, y float64) (scene.Commit, bool, error) {
	sy := y + float64(c.page*c.PageHeight())
	for i := len(c.dots) - 1; i >= 0; i-- {
		d := c.dots[i]
		if !d.contains(x, sy) {
			continue
		}
		c.highlight(d)
		err := c.paint()
		observability.Canvas().OnClick(d.commit.CommitHash)
		if c.onClick != nil {
			c.onClick(d.commit.CommitHash, d.commit.CommitMessage)
		}
		return d.commit, true, err
	}
	return scene.Commit{}, false, nil
}

// highlight makes d the only highlighted dot.
func (c *Canvas) highlight(d *dotItem) {
	for _, o := range c.dots {
		o.frame = frameFor(o.commit.CommitState)
	}
	d.frame = FrameHighlight
}

// Highlighted returns the commit currently shown with the highlight frame.
func (c *Canvas) Highlighted() (scene.Commit, bool) {
	for _, d := range c.dots {
		if d.frame == FrameHighlight {
			return d.commit, true
		}
	}
	return scene.Commit{}, false
}
