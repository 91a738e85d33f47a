package canvas

import "github.com/matzehuels/historygraph/pkg/scene"

// Paginate returns how many pages of pageHeight cover stageHeight. There
// is always at least one page, and a non-positive page height yields one.
func Paginate(stageHeight, pageHeight int) int {
	if pageHeight <= 0 || stageHeight <= 0 {
		return 1
	}
	return (stageHeight + pageHeight - 1) / pageHeight
}

// StageHeight is the scene height plus the bottom margin.
func (c *Canvas) StageHeight() int {
	if c.scene == nil {
		return 0
	}
	return c.scene.Height + c.margin
}

// PageHeight is the visible height of one page.
func (c *Canvas) PageHeight() int {
	if c.pageHeight > 0 {
		return c.pageHeight
	}
	_, h := c.surface.Size()
	return h
}

// Page returns the current page, starting at 0.
func (c *Canvas) Page() int { return c.page }

// PageCount returns the number of pages of the rendered scene, or 0 before
// the first render.
func (c *Canvas) PageCount() int { return c.pages }

// Next shows the following page. It stops at the last page.
func (c *Canvas) Next() error {
	if c.page >= c.pages-1 {
		return nil
	}
	c.page++
	return c.paint()
}

// Previous shows the preceding page. It stops at the first page.
func (c *Canvas) Previous() error {
	if c.page <= 0 {
		return nil
	}
	c.page--
	return c.paint()
}

// Goto shows page, clamped to the rendered pages, with a single repaint.
// Nothing is painted when the page does not change.
func (c *Canvas) Goto(page int) error {
	page = max(0, min(page, c.pages-1))
	if page == c.page {
		return nil
	}
	c.page = page
	return c.paint()
}

// Visible returns the commit dots that intersect the current page.
func (c *Canvas) Visible() []scene.Commit {
	ph := c.PageHeight()
	top := c.page * ph
	var out []scene.Commit
	for _, d := range c.dots {
		if ph <= 0 || (d.commit.Y+FrameSize > top && d.commit.Y < top+ph) {
			out = append(out, d.commit)
		}
	}
	return out
}
