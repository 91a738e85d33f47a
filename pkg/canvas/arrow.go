package canvas

import "math"

const (
	arrowWidth     = 2
	arrowHeadHalf  = 5
	arrowHeadDepth = 20
)

// DrawArrow overlays a highlight arrow between two sprite positions (top
// left corners of dots). The arrow runs between the sprite centres and
// stays until the next Render. Equal points draw nothing.
func (c *Canvas) DrawArrow(start, end Point) error {
	if start == end {
		return nil
	}
	const off = FrameSize / 2.0
	from := Point{start.X + off, start.Y + off}
	to := Point{end.X + off, end.Y + off}

	c.overlay = append(c.overlay,
		&lineItem{x1: from.X, y1: from.Y, x2: to.X, y2: to.Y, width: arrowWidth, color: c.colors.HighlightLine},
		&polygonItem{pts: arrowHead(to, arrowRotation(start, end)), color: c.colors.HighlightLine},
	)
	return c.paint()
}

// arrowRotation returns the rotation in degrees of an arrowhead drawn
// pointing up at the origin, so that it points along start->end.
func arrowRotation(start, end Point) float64 {
	dx, dy := end.X-start.X, end.Y-start.Y
	var rad float64
	if dx == 0 {
		if dy > 0 {
			rad = -math.Pi / 2
		} else {
			rad = math.Pi / 2
		}
	} else {
		rad = math.Atan(dy / dx)
	}
	deg := rad * 180 / math.Pi
	if end.X > start.X {
		return deg + 90
	}
	return deg - 90
}

// arrowHead returns the triangle (0,0) (5,20) (-5,20) rotated by deg
// degrees clockwise and moved to tip.
func arrowHead(tip Point, deg float64) []Point {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	shape := []Point{{0, 0}, {arrowHeadHalf, arrowHeadDepth}, {-arrowHeadHalf, arrowHeadDepth}}
	pts := make([]Point, len(shape))
	for i, p := range shape {
		pts[i] = Point{
			X: tip.X + p.X*cos - p.Y*sin,
			Y: tip.Y + p.X*sin + p.Y*cos,
		}
	}
	return pts
}
