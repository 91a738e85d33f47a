package canvas

// Point is a position on the stage.
type Point struct {
	X, Y float64
}

// Surface is a paintable target. Coordinates passed to drawing methods are
// stage coordinates; implementations add the current translation.
//
// Drawing methods do not return errors. Implementations that can fail keep
// the first error and report it from Flush.
type Surface interface {
	// Size returns the viewport in pixels.
	Size() (w, h int)
	// Clear removes everything drawn and fills the viewport with bg.
	Clear(bg string)
	// Translate sets the offset added to all subsequent coordinates.
	Translate(dx, dy float64)

	Line(x1, y1, x2, y2, width float64, color string)
	Sprite(sheet *SpriteSheet, f Frame, x, y float64)
	Circle(cx, cy, r float64, fill, stroke string)
	RoundRect(x, y, w, h, r float64, fill, stroke string)
	Polygon(pts []Point, fill string)
	// Text draws s with its top left corner at x, y.
	Text(s string, x, y float64, bold bool, color string)

	// Measure returns the advance width of s.
	Measure(s string, bold bool) float64

	// Flush completes a paint pass and reports the first drawing error.
	Flush() error
}
