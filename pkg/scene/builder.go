package scene

import "github.com/matzehuels/historygraph/pkg/decor"

// Builder records drawing calls from the layout engine into a Scene.
// It satisfies layout.Painter.
type Builder struct {
	s *Scene
}

// NewBuilder returns a builder over a fresh, empty scene.
func NewBuilder() *Builder {
	return &Builder{s: New()}
}

// DrawLine records a connecting line.
func (b *Builder) DrawLine(active bool, x1, y1, x2, y2, width int) {
	b.s.Lines = append(b.s.Lines, Line{
		LineState: activeState(active),
		X1:        x1,
		Y1:        y1,
		X2:        x2,
		Y2:        y2,
		Width:     width,
	})
}

// DrawCommitDot records a clickable commit dot. The dot size is implied by
// the renderer's sprite sheet, so w and h are not stored.
func (b *Builder) DrawCommitDot(hash, message string, active bool, x, y, w, h int) {
	b.s.Commits = append(b.s.Commits, Commit{
		CommitHash:    hash,
		CommitMessage: message,
		CommitState:   activeState(active),
		X:             x,
		Y:             y,
	})
}

// DrawBoundaryDot records a boundary marker.
func (b *Builder) DrawBoundaryDot(x, y, w, h int) {
	b.s.Boundaries = append(b.s.Boundaries, Boundary{X: x, Y: y, Size: max(w, h)})
}

// DrawLabel records a ref badge. Widths depend on font metrics known only
// at paint time, so the builder consumes no horizontal space and returns 0.
func (b *Builder) DrawLabel(x, y int, d decor.Decoration) int {
	if !d.Accepted() {
		return 0
	}
	b.s.Labels = append(b.s.Labels, Label{
		LabelState: d.Kind.String(),
		X:          x,
		Y:          y,
		Text:       d.Text,
	})
	return 0
}

// DrawText records the commit message.
func (b *Builder) DrawText(msg string, x, y int) {
	b.s.Texts = append(b.s.Texts, Text{Message: msg, X: x, Y: y})
}

// SetHeight stores the total pixel extent of all rows.
func (b *Builder) SetHeight(h int) {
	b.s.Height = h
}

// Scene returns the built scene. The builder must not be used afterwards.
func (b *Builder) Scene() *Scene {
	return b.s
}
