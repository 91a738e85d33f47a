package canvas

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/historygraph/pkg/fonts"
)

// SVG is a Surface that records an SVG document. Sprite frames are embedded
// as PNG data URIs so the output is self-contained.
type SVG struct {
	fonts  *fonts.Set
	w, h   int
	dx, dy float64
	bg     string
	body   bytes.Buffer
}

// NewSVG returns a w x h SVG surface measuring text with fs.
func NewSVG(w, h int, fs *fonts.Set) *SVG {
	return &SVG{fonts: fs, w: w, h: h}
}

func (s *SVG) Size() (int, int) { return s.w, s.h }

func (s *SVG) Clear(bg string) {
	s.body.Reset()
	s.bg = bg
}

func (s *SVG) Translate(dx, dy float64) {
	s.dx, s.dy = dx, dy
}

func (s *SVG) Line(x1, y1, x2, y2, width float64, color string) {
	fmt.Fprintf(&s.body, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"/>`+"\n",
		x1+s.dx, y1+s.dy, x2+s.dx, y2+s.dy, color, width)
}

func (s *SVG) Sprite(sheet *SpriteSheet, f Frame, x, y float64) {
	fmt.Fprintf(&s.body, `  <image class="commit %s" x="%.1f" y="%.1f" width="%d" height="%d" href="%s"/>`+"\n",
		f, x+s.dx, y+s.dy, FrameSize, FrameSize, sheet.DataURI(f))
}

func (s *SVG) Circle(cx, cy, r float64, fill, stroke string) {
	fmt.Fprintf(&s.body, `  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s"/>`+"\n",
		cx+s.dx, cy+s.dy, r, paint(fill), paint(stroke))
}

func (s *SVG) RoundRect(x, y, w, h, r float64, fill, stroke string) {
	fmt.Fprintf(&s.body, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
		x+s.dx, y+s.dy, w, h, r, paint(fill), paint(stroke))
}

func (s *SVG) Polygon(pts []Point, fill string) {
	if len(pts) < 3 {
		return
	}
	coords := make([]string, len(pts))
	for i, p := range pts {
		coords[i] = fmt.Sprintf("%.1f,%.1f", p.X+s.dx, p.Y+s.dy)
	}
	fmt.Fprintf(&s.body, `  <polygon points="%s" fill="%s"/>`+"\n", strings.Join(coords, " "), paint(fill))
}

func (s *SVG) Text(str string, x, y float64, bold bool, color string) {
	if str == "" {
		return
	}
	weight := "normal"
	if bold {
		weight = "bold"
	}
	fmt.Fprintf(&s.body, `  <text x="%.1f" y="%.1f" dominant-baseline="hanging" font-family="%s" font-size="%.0f" font-weight="%s" fill="%s">%s</text>`+"\n",
		x+s.dx, y+s.dy, fonts.FallbackFontFamily, s.fontSize(), weight, color, escapeXML(str))
}

func (s *SVG) Measure(str string, bold bool) float64 {
	if s.fonts == nil {
		return 0
	}
	w, _ := s.fonts.Measure(str, bold)
	return w
}

func (s *SVG) Flush() error { return nil }

// Bytes returns the complete SVG document.
func (s *SVG) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		s.w, s.h, s.w, s.h)
	if s.bg != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", s.bg)
	}
	buf.Write(s.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// WriteTo writes the SVG document to w.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.Bytes())
	return int64(n), err
}

func (s *SVG) fontSize() float64 {
	if s.fonts == nil {
		return fonts.DefaultSize
	}
	return s.fonts.Size
}

func paint(c string) string {
	if c == "" {
		return "none"
	}
	return c
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
