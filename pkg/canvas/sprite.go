package canvas

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"github.com/gogpu/gg"

	"github.com/matzehuels/historygraph/pkg/errors"
)

// FrameSize is the side of one sprite frame in pixels.
const FrameSize = 26

// Frame selects one of the three dot appearances.
type Frame int

const (
	FrameInactive Frame = iota
	FrameActive
	FrameHighlight
	frameCount
)

// String returns the scene state name of the frame.
func (f Frame) String() string {
	switch f {
	case FrameActive:
		return "active"
	case FrameHighlight:
		return "highlight"
	default:
		return "inactive"
	}
}

// frameFor maps a commit state flag to its frame.
func frameFor(state string) Frame {
	if state == "active" {
		return FrameActive
	}
	return FrameInactive
}

// SpriteSheet holds the dot frames laid out left to right, FrameSize apart.
type SpriteSheet struct {
	img image.Image
	buf *gg.ImageBuf

	uriOnce sync.Once
	uris    [frameCount]string
}

// NewSpriteSheet wraps img, which must hold at least three frames.
func NewSpriteSheet(img image.Image) (*SpriteSheet, error) {
	b := img.Bounds()
	if b.Dx() < FrameSize*int(frameCount) || b.Dy() < FrameSize {
		return nil, errors.New(errors.ErrCodeAssetLoad,
			"sprite sheet is %dx%d, need at least %dx%d", b.Dx(), b.Dy(), FrameSize*int(frameCount), FrameSize)
	}
	return &SpriteSheet{img: img, buf: gg.ImageBufFromImage(img)}, nil
}

// DecodeSprites reads a PNG sprite sheet.
func DecodeSprites(r io.Reader) (*SpriteSheet, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssetLoad, err, "decode sprite sheet")
	}
	return NewSpriteSheet(img)
}

// FileSprites loads a sprite sheet image from path.
func FileSprites(path string) (*SpriteSheet, error) {
	buf, err := gg.LoadImage(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssetLoad, err, "load sprite sheet %s", path)
	}
	return NewSpriteSheet(buf.ToStdImage())
}

// Dot colours of the built-in sheet, matching the line colours.
var defaultDotColors = [frameCount]string{
	FrameInactive:  "#9b9997",
	FrameActive:    "#5592f0",
	FrameHighlight: "#d74c2f",
}

// DefaultSprites draws the built-in sheet: a filled disc with a white ring
// per frame.
func DefaultSprites() (*SpriteSheet, error) {
	dc := gg.NewContext(FrameSize*int(frameCount), FrameSize)
	defer dc.Close()

	const c = FrameSize / 2.0
	for f := range frameCount {
		ox := float64(int(f) * FrameSize)
		dc.DrawCircle(ox+c, c, c-1)
		dc.SetHexColor(defaultDotColors[f])
		if err := dc.Fill(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "draw %s frame", f)
		}
		dc.DrawCircle(ox+c, c, c-5)
		dc.SetHexColor("#ffffff")
		dc.SetLineWidth(2)
		if err := dc.Stroke(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "draw %s frame", f)
		}
	}
	return NewSpriteSheet(dc.Image())
}

// FrameRect returns the source rectangle of f within the sheet.
func (s *SpriteSheet) FrameRect(f Frame) image.Rectangle {
	o := s.img.Bounds().Min
	x := o.X + int(f)*FrameSize
	return image.Rect(x, o.Y, x+FrameSize, o.Y+FrameSize)
}

// Image returns the whole sheet.
func (s *SpriteSheet) Image() image.Image { return s.img }

// FrameImage returns a copy of one frame.
func (s *SpriteSheet) FrameImage(f Frame) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, FrameSize, FrameSize))
	draw.Draw(dst, dst.Bounds(), s.img, s.FrameRect(f).Min, draw.Src)
	return dst
}

// DataURI returns frame f as a base64 PNG data URI, for embedding in SVG.
func (s *SpriteSheet) DataURI(f Frame) string {
	s.uriOnce.Do(func() {
		for i := range frameCount {
			var buf bytes.Buffer
			if err := png.Encode(&buf, s.FrameImage(i)); err != nil {
				continue
			}
			s.uris[i] = "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
		}
	})
	return s.uris[f]
}
