// Package fonts provides the font faces used to paint labels and commit
// messages.
//
// The Go font family is compiled into the binary (golang.org/x/image/font/gofont)
// so rendering needs no system fonts. Faces are created through gogpu/gg's
// text package and shared by every canvas in the process.
package fonts

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultSize is the text size of messages and labels, in pixels.
const DefaultSize = 14

// FontFamily is the CSS font-family used when emitting SVG.
const FontFamily = "Go"

// FallbackFontFamily provides fallback fonts for viewers without the Go fonts.
const FallbackFontFamily = `Go, Arial, Helvetica, sans-serif`

// Set is a regular and a bold face of one size.
type Set struct {
	Size    float64
	Regular text.Face
	Bold    text.Face
}

// Face returns the bold or regular face.
func (s *Set) Face(bold bool) text.Face {
	if bold {
		return s.Bold
	}
	return s.Regular
}

// Measure returns the advance width and line height of str.
func (s *Set) Measure(str string, bold bool) (w, h float64) {
	return text.Measure(str, s.Face(bold))
}

// Sources holding the parsed Go fonts (parsed once on first access).
var (
	regularSrc *text.FontSource
	boldSrc    *text.FontSource
	loadErr    error
	loadOnce   sync.Once
)

func load() error {
	loadOnce.Do(func() {
		regularSrc, loadErr = text.NewFontSource(goregular.TTF)
		if loadErr != nil {
			loadErr = fmt.Errorf("parse go regular: %w", loadErr)
			return
		}
		boldSrc, loadErr = text.NewFontSource(gobold.TTF)
		if loadErr != nil {
			loadErr = fmt.Errorf("parse go bold: %w", loadErr)
		}
	})
	return loadErr
}

// New returns the faces for the given pixel size.
func New(size float64) (*Set, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if err := load(); err != nil {
		return nil, err
	}
	return &Set{
		Size:    size,
		Regular: regularSrc.Face(size),
		Bold:    boldSrc.Face(size),
	}, nil
}

// Default returns the faces at [DefaultSize].
func Default() (*Set, error) {
	return New(DefaultSize)
}
