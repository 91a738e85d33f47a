package canvas

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Colors is the palette used to paint a scene. Values are hex strings.
type Colors struct {
	Background       string `toml:"background"`
	InactiveLine     string `toml:"inactive_line"`
	ActiveLine       string `toml:"active_line"`
	HighlightLine    string `toml:"highlight_line"`
	Text             string `toml:"text"`
	BranchBackground string `toml:"branch_background"`
	BranchBorder     string `toml:"branch_border"`
	BranchText       string `toml:"branch_text"`
	HeadBackground   string `toml:"head_background"`
	HeadBorder       string `toml:"head_border"`
	HeadText         string `toml:"head_text"`
	Boundary         string `toml:"boundary"`
}

// DefaultColors returns the standard palette.
func DefaultColors() Colors {
	return Colors{
		Background:       "#ffffff",
		InactiveLine:     "#9b9997",
		ActiveLine:       "#5592f0",
		HighlightLine:    "#d74c2f",
		Text:             "#333",
		BranchBackground: "#c4e3fc",
		BranchBorder:     "#9dc8ea",
		BranchText:       "#333",
		HeadBackground:   "#c3fb9e",
		HeadBorder:       "#82c56d",
		HeadText:         "#008000",
		Boundary:         "#9b9997",
	}
}

// merge fills empty fields of c from d.
func (c Colors) merge(d Colors) Colors {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&c.Background, d.Background)
	fill(&c.InactiveLine, d.InactiveLine)
	fill(&c.ActiveLine, d.ActiveLine)
	fill(&c.HighlightLine, d.HighlightLine)
	fill(&c.Text, d.Text)
	fill(&c.BranchBackground, d.BranchBackground)
	fill(&c.BranchBorder, d.BranchBorder)
	fill(&c.BranchText, d.BranchText)
	fill(&c.HeadBackground, d.HeadBackground)
	fill(&c.HeadBorder, d.HeadBorder)
	fill(&c.HeadText, d.HeadText)
	fill(&c.Boundary, d.Boundary)
	return c
}

// ClickHandler receives the hash and message of a clicked commit dot.
type ClickHandler func(hash, message string)

// DefaultClickHandler writes "hash-message" lines to w.
func DefaultClickHandler(w io.Writer) ClickHandler {
	return func(hash, message string) {
		fmt.Fprintf(w, "%s-%s\n", hash, message)
	}
}

// DefaultBottomMargin is added below the last row when paginating.
const DefaultBottomMargin = 50

// Option configures a Canvas.
type Option func(*Canvas)

// WithColors sets the palette; empty fields keep their defaults.
func WithColors(c Colors) Option {
	return func(cv *Canvas) { cv.colors = c.merge(DefaultColors()) }
}

// WithClickHandler sets the handler called when a commit dot is clicked.
func WithClickHandler(h ClickHandler) Option {
	return func(cv *Canvas) { cv.onClick = h }
}

// WithPageHeight overrides the page height, which defaults to the surface
// height.
func WithPageHeight(h int) Option {
	return func(cv *Canvas) { cv.pageHeight = h }
}

// WithBottomMargin sets the space added below the last row.
func WithBottomMargin(m int) Option {
	return func(cv *Canvas) { cv.margin = m }
}

// WithLogger sets the logger for paint diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(cv *Canvas) { cv.logger = l }
}
