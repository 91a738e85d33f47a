package layout

import (
	"errors"
	"fmt"
)

// Default geometry, in pixels.
const (
	DefaultLaneWidth = 48
	DefaultRowHeight = 100
	DefaultLineWidth = 2
	DefaultLeftPad   = 2
	DefaultLabelGap  = 8
	DefaultLabelPad  = 2
)

// ErrInvalidConfig is returned by [Config.Validate].
var ErrInvalidConfig = errors.New("invalid layout config")

// Config holds the fixed geometry of a layout pass.
type Config struct {
	LaneWidth int `json:"lane_width" toml:"lane_width"` // column pitch
	RowHeight int `json:"row_height" toml:"row_height"` // cell extent unit
	LineWidth int `json:"line_width" toml:"line_width"` // connecting line stroke
	LeftPad   int `json:"left_pad" toml:"left_pad"`     // offset of lane 0
	LabelGap  int `json:"label_gap" toml:"label_gap"`   // space between dots and the first label
	LabelPad  int `json:"label_pad" toml:"label_pad"`   // extra text offset per label
}

// DefaultConfig returns the standard geometry.
func DefaultConfig() Config {
	return Config{
		LaneWidth: DefaultLaneWidth,
		RowHeight: DefaultRowHeight,
		LineWidth: DefaultLineWidth,
		LeftPad:   DefaultLeftPad,
		LabelGap:  DefaultLabelGap,
		LabelPad:  DefaultLabelPad,
	}
}

// Validate checks that all dimensions are usable.
func (c Config) Validate() error {
	switch {
	case c.LaneWidth <= 0:
		return fmt.Errorf("%w: lane width must be positive, got %d", ErrInvalidConfig, c.LaneWidth)
	case c.RowHeight <= 0:
		return fmt.Errorf("%w: row height must be positive, got %d", ErrInvalidConfig, c.RowHeight)
	case c.LineWidth <= 0:
		return fmt.Errorf("%w: line width must be positive, got %d", ErrInvalidConfig, c.LineWidth)
	case c.LeftPad < 0, c.LabelGap < 0, c.LabelPad < 0:
		return fmt.Errorf("%w: paddings must not be negative", ErrInvalidConfig)
	}
	return nil
}

// WithDefaults returns the default geometry for the zero Config. Otherwise
// it fills only the dimensions that must be positive; paddings are kept as
// given, so an explicit 0 stays 0.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c == (Config{}) {
		return d
	}
	if c.LaneWidth == 0 {
		c.LaneWidth = d.LaneWidth
	}
	if c.RowHeight == 0 {
		c.RowHeight = d.RowHeight
	}
	if c.LineWidth == 0 {
		c.LineWidth = d.LineWidth
	}
	return c
}

// DotSize is the side of a commit dot's bounding box: half the smaller of
// row height and lane width, rounded up to an even number.
func (c Config) DotSize() int {
	d := min(c.RowHeight, c.LaneWidth) / 2
	d += d & 1
	return d
}

// LaneCenter returns the x coordinate of a lane's centre line.
func (c Config) LaneCenter(pos int) int {
	return c.LeftPad + c.LaneWidth*pos + c.LaneWidth/2
}

// RowExtent returns the cell extent of the row at index i. The row's centre
// line sits at half of it.
func (c Config) RowExtent(i int) int {
	return (i + 1) * c.RowHeight
}

// Height returns the pixel extent of n rows.
func (c Config) Height(n int) int {
	return c.RowHeight / 2 * n
}
