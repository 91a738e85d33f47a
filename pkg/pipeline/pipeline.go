// Package pipeline runs the import → layout → render pipeline used by the
// CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Import: decode a lane-annotated commit document
//  2. Layout: turn the sequence into a scene (cached by input and geometry)
//  3. Render: produce artifacts from the scene (cached by scene and options)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "history.json",
//	    Formats: []string{"json", "png"},
//	})
//	if err != nil {
//	    return err
//	}
//	sceneJSON := result.Artifacts["json"]
//	firstPage := result.Pages[0]
//
// The stages can also be run on their own with [Runner.Scene] and
// [Runner.Render].
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/historygraph/pkg/cache"
	"github.com/matzehuels/historygraph/pkg/canvas"
	"github.com/matzehuels/historygraph/pkg/errors"
	"github.com/matzehuels/historygraph/pkg/fonts"
	"github.com/matzehuels/historygraph/pkg/history"
	pkgio "github.com/matzehuels/historygraph/pkg/io"
	"github.com/matzehuels/historygraph/pkg/layout"
	"github.com/matzehuels/historygraph/pkg/scene"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 800

	// DefaultHeight is the default viewport (page) height in pixels.
	DefaultHeight = 600

	// DefaultLoadTimeout bounds how long rendering waits for the sprite sheet.
	DefaultLoadTimeout = 5 * time.Second

	// DefaultFontSize is the label and message font size in pixels.
	DefaultFontSize = fonts.DefaultSize
)

// Format constants for output formats.
const (
	FormatJSON = "json" // scene JSON
	FormatPNG  = "png"  // rasterized pages
	FormatSVG  = "svg"  // full stage as SVG
	FormatPDF  = "pdf"  // full stage SVG converted with rsvg-convert
	FormatDOT  = "dot"  // graphviz node-link SVG of the commit DAG
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatPNG:  true,
	FormatSVG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Input options. Data takes precedence over Input.
	Input string `json:"input,omitempty"`
	Data  []byte `json:"-"`

	// Layout options
	Layout layout.Config `json:"layout"`

	// Render options
	Width       int           `json:"width,omitempty"`
	Height      int           `json:"height,omitempty"`
	FontSize    float64       `json:"font_size,omitempty"`
	Sprites     string        `json:"sprites,omitempty"` // PNG sprite sheet; empty uses the builtin one
	LoadTimeout time.Duration `json:"load_timeout,omitempty"`
	Colors      canvas.Colors `json:"colors"`
	Formats     []string      `json:"formats,omitempty"`
	FullPage    bool          `json:"full_page,omitempty"` // one PNG of the whole stage instead of pages
	Detailed    bool          `json:"detailed,omitempty"`  // row, lane and refs in DOT labels
	Refresh     bool          `json:"refresh,omitempty"`   // bypass cached scenes and artifacts

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the laid out scene.
	Scene *scene.Scene

	// SceneHash is the content hash of the scene JSON.
	SceneHash string

	// Sequence is the imported history. It is nil when the scene came from
	// the cache and no format needed the commits.
	Sequence history.Sequence

	// Import summarizes the import; zero on a scene cache hit.
	Import pkgio.Stats

	// Artifacts contains rendered outputs keyed by format. For PNG it holds
	// the first page, or the full stage with FullPage.
	Artifacts map[string][]byte

	// Pages holds one PNG per page when PNG output was requested.
	Pages [][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Commits    int
	Pages      int
	ImportTime time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SceneHit  bool // Whether the scene came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, trimming blanks.
// An empty string yields the JSON format.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []string{FormatJSON}
	}
	return out
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" && o.Data == nil {
		return errors.New(errors.ErrCodeInvalidInput, "input path or data is required")
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults fills zero layout geometry with the defaults.
func (o *Options) SetLayoutDefaults() {
	o.Layout = o.Layout.WithDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout sets layout defaults and validates the geometry.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := o.Layout.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = DefaultLoadTimeout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// Wants reports whether format was requested.
func (o *Options) Wants(format string) bool {
	return slices.Contains(o.Formats, format)
}

// NeedsSprites reports whether any requested format paints the canvas.
func (o *Options) NeedsSprites() bool {
	return o.Wants(FormatPNG) || o.Wants(FormatSVG) || o.Wants(FormatPDF)
}

// SceneKeyOpts returns cache key options for the layout stage.
func (o *Options) SceneKeyOpts() cache.SceneKeyOpts {
	return cache.SceneKeyOpts{
		LaneWidth: o.Layout.LaneWidth,
		RowHeight: o.Layout.RowHeight,
		LineWidth: o.Layout.LineWidth,
		LeftPad:   o.Layout.LeftPad,
		LabelGap:  o.Layout.LabelGap,
		LabelPad:  o.Layout.LabelPad,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered output.
func (o *Options) ArtifactKeyOpts(format string, page int) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Width:    o.Width,
		Height:   o.Height,
		Page:     page,
		FullPage: o.FullPage,
		FontSize: o.FontSize,
		Sprites:  o.Sprites,
		Colors:   fmt.Sprintf("%+v/%t", o.Colors, o.Detailed),
	}
}
