package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/historygraph/pkg/pipeline"
)

// =============================================================================
// Shared Flags
// =============================================================================

// pipelineFlags holds flags shared by the commands that run the pipeline.
// Only flags set on the command line override the config file.
type pipelineFlags struct {
	noCache bool
	refresh bool

	// layout
	laneWidth int
	rowHeight int
	lineWidth int

	// render
	width    int
	height   int
	fontSize float64
	sprites  string
	fullPage bool
	detailed bool
}

func (f *pipelineFlags) addCacheFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results and recompute")
}

func (f *pipelineFlags) addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.laneWidth, "lane-width", 0, "horizontal distance between lanes")
	cmd.Flags().IntVar(&f.rowHeight, "row-height", 0, "vertical extent of a commit row")
	cmd.Flags().IntVar(&f.lineWidth, "line-width", 0, "stroke width of connecting lines")
}

func (f *pipelineFlags) addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.width, "width", 0, "viewport width")
	cmd.Flags().IntVar(&f.height, "height", 0, "viewport (page) height")
	cmd.Flags().Float64Var(&f.fontSize, "font-size", 0, "label and message font size")
	cmd.Flags().StringVar(&f.sprites, "sprites", "", "PNG sprite sheet for commit dots (default: builtin)")
}

// options builds pipeline options for input from the loaded config and the
// flags the user changed.
func (c *CLI) options(cmd *cobra.Command, input string, f *pipelineFlags) pipeline.Options {
	opts := c.cfg.Options(input)
	opts.Logger = c.Logger
	opts.Refresh = f.refresh

	set := cmd.Flags().Changed
	if set("lane-width") {
		opts.Layout.LaneWidth = f.laneWidth
	}
	if set("row-height") {
		opts.Layout.RowHeight = f.rowHeight
	}
	if set("line-width") {
		opts.Layout.LineWidth = f.lineWidth
	}
	if set("width") {
		opts.Width = f.width
	}
	if set("height") {
		opts.Height = f.height
	}
	if set("font-size") {
		opts.FontSize = f.fontSize
	}
	if set("sprites") {
		opts.Sprites = f.sprites
	}
	if set("full-page") {
		opts.FullPage = f.fullPage
	}
	if set("detailed") {
		opts.Detailed = f.detailed
	}
	return opts
}
