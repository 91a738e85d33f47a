// Package nodelink renders commit histories as node-link diagrams.
//
// # Overview
//
// The lane view from [canvas] is compact but hides how the walker assigned
// lanes. This package draws the same sequence with Graphviz, one box per
// commit and one arrow per child to parent link, which makes lane and
// activity mistakes easy to spot.
//
// # Usage
//
//	dot := nodelink.ToDOT(seq, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Styling
//
//   - active commits: light blue fill
//   - boundary commits: dashed grey box
//   - the HEAD commit: bold green outline
//
// Detailed labels add row, lane and the accepted decorations.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
