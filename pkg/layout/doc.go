// Package layout computes the pixel geometry of a lane-annotated commit
// history.
//
// # Input
//
// The engine consumes a [history.Sequence]: commits in walk order (newest
// first), each already assigned to a lane by the upstream revision walker.
// The sequence is read-only here; active flags computed during a pass are
// kept in per-pass state and never written back.
//
// # Geometry
//
// Row i has a cell extent of (i+1)*RowHeight with its centre line at half of
// that, so rows are pitched RowHeight/2 apart and the stage height is
// RowHeight/2 times the commit count. Lane p is centred at
//
//	LeftPad + LaneWidth*p + LaneWidth/2
//
// Commit dots are squares of [Config.DotSize] whose top left corner sits at
// (laneCenter - size/2 - 1, (extent - size)/2).
//
// For every commit, in order, the engine:
//
//  1. marks it active when it carries the HEAD ref, was flagged active on
//     input, or has an active child
//  2. draws a line to every laned child in the same sequence
//  3. draws a commit dot, or a boundary dot for uninteresting commits
//  4. draws the accepted ref decorations left to right
//  5. draws the message after the labels
//
// Labels start right of the furthest lane centre drawn so far in the pass.
// Label widths are supplied by the [Painter]; the engine only accumulates
// them, adding [Config.LabelPad] per label before the text.
//
// # Painters
//
// [scene.Builder] records the primitives into a serializable scene and
// reports zero label width; canvas renderers measure text at paint time.
package layout
