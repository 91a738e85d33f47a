// Package scene defines the intermediate geometry produced by layout and
// consumed by painting.
//
// # Overview
//
// A [Scene] is a flat list of draw primitives with final pixel coordinates:
//
//   - [Line]: lane segment between a commit and one of its children
//   - [Commit]: clickable commit dot, carrying hash and short message
//   - [Boundary]: passive marker for an uninteresting commit
//   - [Label]: ref badge ("head" or "remote")
//   - [Text]: commit message
//
// plus a single Height, the pixel extent of all rows, used for pagination.
//
// # Wire Format
//
// The JSON shape is the contract with renderers and is kept stable:
//
//	{
//	  "Lines":   [{"LineState": "active", "X1": 26, "Y1": 100, "X2": 26, "Y2": 50, "Width": 2}],
//	  "Commits": [{"CommitHash": "...", "CommitMessage": "...", "CommitState": "active", "X": 13, "Y": 38}],
//	  "Labels":  [{"LabelState": "head", "X": 82, "Y": 50, "Text": "HEAD"}],
//	  "Texts":   [{"Message": "...", "X": 84, "Y": 50}],
//	  "Height":  150
//	}
//
// State flags are style selectors, not free text: lines and dots use
// "active"/"inactive", labels use "head"/"remote". Boundaries appear only
// when the input holds boundary commits.
//
// # Building
//
// [Builder] implements the layout engine's painter capability set and is the
// only way scenes are produced; it never measures text.
package scene
