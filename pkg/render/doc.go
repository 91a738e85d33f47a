// Package render holds output conversions shared by the renderers.
//
// Scene PNG and SVG output is produced in-process by [canvas]. This package
// adds the format that needs an external tool: [ToPDF] converts any SVG
// using rsvg-convert from librsvg.
//
//	svg := surface.Bytes()
//	pdf, err := render.ToPDF(svg)
//
// The [nodelink] subpackage renders the commit DAG as a graphviz diagram,
// an alternative to the lane view for debugging lane assignment.
package render
