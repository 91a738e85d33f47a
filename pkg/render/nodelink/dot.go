package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/historygraph/pkg/decor"
	"github.com/matzehuels/historygraph/pkg/history"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds row, lane and refs to node labels.
	// When false, only the abbreviated hash and message are shown.
	Detailed bool

	// HashLength abbreviates hashes in labels. Zero means 7.
	HashLength int
}

const defaultHashLength = 7

// ToDOT converts a commit sequence to Graphviz DOT format. Edges run from
// child to parent, and only between commits present in seq. Active commits
// are filled blue, boundary commits are dashed and HEAD gets a bold outline.
func ToDOT(seq history.Sequence, opts Options) string {
	if opts.HashLength <= 0 {
		opts.HashLength = defaultHashLength
	}
	idx := seq.Index()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, c := range seq {
		if c == nil {
			continue
		}
		label := fmtLabel(c, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", c.Hash, strings.Join(fmtAttrs(c, label), ", "))
	}

	buf.WriteString("\n")
	for _, c := range seq {
		if c == nil {
			continue
		}
		for _, p := range c.Parents {
			if !idx[p] {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", c.Hash, p.Hash)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(c *history.Commit, opts Options) string {
	hash := c.Hash
	if len(hash) > opts.HashLength {
		hash = hash[:opts.HashLength]
	}
	label := hash
	if c.Message != "" {
		label += " " + c.Message
	}
	if !opts.Detailed {
		return label
	}

	parts := []string{fmt.Sprintf("row: %d", c.Row)}
	if c.Lane != nil {
		parts = append(parts, fmt.Sprintf("lane: %d", c.Lane.Position))
	}
	for _, d := range decor.ClassifyAll(c.Refs) {
		parts = append(parts, fmt.Sprintf("%s: %s", d.Kind, d.Text))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(c *history.Commit, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case c.IsBoundary():
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case c.Active:
		attrs = append(attrs, "fillcolor=\"#c4e3fc\"")
	}
	if c.HasRef(decor.Head) {
		attrs = append(attrs, "penwidth=2", "color=\"#82c56d\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces graphviz's pt-sized root element with a plain
// pixel one so the SVG scales like the canvas output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
