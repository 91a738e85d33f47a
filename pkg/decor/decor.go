// Package decor classifies ref names attached to a commit into the badges
// drawn next to it.
//
// Only two kinds of decoration are rendered: the local HEAD and branches of
// the default remote. The remote's own HEAD pointer is ignored so that a
// branch is not labeled twice. Every other ref shape (tags, local branches,
// other remotes, garbage) is ignored rather than reported as an error.
package decor

import "strings"

const (
	// Head is the literal name of the checked-out ref.
	Head = "HEAD"

	// RemotePrefix is the remote-tracking prefix of the default remote.
	RemotePrefix = "refs/remotes/origin/"

	// RemoteHeadPrefix is the default remote's HEAD pointer.
	RemoteHeadPrefix = RemotePrefix + Head
)

// Kind is the classification of a single ref name.
type Kind uint8

const (
	// Ignored refs produce no label.
	Ignored Kind = iota
	// HeadLabel marks the local HEAD.
	HeadLabel
	// RemoteBranch marks a branch of the default remote.
	RemoteBranch
)

// String returns the label state flag used in the scene: "head", "remote"
// or "ignored".
func (k Kind) String() string {
	switch k {
	case HeadLabel:
		return "head"
	case RemoteBranch:
		return "remote"
	default:
		return "ignored"
	}
}

// Decoration is a classified ref.
type Decoration struct {
	Kind Kind
	Text string // display text; empty when ignored
}

// Accepted reports whether the decoration should produce a label.
func (d Decoration) Accepted() bool {
	return d.Kind != Ignored
}

// Classify decides whether and how a ref name is rendered.
func Classify(ref string) Decoration {
	switch {
	case ref == Head:
		return Decoration{Kind: HeadLabel, Text: Head}
	case strings.HasPrefix(ref, RemoteHeadPrefix):
		return Decoration{Kind: Ignored}
	case strings.HasPrefix(ref, RemotePrefix):
		return Decoration{Kind: RemoteBranch, Text: strings.TrimPrefix(ref, RemotePrefix)}
	default:
		return Decoration{Kind: Ignored}
	}
}

// ClassifyAll classifies refs in attachment order and drops ignored ones.
func ClassifyAll(refs []string) []Decoration {
	var out []Decoration
	for _, r := range refs {
		if d := Classify(r); d.Accepted() {
			out = append(out, d)
		}
	}
	return out
}
