package history

import (
	"errors"
	"fmt"
)

// HeadRef is the symbolic ref of the currently checked-out branch.
const HeadRef = "HEAD"

var (
	// ErrNilCommit is returned by Validate when a sequence holds a nil entry.
	ErrNilCommit = errors.New("nil commit")

	// ErrRowOrder is returned by Validate when row indexes are not strictly increasing.
	ErrRowOrder = errors.New("row indexes must be unique and increasing")
)

// Kind distinguishes fully walked commits from boundary commits.
type Kind uint8

const (
	// KindNormal is a fully walked commit, drawn as a clickable dot.
	KindNormal Kind = iota
	// KindBoundary is an uninteresting commit, drawn as a passive marker.
	KindBoundary
)

// String returns "normal" or "boundary".
func (k Kind) String() string {
	if k == KindBoundary {
		return "boundary"
	}
	return "normal"
}

// Lane is a vertical column used to separate concurrent branches.
type Lane struct {
	Position int
}

// Commit is one row of the plotted history.
type Commit struct {
	Hash    string
	Message string // short (first line) message
	Row     int    // position in the walked sequence
	Lane    *Lane  // nil when the walker assigned no lane
	Active  bool   // seeded by the walker; layout may promote it
	Kind    Kind

	Parents  []*Commit
	Children []*Commit

	// Refs are the raw decoration names, e.g. "HEAD" or
	// "refs/remotes/origin/main", in attachment order.
	Refs []string
}

// IsBoundary reports whether c is a boundary (uninteresting) commit.
func (c *Commit) IsBoundary() bool {
	return c.Kind == KindBoundary
}

// HasRef reports whether a ref with exactly this name is attached to c.
func (c *Commit) HasRef(name string) bool {
	for _, r := range c.Refs {
		if r == name {
			return true
		}
	}
	return false
}

// LanePosition returns the lane column, or 0 when c has no lane.
func (c *Commit) LanePosition() int {
	if c.Lane == nil {
		return 0
	}
	return c.Lane.Position
}

// Sequence is a topologically ordered, lane-annotated commit list.
type Sequence []*Commit

// Validate checks that the sequence holds no nil commits and that row indexes
// are unique and strictly increasing.
func (s Sequence) Validate() error {
	prev := -1
	for i, c := range s {
		if c == nil {
			return fmt.Errorf("position %d: %w", i, ErrNilCommit)
		}
		if c.Row <= prev {
			return fmt.Errorf("commit %s (row %d after %d): %w", c.Hash, c.Row, prev, ErrRowOrder)
		}
		prev = c.Row
	}
	return nil
}

// Index returns a membership set of the commits in s.
func (s Sequence) Index() map[*Commit]bool {
	idx := make(map[*Commit]bool, len(s))
	for _, c := range s {
		if c != nil {
			idx[c] = true
		}
	}
	return idx
}

// Lookup returns the commit with the given hash.
func (s Sequence) Lookup(hash string) (*Commit, bool) {
	for _, c := range s {
		if c != nil && c.Hash == hash {
			return c, true
		}
	}
	return nil, false
}

// Link records parent as a parent of child and child as a child of parent.
// Links that already exist are not duplicated, and a commit is never linked
// to itself.
func Link(child, parent *Commit) {
	if child == parent {
		return
	}
	if !contains(child.Parents, parent) {
		child.Parents = append(child.Parents, parent)
	}
	if !contains(parent.Children, child) {
		parent.Children = append(parent.Children, child)
	}
}

func contains(list []*Commit, c *Commit) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}
