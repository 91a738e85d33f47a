package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/historygraph/pkg/errors"
	"github.com/matzehuels/historygraph/pkg/history"
)

type document struct {
	Commits []commit `json:"commits"`
}

type commit struct {
	Hash     string   `json:"hash"`
	Message  string   `json:"message"`
	Lane     *int     `json:"lane"`
	Active   bool     `json:"active,omitempty"`
	Boundary bool     `json:"boundary,omitempty"`
	Parents  []string `json:"parents,omitempty"`
	Children []string `json:"children,omitempty"`
	Refs     []string `json:"refs,omitempty"`
}

// Stats summarizes an import.
type Stats struct {
	Commits  int // commits decoded
	Links    int // distinct parent/child links resolved
	Dangling int // parent or child hashes not present in the document, or naming the commit itself

	IgnoredRefs int // malformed ref names dropped from commits
}

// ReadCommits decodes a commit document from r into a sequence.
//
// The input must be a JSON object with a "commits" array in walk order:
//
//	{
//	  "commits": [
//	    {"hash": "c0ffee01", "message": "tip", "lane": 0, "refs": ["HEAD"], "parents": ["beef0002"]},
//	    {"hash": "beef0002", "message": "base", "lane": 0}
//	  ]
//	}
//
// Rows are assigned by position. Links may be given from either side
// (parents, children, or both); they are merged and deduplicated. Hashes
// that do not appear in the document, and links from a commit to itself,
// are dropped and counted in [Stats.Dangling]. Malformed ref names only
// lose their label: they are dropped and counted in [Stats.IgnoredRefs].
//
// ReadCommits returns an error if:
//   - The JSON is malformed
//   - A hash is empty, malformed, or duplicated
//   - A lane is negative
//
// ReadCommits does not close r.
func ReadCommits(r io.Reader) (history.Sequence, Stats, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, Stats{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode commit document")
	}

	seq := make(history.Sequence, len(doc.Commits))
	byHash := make(map[string]*history.Commit, len(doc.Commits))
	stats := Stats{Commits: len(seq)}
	for i, c := range doc.Commits {
		if err := errors.ValidateHash(c.Hash); err != nil {
			return nil, Stats{}, fmt.Errorf("commit %d: %w", i, err)
		}
		if _, dup := byHash[c.Hash]; dup {
			return nil, Stats{}, errors.New(errors.ErrCodeInvalidInput, "duplicate commit hash: %s", c.Hash)
		}
		var refs []string
		for _, ref := range c.Refs {
			if errors.ValidateRefName(ref) != nil {
				stats.IgnoredRefs++
				continue
			}
			refs = append(refs, ref)
		}

		hc := &history.Commit{
			Hash:    c.Hash,
			Message: c.Message,
			Row:     i,
			Active:  c.Active,
			Refs:    refs,
		}
		if c.Lane != nil {
			if *c.Lane < 0 {
				return nil, Stats{}, errors.New(errors.ErrCodeInvalidInput, "commit %s: negative lane %d", c.Hash, *c.Lane)
			}
			hc.Lane = &history.Lane{Position: *c.Lane}
		}
		if c.Boundary {
			hc.Kind = history.KindBoundary
		}
		seq[i] = hc
		byHash[c.Hash] = hc
	}

	for i, c := range doc.Commits {
		self := seq[i]
		for _, p := range c.Parents {
			parent, ok := byHash[p]
			if !ok || parent == self {
				stats.Dangling++
				continue
			}
			history.Link(self, parent)
		}
		for _, ch := range c.Children {
			child, ok := byHash[ch]
			if !ok || child == self {
				stats.Dangling++
				continue
			}
			history.Link(child, self)
		}
	}
	for _, c := range seq {
		stats.Links += len(c.Parents)
	}

	return seq, stats, nil
}

// ImportCommits reads a commit document from the file at path.
func ImportCommits(path string) (history.Sequence, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Stats{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, Stats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCommits(f)
}
