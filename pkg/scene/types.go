package scene

import "slices"

// =============================================================================
// Constants - State Flags
// =============================================================================

// Line and commit dot states.
const (
	StateActive   = "active"
	StateInactive = "inactive"
)

// Label states.
const (
	LabelHead   = "head"
	LabelRemote = "remote"
)

// activeState maps a boolean to the active/inactive flag.
func activeState(active bool) string {
	if active {
		return StateActive
	}
	return StateInactive
}

// =============================================================================
// Primitives
// =============================================================================

// Line connects the lane centres of a commit and one of its children.
type Line struct {
	LineState string `json:"LineState"`
	X1        int    `json:"X1"`
	Y1        int    `json:"Y1"`
	X2        int    `json:"X2"`
	Y2        int    `json:"Y2"`
	Width     int    `json:"Width"`
}

// Active reports whether the line belongs to HEAD's ancestry.
func (l Line) Active() bool { return l.LineState == StateActive }

// Commit is the clickable dot marking a walked commit. X and Y are the top
// left corner of the dot's bounding box.
type Commit struct {
	CommitHash    string `json:"CommitHash"`
	CommitMessage string `json:"CommitMessage"`
	CommitState   string `json:"CommitState"`
	X             int    `json:"X"`
	Y             int    `json:"Y"`
}

// Active reports whether the commit is on HEAD's ancestry.
func (c Commit) Active() bool { return c.CommitState == StateActive }

// Label is a decorated-ref badge. Y is the row centre.
type Label struct {
	LabelState string `json:"LabelState"`
	X          int    `json:"X"`
	Y          int    `json:"Y"`
	Text       string `json:"Text"`
}

// Head reports whether the label decorates the local HEAD.
func (l Label) Head() bool { return l.LabelState == LabelHead }

// Text is the free-floating commit message. Y is the row centre.
type Text struct {
	Message string `json:"Message"`
	X       int    `json:"X"`
	Y       int    `json:"Y"`
}

// Boundary marks an uninteresting commit. It has no identity and is not
// clickable.
type Boundary struct {
	X    int `json:"X"`
	Y    int `json:"Y"`
	Size int `json:"Size"`
}

// =============================================================================
// Scene
// =============================================================================

// Scene is the renderer-agnostic geometry of one layout build. It is fully
// populated by a single layout pass and not mutated afterwards.
type Scene struct {
	Lines      []Line     `json:"Lines"`
	Commits    []Commit   `json:"Commits"`
	Labels     []Label    `json:"Labels"`
	Texts      []Text     `json:"Texts"`
	Boundaries []Boundary `json:"Boundaries,omitempty"`
	Height     int        `json:"Height"`
}

// New returns an empty scene whose primitive slices are non-nil.
func New() *Scene {
	return &Scene{
		Lines:   []Line{},
		Commits: []Commit{},
		Labels:  []Label{},
		Texts:   []Text{},
	}
}

// Empty reports whether the scene holds no primitives.
func (s *Scene) Empty() bool {
	return len(s.Lines) == 0 && len(s.Commits) == 0 && len(s.Labels) == 0 &&
		len(s.Texts) == 0 && len(s.Boundaries) == 0
}

// CommitAt returns the dot of the commit with the given hash.
func (s *Scene) CommitAt(hash string) (Commit, bool) {
	for _, c := range s.Commits {
		if c.CommitHash == hash {
			return c, true
		}
	}
	return Commit{}, false
}

// Equal reports whether two scenes hold the same primitives in the same order.
func (s *Scene) Equal(o *Scene) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Height == o.Height &&
		slices.Equal(s.Lines, o.Lines) &&
		slices.Equal(s.Commits, o.Commits) &&
		slices.Equal(s.Labels, o.Labels) &&
		slices.Equal(s.Texts, o.Texts) &&
		slices.Equal(s.Boundaries, o.Boundaries)
}
