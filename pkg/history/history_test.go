package history

import (
	"errors"
	"testing"
)

func TestSequenceValidate(t *testing.T) {
	a := &Commit{Hash: "a", Row: 0}
	b := &Commit{Hash: "b", Row: 1}
	c := &Commit{Hash: "c", Row: 1}

	tests := []struct {
		name    string
		seq     Sequence
		wantErr error
	}{
		{"Empty", nil, nil},
		{"Ordered", Sequence{a, b}, nil},
		{"Duplicate", Sequence{a, b, c}, ErrRowOrder},
		{"Reversed", Sequence{b, a}, ErrRowOrder},
		{"Nil", Sequence{a, nil}, ErrNilCommit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.seq.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLinkDeduplicates(t *testing.T) {
	child := &Commit{Hash: "child"}
	parent := &Commit{Hash: "parent"}

	Link(child, parent)
	Link(child, parent)

	if len(child.Parents) != 1 {
		t.Errorf("parents = %d, want 1", len(child.Parents))
	}
	if len(parent.Children) != 1 {
		t.Errorf("children = %d, want 1", len(parent.Children))
	}
	if parent.Children[0] != child {
		t.Error("parent should point back at child")
	}
}

func TestCommitHelpers(t *testing.T) {
	c := &Commit{Refs: []string{"refs/remotes/origin/main", HeadRef}}
	if !c.HasRef(HeadRef) {
		t.Error("HasRef(HEAD) = false")
	}
	if c.HasRef("refs/heads/main") {
		t.Error("HasRef should match exact names only")
	}
	if got := c.LanePosition(); got != 0 {
		t.Errorf("LanePosition() with nil lane = %d, want 0", got)
	}
	c.Lane = &Lane{Position: 3}
	if got := c.LanePosition(); got != 3 {
		t.Errorf("LanePosition() = %d, want 3", got)
	}
	if c.IsBoundary() {
		t.Error("zero Kind should be normal")
	}
	c.Kind = KindBoundary
	if !c.IsBoundary() || c.Kind.String() != "boundary" {
		t.Error("boundary kind not reported")
	}
}

func TestSequenceLookup(t *testing.T) {
	seq := Sequence{{Hash: "a"}, {Hash: "b", Row: 1}}
	if c, ok := seq.Lookup("b"); !ok || c.Row != 1 {
		t.Errorf("Lookup(b) = %v, %v", c, ok)
	}
	if _, ok := seq.Lookup("zz"); ok {
		t.Error("Lookup of unknown hash should miss")
	}
	if idx := seq.Index(); len(idx) != 2 {
		t.Errorf("Index size = %d, want 2", len(idx))
	}
}
