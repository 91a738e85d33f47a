package scene

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/historygraph/pkg/decor"
)

func TestBuilderRecordsPrimitives(t *testing.T) {
	b := NewBuilder()
	b.DrawLine(true, 26, 100, 26, 50, 2)
	b.DrawLine(false, 74, 150, 26, 50, 2)
	b.DrawCommitDot("abc", "init", true, 13, 38, 24, 24)
	b.DrawBoundaryDot(61, 138, 24, 24)
	if w := b.DrawLabel(82, 50, decor.Classify("HEAD")); w != 0 {
		t.Errorf("DrawLabel width = %d, want 0", w)
	}
	b.DrawLabel(82, 50, decor.Classify("refs/tags/v1"))
	b.DrawText("init", 84, 50)
	b.SetHeight(150)

	s := b.Scene()
	if len(s.Lines) != 2 || len(s.Commits) != 1 || len(s.Labels) != 1 || len(s.Texts) != 1 || len(s.Boundaries) != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if !s.Lines[0].Active() || s.Lines[1].Active() {
		t.Error("line states not mapped from active flag")
	}
	if s.Labels[0].LabelState != LabelHead || s.Labels[0].Text != "HEAD" {
		t.Errorf("label = %+v", s.Labels[0])
	}
	if s.Boundaries[0].Size != 24 {
		t.Errorf("boundary size = %d", s.Boundaries[0].Size)
	}
	if c, ok := s.CommitAt("abc"); !ok || !c.Active() {
		t.Errorf("CommitAt(abc) = %+v, %v", c, ok)
	}
}

func TestWireFieldNames(t *testing.T) {
	b := NewBuilder()
	b.DrawLine(true, 1, 2, 3, 4, 2)
	b.DrawCommitDot("h", "m", false, 5, 6, 24, 24)
	b.DrawLabel(7, 8, decor.Classify("refs/remotes/origin/main"))
	b.DrawText("m", 9, 10)
	b.SetHeight(50)

	data, err := Marshal(b.Scene())
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"Lines", "Commits", "Labels", "Texts", "Height"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing top-level field %q", key)
		}
	}
	if _, ok := raw["Boundaries"]; ok {
		t.Error("Boundaries should be omitted when empty")
	}

	for _, field := range []string{
		`"LineState": "active"`, `"X1": 1`, `"Width": 2`,
		`"CommitHash": "h"`, `"CommitMessage": "m"`, `"CommitState": "inactive"`,
		`"LabelState": "remote"`, `"Text": "main"`,
		`"Message": "m"`,
	} {
		if !strings.Contains(string(data), field) {
			t.Errorf("encoded scene missing %s", field)
		}
	}
}

func TestEmptySceneEncodesArrays(t *testing.T) {
	data, err := Marshal(New())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"Lines": []`)) {
		t.Errorf("empty scene should encode empty arrays, got %s", data)
	}
	if !New().Empty() {
		t.Error("New() should be empty")
	}
}

func TestReadNormalizesNulls(t *testing.T) {
	s, err := Unmarshal([]byte(`{"Lines":null,"Height":0}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.Lines == nil || s.Commits == nil || s.Labels == nil || s.Texts == nil {
		t.Error("Read should replace nulls with empty slices")
	}
}

func TestFileRoundTrip(t *testing.T) {
	b := NewBuilder()
	b.DrawLine(false, 26, 100, 74, 150, 2)
	b.DrawCommitDot("a", "first", true, 13, 38, 24, 24)
	b.SetHeight(100)
	want := b.Scene()

	path := filepath.Join(t.TempDir(), "scene.json")
	if err := WriteFile(want, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}
