package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/historygraph/pkg/history"
)

func sample() history.Sequence {
	a := &history.Commit{Hash: "a1b2c3d4e5f6", Message: "tip", Lane: &history.Lane{}, Active: true, Refs: []string{"HEAD", "refs/remotes/origin/main"}}
	b := &history.Commit{Hash: "bbbbbbbb", Message: "side", Row: 1, Lane: &history.Lane{Position: 1}}
	c := &history.Commit{Hash: "cccccccc", Message: "base", Row: 2, Kind: history.KindBoundary}
	outside := &history.Commit{Hash: "dddddddd"}
	history.Link(a, c)
	history.Link(b, c)
	history.Link(c, outside)
	return history.Sequence{a, b, c}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	for _, want := range []string{
		"digraph G {",
		`"a1b2c3d4e5f6" [label="a1b2c3d tip", fillcolor="#c4e3fc", penwidth=2, color="#82c56d"];`,
		`"bbbbbbbb" [label="bbbbbbb side"];`,
		`"cccccccc" [label="ccccccc base", style="rounded,filled,dashed", fillcolor=lightgrey];`,
		`"a1b2c3d4e5f6" -> "cccccccc";`,
		`"bbbbbbbb" -> "cccccccc";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "dddddddd") {
		t.Error("DOT references a commit outside the sequence")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sample(), Options{Detailed: true, HashLength: 4})
	want := `label="a1b2 tip\nrow: 0\nlane: 0\nhead: HEAD\nremote: main"`
	if !strings.Contains(dot, want) {
		t.Errorf("DOT missing %s\n%s", want, dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() changed svg without viewBox: %s", got)
	}
}
