package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/historygraph/pkg/canvas"
	"github.com/matzehuels/historygraph/pkg/fonts"
	"github.com/matzehuels/historygraph/pkg/pipeline"
	"github.com/matzehuels/historygraph/pkg/scene"
)

// newTestView renders the sample history on a 300x120 viewport: a stage
// of 200 pixels, so two pages.
func newTestView(t *testing.T) viewModel {
	t.Helper()
	opts := pipeline.Options{Data: []byte(sampleDoc)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	sr, err := pipeline.NewRunner(nil, nil, nil).Scene(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}

	fs, err := fonts.Default()
	if err != nil {
		t.Fatal(err)
	}
	sheet, err := canvas.DefaultSprites()
	if err != nil {
		t.Fatal(err)
	}
	cv := canvas.New(canvas.NewSVG(300, 120, fs))
	cv.Ready(sheet)
	if err := cv.Render(sr.Scene); err != nil {
		t.Fatal(err)
	}
	return newViewModel(cv)
}

func press(m viewModel, keys ...string) (viewModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(viewModel)
	}
	return m, cmd
}

func hashes(m viewModel) []string {
	out := make([]string, len(m.rows))
	for i, c := range m.rows {
		out[i] = c.CommitHash
	}
	return out
}

func TestViewPaging(t *testing.T) {
	m := newTestView(t)

	if got := strings.Join(hashes(m), ","); got != "aaaa1111,bbbb2222" {
		t.Fatalf("page 1 rows = %s", got)
	}

	m, _ = press(m, "j", "right")
	if m.canvas.Page() != 1 {
		t.Fatalf("page = %d after right, want 1", m.canvas.Page())
	}
	if got := strings.Join(hashes(m), ","); got != "cccc3333" {
		t.Errorf("page 2 rows = %s", got)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d after turning the page, want 0", m.cursor)
	}

	// the last page is sticky
	m, _ = press(m, "l")
	if m.canvas.Page() != 1 {
		t.Errorf("page = %d, want to stay on 1", m.canvas.Page())
	}

	m, _ = press(m, "left")
	if m.canvas.Page() != 0 {
		t.Errorf("page = %d after left, want 0", m.canvas.Page())
	}
}

func TestViewCursorBounds(t *testing.T) {
	m := newTestView(t)

	m, _ = press(m, "k")
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	m, _ = press(m, "j", "j", "j")
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1 (last row)", m.cursor)
	}
}

func TestViewClick(t *testing.T) {
	m := newTestView(t)

	m, _ = press(m, "j", "enter")
	if m.err != nil {
		t.Fatal(m.err)
	}
	if m.selected == nil || m.selected.CommitHash != "bbbb2222" {
		t.Fatalf("selected = %+v, want bbbb2222", m.selected)
	}
	if hl, ok := m.canvas.Highlighted(); !ok || hl.CommitHash != "bbbb2222" {
		t.Errorf("canvas highlight = %+v, %v", hl, ok)
	}

	// clicks on the second page account for the page offset
	m, _ = press(m, "right", "enter")
	if m.selected == nil || m.selected.CommitHash != "cccc3333" {
		t.Errorf("selected = %+v, want cccc3333", m.selected)
	}
}

func TestViewRender(t *testing.T) {
	m := newTestView(t)
	out := m.View()

	for _, want := range []string{"Page 1/2", "aaaa1111", "tip", "HEAD", "main", "bbbb2222"} {
		if !strings.Contains(out, want) {
			t.Errorf("view lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "cccc3333") {
		t.Error("view shows a commit from the second page")
	}
}

func TestViewQuit(t *testing.T) {
	for _, key := range []string{"q", "esc"} {
		m := newTestView(t)
		var msg tea.KeyMsg
		if key == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		if _, cmd := m.Update(msg); cmd == nil {
			t.Errorf("%s: expected a quit command", key)
		}
	}
}

func TestRowLabels(t *testing.T) {
	m := newTestView(t)
	refs := m.refs["aaaa1111"]
	if len(refs) != 2 {
		t.Fatalf("aaaa1111 has %d labels, want 2", len(refs))
	}
	if !refs[0].Head() || refs[1].Text != "main" {
		t.Errorf("labels = %+v", refs)
	}
	if len(m.refs["bbbb2222"]) != 0 {
		t.Errorf("bbbb2222 has labels %+v", m.refs["bbbb2222"])
	}
}

func TestRowLabelsSkipsBoundaryRows(t *testing.T) {
	// rows centred at 50, 100 and 150; the middle one is a boundary commit
	s := &scene.Scene{
		Commits: []scene.Commit{
			{CommitHash: "aaaa1111", X: 13, Y: 38},
			{CommitHash: "cccc3333", X: 13, Y: 138},
		},
		Boundaries: []scene.Boundary{{X: 13, Y: 88, Size: 24}},
		Labels: []scene.Label{
			{LabelState: scene.LabelHead, X: 90, Y: 50, Text: "HEAD"},
			{LabelState: scene.LabelRemote, X: 90, Y: 100, Text: "edge"},
			{LabelState: scene.LabelRemote, X: 90, Y: 150, Text: "main"},
		},
		Texts: []scene.Text{
			{Message: "tip", X: 120, Y: 50},
			{Message: "edge", X: 120, Y: 100},
			{Message: "base", X: 120, Y: 150},
		},
		Height: 150,
	}

	refs := rowLabels(s)
	if got := refs["aaaa1111"]; len(got) != 1 || got[0].Text != "HEAD" {
		t.Errorf("aaaa1111 labels = %+v, want HEAD", got)
	}
	if got := refs["cccc3333"]; len(got) != 1 || got[0].Text != "main" {
		t.Errorf("cccc3333 labels = %+v, want main", got)
	}
	for hash, labels := range refs {
		for _, l := range labels {
			if l.Text == "edge" {
				t.Errorf("boundary label attributed to %s", hash)
			}
		}
	}
}

func TestViewRestore(t *testing.T) {
	m := newTestView(t)
	m.restore(1, "cccc3333")

	if m.canvas.Page() != 1 {
		t.Errorf("page = %d, want 1", m.canvas.Page())
	}
	if m.selected == nil || m.selected.CommitHash != "cccc3333" {
		t.Errorf("selected = %+v, want cccc3333", m.selected)
	}

	// pages past the end stop at the last page
	m = newTestView(t)
	m.restore(9, "gone")
	if m.canvas.Page() != 1 || m.selected != nil {
		t.Errorf("page = %d selected = %+v", m.canvas.Page(), m.selected)
	}
}

func TestViewSession(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	c := New(io.Discard, LogInfo)
	ctx := context.Background()

	store, sess := c.viewSession(ctx, "history.json")
	if store == nil || sess == nil {
		t.Skip("no user config directory on this platform")
	}
	sess.Page, sess.Highlight = 1, "cccc3333"
	if err := store.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}

	_, again := c.viewSession(ctx, "history.json")
	if again.ID != sess.ID || again.Page != 1 || again.Highlight != "cccc3333" {
		t.Errorf("reopened session = %+v", again)
	}
	if _, other := c.viewSession(ctx, "other.json"); other.ID == sess.ID {
		t.Error("different inputs share a session")
	}
}
