package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/historygraph/pkg/cache"
	"github.com/matzehuels/historygraph/pkg/canvas"
	"github.com/matzehuels/historygraph/pkg/pipeline"
	"github.com/matzehuels/historygraph/pkg/scene"
	"github.com/matzehuels/historygraph/pkg/session"
)

// viewCommand creates the view command, an interactive pager over the
// pages of a rendered history.
func (c *CLI) viewCommand() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "view [history.json]",
		Short: "Browse the pages of a commit history interactively",
		Long: `Browse the pages of a commit history interactively.

The history is laid out and painted exactly as 'render -f png' would, one
viewport page at a time. Each page lists the commits whose dots are on it.

Keys:
  ←/h, →/l   previous / next page
  ↑/k, ↓/j   move the selection
  enter      click the selected commit
  q          quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), c.options(cmd, args[0], &flags), flags.noCache)
		},
	}

	flags.addCacheFlags(cmd)
	flags.addLayoutFlags(cmd)
	flags.addRenderFlags(cmd)

	return cmd
}

func (c *CLI) runView(ctx context.Context, opts pipeline.Options, noCache bool) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()
	sr, err := runner.Scene(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Update("Loading sprites...")
	assets, err := pipeline.LoadAssets(ctx, opts)
	if err != nil {
		spinner.StopWithError("Loading sprites failed")
		return err
	}
	spinner.Stop()
	logger.Debug("scene ready", "height", sr.Scene.Height, "cached", sr.Hit)

	cv := canvas.New(
		canvas.NewSVG(opts.Width, opts.Height, assets.Fonts),
		canvas.WithColors(opts.Colors),
		canvas.WithLogger(c.Logger),
	)
	cv.Ready(assets.Sprites)
	if err := cv.Render(sr.Scene); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Laid out %d commits on %d pages", len(sr.Scene.Commits), cv.PageCount()))

	model := newViewModel(cv)
	store, sess := c.viewSession(ctx, opts.Input)
	if sess != nil && sess.SceneHash == sr.Hash {
		model.restore(sess.Page, sess.Highlight)
		logger.Debug("resumed view", "page", sess.Page, "highlight", sess.Highlight)
	}

	m, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	vm, ok := m.(viewModel)
	if !ok {
		return nil
	}
	if store != nil {
		sess.Page, sess.SceneHash = vm.canvas.Page(), sr.Hash
		if vm.selected != nil {
			sess.Highlight = vm.selected.CommitHash
		}
		sess.Touch(time.Now(), session.DefaultTTL)
		if err := store.Set(ctx, sess); err != nil {
			logger.Warn("saving view session failed", "error", err)
		}
	}
	if vm.selected != nil {
		printSuccess("%s %s", StyleHighlight.Render(shortHash(vm.selected.CommitHash)), vm.selected.CommitMessage)
	}
	return nil
}

// viewSession opens the saved browsing state of input. Sessions are keyed
// by the absolute input path. The store is nil when sessions are
// unavailable; the session is never nil when the store is not.
func (c *CLI) viewSession(ctx context.Context, input string) (session.Store, *session.Session) {
	logger := loggerFromContext(ctx)
	dir, err := session.DefaultDir(appName)
	if err != nil {
		logger.Debug("view sessions unavailable", "error", err)
		return nil, nil
	}
	store, err := session.NewFileStore(dir)
	if err != nil {
		logger.Debug("view sessions unavailable", "error", err)
		return nil, nil
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		abs = input
	}
	id := cache.Hash([]byte(abs))[:32]
	sess, err := store.Get(ctx, id)
	if err != nil || sess == nil {
		sess = session.New(id, session.DefaultTTL)
	}
	return store, sess
}

// =============================================================================
// viewModel - Interactive page browser
// =============================================================================

var (
	viewHeadStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	viewRemoteStyle = lipgloss.NewStyle().Foreground(colorBlue)
)

// viewModel is the bubbletea model for browsing canvas pages.
type viewModel struct {
	canvas   *canvas.Canvas
	refs     map[string][]scene.Label // commit hash -> labels on its row
	rows     []scene.Commit
	cursor   int
	selected *scene.Commit
	err      error
}

// newViewModel creates a model over a rendered canvas.
func newViewModel(cv *canvas.Canvas) viewModel {
	m := viewModel{canvas: cv, refs: rowLabels(cv.Scene())}
	m.rows = cv.Visible()
	return m
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "right", "l", "pgdown", " ":
		m.turn(m.canvas.Next)
	case "left", "h", "pgup":
		m.turn(m.canvas.Previous)
	case "enter":
		m.click()
	}
	return m, nil
}

// turn moves to another page and resets the selection when the page
// actually changed.
func (m *viewModel) turn(move func() error) {
	before := m.canvas.Page()
	if m.err = move(); m.err != nil {
		return
	}
	if m.canvas.Page() != before {
		m.rows = m.canvas.Visible()
		m.cursor = 0
	}
}

// restore moves to page and selects the commit with the given hash if it
// is on that page.
func (m *viewModel) restore(page int, highlight string) {
	for m.canvas.Page() < page {
		before := m.canvas.Page()
		m.turn(m.canvas.Next)
		if m.err != nil || m.canvas.Page() == before {
			break
		}
	}
	for i, c := range m.rows {
		if c.CommitHash == highlight {
			m.cursor = i
			m.click()
			return
		}
	}
}

// click hits the centre of the selected commit's dot.
func (m *viewModel) click() {
	if len(m.rows) == 0 {
		return
	}
	c := m.rows[m.cursor]
	const half = canvas.FrameSize / 2
	x := float64(c.X + half)
	y := float64(c.Y + half - m.canvas.Page()*m.canvas.PageHeight())
	hit, ok, err := m.canvas.Click(x, y)
	m.err = err
	if ok {
		m.selected = &hit
	}
}

func (m viewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Page %d/%d", m.canvas.Page()+1, m.canvas.PageCount())))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ page  ↑/↓ select  ⏎ click  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(m.rows))
	for i, c := range m.rows {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		mark := "○"
		if c.Active() {
			mark = "●"
		}
		rows = append(rows, []string{cursor, mark, shortHash(c.CommitHash), c.CommitMessage, m.renderRefs(c.CommitHash)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Commit", "Message", "Refs").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if !m.rows[row].Active() {
				base = base.Foreground(colorDim)
			}
			if row == m.cursor {
				return base.Bold(true)
			}
			return base
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error())
	case m.selected != nil:
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " " + shortHash(m.selected.CommitHash) + " " + m.selected.CommitMessage)
	default:
		b.WriteString(StyleDim.Render(fmt.Sprintf("  %d commits on this page", len(m.rows))))
	}
	b.WriteString("\n")

	return b.String()
}

func (m viewModel) renderRefs(hash string) string {
	labels := m.refs[hash]
	parts := make([]string, len(labels))
	for i, l := range labels {
		if l.Head() {
			parts[i] = viewHeadStyle.Render(l.Text)
		} else {
			parts[i] = viewRemoteStyle.Render(l.Text)
		}
	}
	return strings.Join(parts, " ")
}

// =============================================================================
// Helpers
// =============================================================================

// rowLabels assigns every label to the commit dot on the label's row. Each
// row carries one message text at its centre line, and a dot's row is the
// first centre at or below its top edge. Labels on rows without a dot
// (boundary commits) are dropped.
func rowLabels(s *scene.Scene) map[string][]scene.Label {
	refs := make(map[string][]scene.Label)
	if s == nil || len(s.Commits) == 0 {
		return refs
	}
	centres := make([]int, 0, len(s.Texts))
	for _, t := range s.Texts {
		centres = append(centres, t.Y)
	}
	slices.Sort(centres)

	byRow := make(map[int]string, len(s.Commits))
	for _, c := range s.Commits {
		if i, _ := slices.BinarySearch(centres, c.Y); i < len(centres) {
			byRow[centres[i]] = c.CommitHash
		}
	}
	for _, l := range s.Labels {
		if hash, ok := byRow[l.Y]; ok {
			refs[hash] = append(refs[hash], l)
		}
	}
	return refs
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
