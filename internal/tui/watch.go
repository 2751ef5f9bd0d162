// Package tui provides the live progress view for `flow watch`: a
// polling bubbletea model over a run's state file and trace log.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/christophervuu/flow/internal/display"
	"github.com/christophervuu/flow/internal/pipeline"
	"github.com/christophervuu/flow/internal/run"
	"github.com/christophervuu/flow/internal/trace"
)

// Watch is the bubbletea model for one run's live progress.
type Watch struct {
	store   *run.Store
	runID   string
	runPath string

	state    run.State
	progress trace.Progress
	spin     spinner.Model
	err      error

	width  int
	height int
}

// NewWatch creates a watch model for runID.
func NewWatch(store *run.Store, runID string) *Watch {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(display.ColorAccent)

	return &Watch{
		store:   store,
		runID:   runID,
		runPath: store.RunPath(runID),
		spin:    s,
	}
}

type tickMsg time.Time

type refreshMsg struct {
	state    run.State
	progress trace.Progress
	err      error
}

func (w *Watch) Init() tea.Cmd {
	return tea.Batch(w.refresh, w.tickCmd(), w.spin.Tick)
}

func (w *Watch) tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh reloads state and reconstructs progress from the trace log.
func (w *Watch) refresh() tea.Msg {
	state, err := w.store.LoadState(w.runPath)
	if err != nil {
		return refreshMsg{err: err}
	}

	opts, err := w.store.LoadOptions(w.runPath)
	if err != nil {
		return refreshMsg{err: err}
	}
	plan := pipeline.ExpectedAgents(opts)

	events, err := trace.ReadFile(run.TracePath(w.runPath))
	var progress trace.Progress
	if err == nil && len(events) > 0 {
		progress = trace.Reconstruct(events, plan)
	} else {
		progress = trace.FromCompleted(w.store.CompletedAgents(w.runPath), plan)
	}

	return refreshMsg{state: state, progress: progress}
}

func (w *Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return w, tea.Quit
		}
		return w, nil

	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		return w, nil

	case refreshMsg:
		w.state = msg.state
		w.progress = msg.progress
		w.err = msg.err
		if w.state.Status.Terminal() {
			return w, tea.Quit
		}
		return w, nil

	case tickMsg:
		return w, tea.Batch(w.refresh, w.tickCmd())

	case spinner.TickMsg:
		var cmd tea.Cmd
		w.spin, cmd = w.spin.Update(msg)
		return w, cmd
	}
	return w, nil
}

func (w *Watch) View() string {
	if w.err != nil {
		return display.StyleError.Render("error: "+w.err.Error()) + "\n"
	}

	var b []string
	b = append(b,
		display.StyleTitle.Render("flow watch "+w.runID),
		display.StyleBold.Render("status: ")+string(w.state.Status),
		"",
	)

	for _, agent := range w.progress.Completed {
		b = append(b, "  "+display.StyleSuccess.Render("[ok]")+" "+agent)
	}
	for _, agent := range w.progress.Active {
		b = append(b, "  "+w.spin.View()+" "+agent)
	}
	for _, agent := range w.progress.Pending {
		b = append(b, "  "+display.StyleMuted.Render("[  ] "+agent))
	}

	b = append(b, "", display.StyleMuted.Render("q to quit"))
	return lipgloss.JoinVertical(lipgloss.Left, b...) + "\n"
}
