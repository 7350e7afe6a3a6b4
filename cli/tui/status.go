package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/livedraw/handshake"
	"github.com/pithecene-io/livedraw/types"
)

// refreshMsg triggers a reload of the handshake status.
type refreshMsg time.Time

// statusMsg carries a freshly loaded status.
type statusMsg struct {
	status *handshake.Status
	err    error
}

// StatusModel is a Bubble Tea model for the live handshake view.
type StatusModel struct {
	feed     StatusFeed
	status   *handshake.Status
	err      error
	updated  time.Time
	width    int
	height   int
	quitting bool
}

// NewStatusModel creates a new status model.
func NewStatusModel(feed StatusFeed) StatusModel {
	if feed.Interval <= 0 {
		feed.Interval = DefaultRefreshInterval
	}
	return StatusModel{feed: feed}
}

// Init implements tea.Model.
func (m StatusModel) Init() tea.Cmd {
	return m.load
}

func (m StatusModel) load() tea.Msg {
	st, err := m.feed.Load()
	return statusMsg{status: st, err: err}
}

func (m StatusModel) tick() tea.Cmd {
	return tea.Tick(m.feed.Interval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// Update implements tea.Model.
func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusMsg:
		m.status, m.err = msg.status, msg.err
		m.updated = time.Now()
		return m, m.tick()

	case refreshMsg:
		return m, m.load

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			return m, m.load
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m StatusModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.err != nil:
		content = stateStyle(stateMissing).Render(fmt.Sprintf("Error: %v", m.err))
	case m.status == nil:
		content = fieldStyle.Render("Loading...")
	default:
		content = renderStatus(m.status)
	}

	help := hintStyle.Render("Press r to refresh, q or Ctrl+C to quit")
	if !m.updated.IsZero() {
		help = hintStyle.Render(fmt.Sprintf("Updated %s. Press r to refresh, q or Ctrl+C to quit",
			m.updated.Format(time.TimeOnly)))
	}
	return content + "\n" + help
}

func renderStatus(st *handshake.Status) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Handshake Directory"))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s\n", fieldStyle.Render("Dir:"), textStyle.Render(st.Dir))
	if !st.Exists {
		fmt.Fprintf(&b, "%s %s\n", fieldStyle.Render("State:"), stateStyle(stateMissing).Render(stateMissing))
		return sheetStyle.Render(b.String())
	}

	state := stateIdle
	if st.Pending {
		state = statePending
	}
	fmt.Fprintf(&b, "%s %s\n\n", fieldStyle.Render("State:"), stateStyle(state).Render(state))

	for _, a := range st.Artifacts {
		b.WriteString(renderArtifact(a))
		b.WriteString("\n")
	}

	return sheetStyle.Render(b.String())
}

func renderArtifact(a handshake.ArtifactStatus) string {
	name := fieldStyle.Width(26).Render(a.Name)
	if !a.Present {
		return name + " " + fieldStyle.Render("-")
	}

	line := fmt.Sprintf("%s %s", name, stateStyle(statePresent).Render(fmt.Sprintf("%d bytes", a.Size)))
	if a.ModTime != nil {
		line += "  " + textStyle.Render(a.ModTime.Format(time.TimeOnly))
	}
	if layer, ok := a.Plot.Get(types.PlotDataLayer); ok {
		line += "  " + layerStyle.Render("layer="+layer)
	}
	return line
}

// RunStatusTUI runs the live status TUI.
func RunStatusTUI(feed StatusFeed) error {
	p := tea.NewProgram(NewStatusModel(feed), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderStatusStatic renders one frame of the status view for output that
// is not a terminal.
func RenderStatusStatic(st *handshake.Status) string {
	model := StatusModel{status: st, width: 80, height: 24}
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}

// keyMap defines key bindings.
type keyMap struct {
	Quit    key.Binding
	Refresh key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
}
