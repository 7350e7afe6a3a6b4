package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/livedraw/archive"
)

// LastRunModel is a Bubble Tea model for the most recent archived run.
type LastRunModel struct {
	record   *archive.RunRecord
	width    int
	height   int
	quitting bool
}

// NewLastRunModel creates a new last run model.
func NewLastRunModel(rec *archive.RunRecord) LastRunModel {
	return LastRunModel{record: rec}
}

// Init implements tea.Model.
func (m LastRunModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m LastRunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m LastRunModel) View() string {
	if m.quitting {
		return ""
	}
	if m.record == nil {
		return "No run recorded\n" + hintStyle.Render("Press q or Ctrl+C to quit")
	}
	rec := m.record

	var b strings.Builder
	b.WriteString(headingStyle.Render("Last Run"))
	b.WriteString("\n\n")

	rows := [][]string{
		{"Run ID", rec.RunID},
		{"Art", rec.Art},
		{"Mode", rec.Mode},
		{"Outcome", rec.Outcome},
		{"Exit Code", fmt.Sprintf("%d", rec.ExitCode)},
		{"Duration", (time.Duration(rec.DurationMs) * time.Millisecond).String()},
		{"Archive", rec.Prefix},
	}
	if rec.Message != "" {
		rows = append(rows, []string{"Message", rec.Message})
	}

	for _, row := range rows {
		label := fieldStyle.Render(row[0] + ":")
		value := textStyle.Render(row[1])
		if row[0] == "Outcome" {
			value = stateStyle(rec.Outcome).Render(row[1])
		}
		fmt.Fprintf(&b, "%s %s\n", label, value)
	}
	b.WriteString("\n")

	boxes := []string{
		renderCounter("Draw Calls", rec.DrawCalls, inkBlue),
		renderCounter("Published", rec.Published, inkGreen),
		renderCounter("Skipped", rec.Skipped, inkAmber),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))

	help := hintStyle.Render("Press q or Ctrl+C to quit")
	return sheetStyle.Render(b.String()) + "\n" + help
}

func renderCounter(label string, value int, ink lipgloss.Color) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		countertextStyle.Foreground(ink).Render(fmt.Sprintf("%d", value)),
		counterfieldStyle.Render(label),
	)
	return counterStyle.BorderForeground(ink).Render(content)
}

// RunLastRunTUI runs the last run TUI.
func RunLastRunTUI(rec *archive.RunRecord) error {
	p := tea.NewProgram(NewLastRunModel(rec), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
