// Package tui renders the read-only livedraw views: the live handshake
// directory and the last archived run. Views are opt-in via --tui and
// draw from the same payloads as the table, JSON and YAML output.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/livedraw/runtime"
)

// Inks used across views.
var (
	inkViolet = lipgloss.Color("#7C3AED")
	inkGreen  = lipgloss.Color("#10B981")
	inkAmber  = lipgloss.Color("#F59E0B")
	inkRed    = lipgloss.Color("#EF4444")
	inkGray   = lipgloss.Color("#6B7280")
	inkBlue   = lipgloss.Color("#3B82F6")
	inkPaper  = lipgloss.Color("#FFFFFF")
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(inkViolet).MarginBottom(1)
	fieldStyle   = lipgloss.NewStyle().Foreground(inkGray).Width(16)
	textStyle    = lipgloss.NewStyle().Foreground(inkPaper)
	hintStyle    = lipgloss.NewStyle().Foreground(inkGray).MarginTop(1)

	// sheetStyle frames a whole view like the drawing sheet.
	sheetStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(inkGray).
			Padding(1, 2)

	// layerStyle marks the pen layer the plotter reported in plotdata.
	layerStyle = lipgloss.NewStyle().Foreground(inkAmber).Italic(true)

	counterStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			Width(20).
			Align(lipgloss.Center)
	counterLabelStyle = lipgloss.NewStyle().Foreground(inkGray).Align(lipgloss.Center)
	counterValueStyle = lipgloss.NewStyle().Bold(true).Align(lipgloss.Center)
)

// stateInk colors handshake artifact states and run outcomes.
var stateInk = map[string]lipgloss.Color{
	stateIdle:    inkGreen,
	statePresent: inkGreen,
	statePending: inkAmber,
	stateMissing: inkRed,

	string(runtime.OutcomeCompleted):      inkGreen,
	string(runtime.OutcomeInterrupted):    inkAmber,
	string(runtime.OutcomeFailed):         inkRed,
	string(runtime.OutcomeInputError):     inkRed,
	string(runtime.OutcomeHandshakeError): inkRed,
}

// Handshake directory states shown by the status view.
const (
	stateIdle    = "idle"
	statePending = "pending"
	statePresent = "present"
	stateMissing = "missing"
)

func stateStyle(state string) lipgloss.Style {
	if ink, ok := stateInk[state]; ok {
		return lipgloss.NewStyle().Foreground(ink)
	}
	return textStyle
}
