// ABOUTME: Bubbletea model for the bridge TUI
// ABOUTME: Defines status state, update logic and rendering
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model represents the TUI state
type Model struct {
	// Identity
	mode  string
	port  string
	track string

	// Link and sink
	linkUp    bool
	sinkReady bool

	// Progress
	cycle   int
	bytes   int64
	seconds float64
	total   int64

	// Firmware
	lastMarker string
	markers    int

	lastError string

	startTime time.Time
	quitting  bool
	quitChan  chan struct{}

	// Dimensions
	width  int
	height int
}

// Progress carries running byte totals
type Progress struct {
	Bytes   int64   // This cycle (transmit) or session (receive)
	Seconds float64 // Audio duration of Bytes
	Total   int64   // Across all cycles
}

// StatusMsg updates TUI state. Zero fields leave the current value alone.
type StatusMsg struct {
	Mode      string
	Port      string
	Track     string
	LinkUp    *bool
	SinkReady *bool
	Cycle     int
	Progress  *Progress
	Marker    string
	Error     string
}

type tickMsg time.Time

// NewModel creates a new TUI model
func NewModel(quitChan chan struct{}) Model {
	return Model{
		startTime: time.Now(),
		quitChan:  quitChan,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		return m, tickEvery()
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		select {
		case m.quitChan <- struct{}{}:
		default:
		}
		return m, tea.Quit
	}
	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Mode != "" {
		m.mode = msg.Mode
	}
	if msg.Port != "" {
		m.port = msg.Port
	}
	if msg.Track != "" {
		m.track = msg.Track
	}
	if msg.LinkUp != nil {
		m.linkUp = *msg.LinkUp
	}
	if msg.SinkReady != nil {
		m.sinkReady = *msg.SinkReady
	}
	if msg.Cycle != 0 && msg.Cycle != m.cycle {
		m.cycle = msg.Cycle
		m.bytes = 0
		m.seconds = 0
	}
	if msg.Progress != nil {
		m.bytes = msg.Progress.Bytes
		m.seconds = msg.Progress.Seconds
		m.total = msg.Progress.Total
	}
	if msg.Marker != "" {
		m.lastMarker = msg.Marker
		m.markers++
	}
	if msg.Error != "" {
		m.lastError = msg.Error
	}
}

// transmitter reports whether the model shows a sending role
func (m Model) transmitter() bool {
	return m.mode != "" && m.mode != "bob"
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250"))

	markerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("220"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(headerStyle.Render(label + ": "))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	b.WriteString(titleStyle.Render("BISON Audio Bridge"))
	b.WriteString("\n\n")

	row("Mode", strings.ToUpper(orDash(m.mode)))
	row("Port", orDash(m.port))
	row("Link", upDown(m.linkUp))
	if m.transmitter() {
		row("Track", orDash(m.track))
		row("Loop", fmt.Sprintf("#%d", m.cycle))
		row("Sent", fmt.Sprintf("%d bytes (~%.1fs audio)", m.bytes, m.seconds))
		row("Total sent", fmt.Sprintf("%d bytes", m.total))
	} else {
		sink := "waiting"
		if m.sinkReady {
			sink = "ready"
		}
		row("Speaker", sink)
		row("Received", fmt.Sprintf("%d bytes (~%.1fs audio)", m.bytes, m.seconds))
	}
	row("Uptime", time.Since(m.startTime).Round(time.Second).String())
	b.WriteString("\n")

	b.WriteString(markerStyle.Render(fmt.Sprintf("Firmware status (%d)", m.markers)))
	b.WriteString("\n")
	b.WriteString(valueStyle.Render("  " + orDash(m.lastMarker)))
	b.WriteString("\n")

	if m.lastError != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + truncate(m.lastError, 70)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press 'q' or Ctrl+C to quit"))

	return b.String()
}

// Utility functions
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func upDown(up bool) string {
	if up {
		return "open"
	}
	return "closed"
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
