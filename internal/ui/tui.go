// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the bridge status view
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// TUI manages the bridge status display
type TUI struct {
	program  *tea.Program
	updates  chan StatusMsg
	quitChan chan struct{}
}

// NewTUI creates a new TUI
func NewTUI() *TUI {
	t := &TUI{
		updates:  make(chan StatusMsg, 64),
		quitChan: make(chan struct{}, 1),
	}
	t.program = tea.NewProgram(NewModel(t.quitChan), tea.WithAltScreen())
	return t
}

// Run blocks until the user quits or Stop is called
func (t *TUI) Run(initial StatusMsg) error {
	go func() {
		t.program.Send(initial)
		for status := range t.updates {
			t.program.Send(status)
		}
	}()

	_, err := t.program.Run()
	return err
}

// Update sends a status update to the TUI
func (t *TUI) Update(status StatusMsg) {
	select {
	case t.updates <- status:
	default:
		// Don't block if channel is full
	}
}

// Stop stops the TUI
func (t *TUI) Stop() {
	t.program.Quit()
}

// QuitChan returns the channel that signals when user wants to quit
func (t *TUI) QuitChan() <-chan struct{} {
	return t.quitChan
}
