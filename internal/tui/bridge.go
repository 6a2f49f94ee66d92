// Package tui is the terminal frontend: a bubbletea program that renders the
// session's widgets and turns key presses into session actions.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/i474232898/weather-lookup/internal/ui"
)

type (
	screenMsg        struct{ screen ui.Screen }
	searchEnabledMsg struct{ enabled bool }
	locateBusyMsg    struct{ busy bool }
	noticeMsg        struct{ text string }
	popupMsg         struct{ text string }
	repromptMsg      struct{ text string }
)

// Bridge implements ui.View by forwarding every widget update to a running
// bubbletea program. The input field is mirrored here so the session can
// read it without going through the program.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
	input   string
}

func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach sets the program updates are sent to. Updates sent before Attach
// are dropped.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = p
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (b *Bridge) setInput(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.input = s
}

func (b *Bridge) Input() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.input
}

func (b *Bridge) Render(s ui.Screen)            { b.send(screenMsg{screen: s}) }
func (b *Bridge) SetSearchEnabled(enabled bool) { b.send(searchEnabledMsg{enabled: enabled}) }
func (b *Bridge) SetLocateBusy(busy bool)       { b.send(locateBusyMsg{busy: busy}) }
func (b *Bridge) ShowNotice(msg string)         { b.send(noticeMsg{text: msg}) }
func (b *Bridge) ShowPopup(msg string)          { b.send(popupMsg{text: msg}) }
func (b *Bridge) ShowReprompt(msg string)       { b.send(repromptMsg{text: msg}) }

var _ ui.View = (*Bridge)(nil)
