package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/i474232898/weather-lookup/internal/geo"
	"github.com/i474232898/weather-lookup/internal/ui"
)

// Actions are the session operations the keyboard can trigger.
type Actions interface {
	Submit()
	RefreshLocation()
	DismissPopup()
}

// PermissionSetter answers the location permission prompt.
type PermissionSetter interface {
	SetPermission(geo.Permission)
}

// Dracula palette
var (
	colorBackground = lipgloss.Color("#282a36")
	colorForeground = lipgloss.Color("#f8f8f2")
	colorComment    = lipgloss.Color("#6272a4")
	colorSelection  = lipgloss.Color("#44475a")
	colorCyan       = lipgloss.Color("#8be9fd")
	colorGreen      = lipgloss.Color("#50fa7b")
	colorOrange     = lipgloss.Color("#ffb86c")
	colorPurple     = lipgloss.Color("#bd93f9")
	colorRed        = lipgloss.Color("#ff5555")
	colorYellow     = lipgloss.Color("#f1fa8c")
)

// Model is the bubbletea model of the weather screen.
type Model struct {
	bridge  *Bridge
	actions Actions
	perm    PermissionSetter

	screen        ui.Screen
	input         string
	searchEnabled bool
	locateBusy    bool
	notice        string
	popup         string
	reprompt      string
	width         int
	height        int
}

// NewModel creates the model. perm may be nil when permission is not
// controllable from the keyboard.
func NewModel(bridge *Bridge, actions Actions, perm PermissionSetter) Model {
	return Model{
		bridge:        bridge,
		actions:       actions,
		perm:          perm,
		searchEnabled: true,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screenMsg:
		m.screen = msg.screen
	case searchEnabledMsg:
		m.searchEnabled = msg.enabled
	case locateBusyMsg:
		m.locateBusy = msg.busy
	case noticeMsg:
		m.notice = msg.text
	case popupMsg:
		m.popup = msg.text
	case repromptMsg:
		m.reprompt = msg.text

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey never calls the session directly: the session may itself be
// blocked sending to the program, so actions run as commands.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "enter":
		if !m.searchEnabled {
			return m, nil
		}
		return m, m.do(m.actions.Submit)

	case "esc":
		if m.popup == "" {
			return m, nil
		}
		return m, m.do(m.actions.DismissPopup)

	case "ctrl+r":
		if m.locateBusy {
			return m, nil
		}
		return m, m.do(m.actions.RefreshLocation)

	case "ctrl+g":
		return m, m.setPermission(geo.PermissionGranted)

	case "ctrl+d":
		return m, m.setPermission(geo.PermissionDenied)

	case "backspace":
		if r := []rune(m.input); len(r) > 0 {
			m.setInput(string(r[:len(r)-1]))
		}
		return m, nil

	case "ctrl+u":
		m.setInput("")
		return m, nil
	}

	switch msg.Type {
	case tea.KeyRunes:
		m.setInput(m.input + string(msg.Runes))
	case tea.KeySpace:
		m.setInput(m.input + " ")
	}
	return m, nil
}

func (m *Model) setInput(s string) {
	m.input = s
	m.bridge.setInput(s)
}

func (m Model) do(action func()) tea.Cmd {
	return func() tea.Msg {
		action()
		return nil
	}
}

func (m Model) setPermission(p geo.Permission) tea.Cmd {
	if m.perm == nil {
		return nil
	}
	perm := m.perm
	return func() tea.Msg {
		perm.SetPermission(p)
		return nil
	}
}

func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(colorPurple).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPurple).
		Padding(1, 2)

	inputBorder := colorCyan
	if !m.searchEnabled {
		inputBorder = colorComment
	}
	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(inputBorder).
		Padding(0, 1).
		Width(40)

	labelStyle := lipgloss.NewStyle().Foreground(colorForeground)
	dimStyle := lipgloss.NewStyle().Foreground(colorComment)
	errorStyle := lipgloss.NewStyle().Foreground(colorRed)
	noticeStyle := lipgloss.NewStyle().Foreground(colorYellow)
	repromptStyle := lipgloss.NewStyle().Foreground(colorOrange)
	popupStyle := lipgloss.NewStyle().
		Foreground(colorBackground).
		Background(colorOrange).
		Padding(0, 2)

	var b strings.Builder

	b.WriteString(titleStyle.Render("WEATHER"))
	b.WriteString("\n\n")

	b.WriteString(inputStyle.Render(m.input + "_"))
	b.WriteString("\n")
	if m.popup != "" {
		b.WriteString(popupStyle.Render(m.popup))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.screen.State {
	case ui.StateLoading:
		b.WriteString(dimStyle.Render(m.screen.Message))
		b.WriteString("\n")
	case ui.StateError:
		b.WriteString(errorStyle.Render(m.screen.Message))
		b.WriteString("\n")
	case ui.StateSuccess:
		b.WriteString(renderWeather(m.screen.Fields, labelStyle))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	if m.reprompt != "" {
		b.WriteString("\n")
		b.WriteString(repromptStyle.Render(m.reprompt))
		b.WriteString("\n")
	}

	locate := "ctrl+r: my location"
	if m.locateBusy {
		locate = "locating..."
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter: search • " + locate + " • ctrl+g/ctrl+d: allow/deny location • esc: close • ctrl+c: quit"))

	return boxStyle.Render(b.String())
}

func renderWeather(f ui.Fields, label lipgloss.Style) string {
	cityStyle := lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	tempStyle := lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	iconStyle := lipgloss.NewStyle().Foreground(colorComment).Background(colorSelection)

	rows := []string{
		cityStyle.Render(f.City) + "  " + tempStyle.Render(f.Temperature),
		label.Render(f.Description),
		label.Render("Humidity: " + f.Humidity + "   Wind: " + f.Wind),
		iconStyle.Render(f.IconURL),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
