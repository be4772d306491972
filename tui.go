package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hotkeyd/hotkey"
)

// TUI message types
type BindingsMsg struct{ Rows []BindingRow }
type ActivatedMsg struct{ Name, Combo, Gesture string }
type ReleasedMsg struct{ Name, Combo string }
type RegistrationMsg struct {
	Name, Combo string
	Registered  bool
}
type ErrorMsg struct {
	Name string
	Err  error
}
type BackendLineMsg struct{ Text string }
type tickMsg time.Time

const (
	logLines = 200
	flashFor = 400 * time.Millisecond
)

type logEntry struct {
	at   time.Time
	text string
	err  bool
}

type tuiModel struct {
	frame         int
	width, height int
	rows          []BindingRow
	held          map[string]bool      // pressed and not yet released
	flash         map[string]time.Time // last activation per binding
	entries       []logEntry
	backendLine   string
	activations   int
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	sharedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusStyles = map[hotkey.Status]lipgloss.Style{
		hotkey.StatusRegistered: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		hotkey.StatusResolved:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		hotkey.StatusUnresolved: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

func NewTUIProgram() *tea.Program {
	m := tuiModel{
		held:  make(map[string]bool),
		flash: make(map[string]time.Time),
	}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func tuiTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case BindingsMsg:
		m.rows = msg.Rows

	case ActivatedMsg:
		m.activations++
		if msg.Gesture == "press" {
			m.held[msg.Name] = true
		}
		m.flash[msg.Name] = time.Now()
		m.addLog(fmt.Sprintf("%s  %s  %s", msg.Name, msg.Combo, msg.Gesture), false)

	case ReleasedMsg:
		delete(m.held, msg.Name)

	case RegistrationMsg:
		state := "unregistered"
		if msg.Registered {
			state = "registered"
		}
		for i := range m.rows {
			if m.rows[i].Name == msg.Name {
				m.rows[i].Status = hotkey.StatusResolved
				if msg.Registered {
					m.rows[i].Status = hotkey.StatusRegistered
				}
			}
		}
		m.addLog(fmt.Sprintf("%s  %s  %s", msg.Name, msg.Combo, state), false)

	case ErrorMsg:
		m.addLog(fmt.Sprintf("%s: %v", msg.Name, msg.Err), true)

	case BackendLineMsg:
		m.backendLine = msg.Text
	}
	return m, nil
}

func (m *tuiModel) addLog(text string, isErr bool) {
	m.entries = append(m.entries, logEntry{at: time.Now(), text: text, err: isErr})
	if len(m.entries) > logLines {
		m.entries = m.entries[len(m.entries)-logLines:]
	}
}

func (m tuiModel) active(name string) bool {
	if m.held[name] {
		return true
	}
	return time.Since(m.flash[name]) < flashFor
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	const tableWidth = 56

	var left []string
	left = append(left, titleStyle.Render("Bindings"), "")
	if len(m.rows) == 0 {
		left = append(left, dimStyle.Render("No bindings configured"))
	}
	for _, r := range m.rows {
		marker := "  "
		name := fmt.Sprintf("%-16s", truncate(r.Name, 16))
		if m.active(r.Name) {
			marker = activeStyle.Render("● ")
			name = activeStyle.Render(name)
		}
		line := fmt.Sprintf("%s%s %-20s ", marker, name, r.Combo)
		line += statusStyles[r.Status].Render(r.Status.String())
		if r.Shared {
			line += sharedStyle.Render(" shared")
		}
		left = append(left, line)
		for _, l := range wrapText(r.Action, tableWidth-4) {
			left = append(left, dimStyle.Render("    "+l))
		}
	}

	left = append(left, "")
	if m.backendLine != "" {
		left = append(left, dimStyle.Render(m.backendLine))
	}
	left = append(left, dimStyle.Render(fmt.Sprintf("%d activations", m.activations)))
	left = append(left, "")
	left = append(left, helpStyle.Render("q to quit · edit the bindings file to rebind"))
	left = append(left, helpStyle.Render("hotkeyd "+version))

	logWidth := m.width - tableWidth - 1
	if logWidth < 20 {
		logWidth = 20
	}
	wrapWidth := logWidth - 2
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	var right []string
	right = append(right, titleStyle.Render("Activity"), "")
	if len(m.entries) == 0 {
		right = append(right, dimStyle.Render("Waiting for a shortcut..."))
	}
	for _, e := range m.entries {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
		if e.err {
			style = errStyle
		}
		for i, l := range wrapText(e.text, wrapWidth-9) {
			prefix := "         "
			if i == 0 {
				prefix = dimStyle.Render(e.at.Format("15:04:05")) + " "
			}
			right = append(right, prefix+style.Render(l))
		}
	}
	// Keep the newest lines on screen.
	if over := len(right) - m.height; over > 0 {
		right = append(right[:2:2], right[2+over:]...)
	}

	leftPanel := lipgloss.NewStyle().
		Width(tableWidth - 1).
		Height(m.height).
		Render(strings.Join(left, "\n"))

	rightPanel := lipgloss.NewStyle().
		Width(logWidth).
		Height(m.height).
		PaddingLeft(1).
		Render(strings.Join(right, "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		// Find last space within width
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}

// tuiSink forwards binding events to the running program.
type tuiSink struct{}

func (tuiSink) BindingsChanged(rows []BindingRow) { tuiSend(BindingsMsg{Rows: rows}) }

func (tuiSink) Activated(name, combo, gesture string) {
	tuiSend(ActivatedMsg{Name: name, Combo: combo, Gesture: gesture})
}

func (tuiSink) Released(name, combo string) { tuiSend(ReleasedMsg{Name: name, Combo: combo}) }

func (tuiSink) RegistrationChanged(name, combo string, registered bool) {
	tuiSend(RegistrationMsg{Name: name, Combo: combo, Registered: registered})
}

func (tuiSink) Error(name string, err error) { tuiSend(ErrorMsg{Name: name, Err: err}) }
