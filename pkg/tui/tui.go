// Package tui is a small bubbletea front end: a scrolling log view with a
// single input line whose submissions are handed to a Backend.
package tui

import (
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// chrome is the number of rows used by the title, input and help lines.
const chrome = 3

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Backend receives what the user types.
type Backend interface {
	Title() string
	MaxLogLines() int
	// Submit handles one input line. It should return quickly; long work
	// belongs in a goroutine that reports through the log writer.
	Submit(line string) error
	Close() error
}

// Model is the bubbletea model.
type Model struct {
	backend Backend
	view    viewport.Model
	input   textinput.Model
	sized   bool
	editing bool

	mu    sync.Mutex
	lines []string

	// history holds submitted lines, oldest first. cursor indexes into it
	// while browsing with the arrow keys and equals len(history) otherwise.
	history []string
	cursor  int
}

// New creates a Model. Input starts disabled when placeholder is empty.
func New(backend Backend, placeholder string) *Model {
	in := textinput.New()
	in.CharLimit = 256
	in.Width = 50
	m := &Model{backend: backend, input: in}
	if placeholder != "" {
		m.enable(placeholder)
	}
	return m
}

func (m *Model) enable(placeholder string) {
	m.editing = true
	m.input.Placeholder = placeholder
	m.input.Focus()
}

func (m *Model) Init() tea.Cmd { return textinput.Blink }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.key(msg); handled {
			return m, cmd
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case LogMsg:
		m.AddLog(string(msg))
		m.redraw()
		return m, nil
	case EnableInputMsg:
		m.enable(msg.Placeholder)
		return m, nil
	}

	var cmds []tea.Cmd
	if m.sized {
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// key handles the keys the model owns. Others go to the viewport and input.
func (m *Model) key(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		_ = m.backend.Close()
		return tea.Quit, true
	case tea.KeyEnter:
		if m.editing {
			m.submit()
		}
		return nil, true
	case tea.KeyUp:
		if m.editing && len(m.history) > 0 {
			m.recall(-1)
			return nil, true
		}
	case tea.KeyDown:
		if m.editing && len(m.history) > 0 {
			m.recall(1)
			return nil, true
		}
	}
	return nil, false
}

func (m *Model) submit() {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return
	}
	m.AddLog("> " + line)
	if err := m.backend.Submit(line); err != nil {
		m.AddLog("error: " + err.Error())
	}
	if n := len(m.history); n == 0 || m.history[n-1] != line {
		m.history = append(m.history, line)
	}
	m.cursor = len(m.history)
	m.input.SetValue("")
	m.redraw()
}

// recall moves through the submitted lines. Moving past the newest entry
// clears the input.
func (m *Model) recall(step int) {
	m.cursor = max(0, min(len(m.history), m.cursor+step))
	if m.cursor == len(m.history) {
		m.input.SetValue("")
		return
	}
	m.input.SetValue(m.history[m.cursor])
	m.input.CursorEnd()
}

func (m *Model) resize(width, height int) {
	if !m.sized {
		m.view = viewport.New(width, height-chrome)
		m.view.SetContent(m.content())
		m.sized = true
	} else {
		m.view.Width = width
		m.view.Height = height - chrome
	}
	m.input.Width = width - 2
}

// redraw follows new lines only if the view was already at the bottom.
func (m *Model) redraw() {
	if !m.sized {
		return
	}
	follow := m.view.AtBottom()
	m.view.SetContent(m.content())
	if follow {
		m.view.GotoBottom()
	}
}

func (m *Model) View() string {
	if !m.sized {
		return "Initializing..."
	}
	help := "Ctrl+C/Esc: quit"
	if m.editing {
		help = "Enter: submit • ↑/↓: history • " + help
	}
	return strings.Join([]string{
		headerStyle.Render(m.backend.Title()),
		m.view.View(),
		promptStyle.Render("> " + m.input.View()),
		footerStyle.Render(help),
	}, "\n")
}

// AddLog appends a line, dropping the oldest beyond the backend's limit.
func (m *Model) AddLog(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
	if limit := m.backend.MaxLogLines(); limit > 0 && len(m.lines) > limit {
		m.lines = m.lines[len(m.lines)-limit:]
	}
}

func (m *Model) content() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.Join(m.lines, "\n")
}

// LogMsg appends one line to the log view.
type LogMsg string

// EnableInputMsg turns the input line on.
type EnableInputMsg struct {
	Placeholder string
}

// Writer forwards each written line to a running program as a LogMsg.
type Writer struct {
	program *tea.Program
}

func NewWriter(program *tea.Program) *Writer { return &Writer{program: program} }

func (w *Writer) Write(p []byte) (int, error) {
	for line := range strings.SplitSeq(strings.TrimRight(string(p), "\n"), "\n") {
		if line != "" {
			w.program.Send(LogMsg(line))
		}
	}
	return len(p), nil
}

// Start creates a program for backend and returns it with a writer for
// log output. Call Run on the program to start it.
func Start(backend Backend, placeholder string) (*tea.Program, io.Writer) {
	p := tea.NewProgram(New(backend, placeholder), tea.WithAltScreen())
	return p, NewWriter(p)
}

// EnableInput turns the input line on in a running program.
func EnableInput(program *tea.Program, placeholder string) {
	if program != nil {
		program.Send(EnableInputMsg{Placeholder: placeholder})
	}
}
