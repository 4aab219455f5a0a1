package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type fakeBackend struct {
	submitted []string
	err       error
	closed    bool
	maxLines  int
}

func (b *fakeBackend) Title() string    { return "test" }
func (b *fakeBackend) MaxLogLines() int { return b.maxLines }

func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}

func (b *fakeBackend) Submit(line string) error {
	b.submitted = append(b.submitted, line)
	return b.err
}

func typeLine(m *Model, s string) {
	m.input.SetValue(s)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestSubmit(t *testing.T) {
	b := &fakeBackend{}
	ui := New(b, "address")
	ui.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	typeLine(ui, "  localhost:25565 ")
	assert.Equal(t, []string{"localhost:25565"}, b.submitted)
	assert.Equal(t, "", ui.input.Value())
	assert.Contains(t, ui.content(), "> localhost:25565")

	typeLine(ui, "   ")
	assert.Len(t, b.submitted, 1)
}

func TestSubmitError(t *testing.T) {
	b := &fakeBackend{err: errors.New("bad address")}
	ui := New(b, "address")
	typeLine(ui, "x")
	assert.Contains(t, ui.content(), "error: bad address")
}

func TestInputDisabled(t *testing.T) {
	b := &fakeBackend{}
	ui := New(b, "")
	typeLine(ui, "ignored")
	assert.Empty(t, b.submitted)

	ui.Update(EnableInputMsg{Placeholder: "now"})
	typeLine(ui, "accepted")
	assert.Equal(t, []string{"accepted"}, b.submitted)
}

func TestLogTrim(t *testing.T) {
	ui := New(&fakeBackend{maxLines: 2}, "")
	for _, l := range []string{"a", "b", "c"} {
		ui.Update(LogMsg(l))
	}
	assert.Equal(t, "b\nc", ui.content())
}

func TestQuitClosesBackend(t *testing.T) {
	b := &fakeBackend{}
	ui := New(b, "")
	_, cmd := ui.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, b.closed)
	assert.NotNil(t, cmd)
}

func TestView(t *testing.T) {
	ui := New(&fakeBackend{}, "address")
	assert.Equal(t, "Initializing...", ui.View())
	ui.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Contains(t, ui.View(), "test")
}

func TestHistory(t *testing.T) {
	ui := New(&fakeBackend{}, "address")
	typeLine(ui, "a.example.com")
	typeLine(ui, "b.example.com")
	typeLine(ui, "b.example.com")
	assert.Equal(t, []string{"a.example.com", "b.example.com"}, ui.history)

	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	ui.Update(up)
	assert.Equal(t, "b.example.com", ui.input.Value())
	ui.Update(up)
	ui.Update(up)
	assert.Equal(t, "a.example.com", ui.input.Value())
	ui.Update(down)
	assert.Equal(t, "b.example.com", ui.input.Value())
	ui.Update(down)
	assert.Equal(t, "", ui.input.Value())
}
