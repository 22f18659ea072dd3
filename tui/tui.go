package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/achernya/tvcapture/capture"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	padding  = 2
	maxWidth = 160
	maxLines = 500
)

var (
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Render
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Render
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render
)

// logView is the scrolling pane of process output shared by both
// screens. Only the newest maxLines lines are kept.
type logView struct {
	lines    []string
	viewport viewport.Model
}

func newLogView() logView {
	vp := viewport.New(maxWidth-2, 20)
	vp.Style = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		PaddingLeft(1).
		MarginLeft(padding)
	return logView{viewport: vp}
}

func (l *logView) add(line string) {
	now := time.Now()
	l.lines = append(l.lines, now.Format(time.TimeOnly)+" | "+line)
	if len(l.lines) > maxLines {
		l.lines = l.lines[len(l.lines)-maxLines:]
	}
	l.viewport.SetContent(strings.Join(l.lines, "\n"))
	l.viewport.GotoBottom()
}

func (l *logView) resize(msg tea.WindowSizeMsg, reserved int) {
	width := msg.Width - padding*2 - 4
	if width > maxWidth {
		width = maxWidth
	}
	l.viewport.Width = width - padding
	if h := msg.Height - reserved; h > 3 {
		l.viewport.Height = h
	}
}

// event renders the controller events both screens log the same way.
// It reports false for anything else.
func (l *logView) event(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case capture.Output:
		l.add(msg.Line)
	case capture.StateChanged:
		l.add(fmt.Sprintf("[%s] %s (pid %d)", msg.Role, msg.State, msg.Pid))
	case capture.Problem:
		l.add(errStyle(fmt.Sprintf("[%s] %v", msg.Role, msg.Err)))
	default:
		return false
	}
	return true
}

func finalPause() tea.Cmd {
	return tea.Tick(time.Millisecond*750, func(_ time.Time) tea.Msg {
		return nil
	})
}

type refreshMsg time.Time

func refresh() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}
