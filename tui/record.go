package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/achernya/tvcapture/capture"
	"github.com/achernya/tvcapture/db"
	"github.com/achernya/tvcapture/mencoder"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/dustin/go-humanize"

	tea "github.com/charmbracelet/bubbletea"
)

// Recorder is the part of capture.Controller the recording screen
// drives.
type Recorder interface {
	Stop() error
	CancelSchedule() error
	Status() capture.Status
	RecorderStats() (*mencoder.Stats, error)
}

type recordModel struct {
	ctl     Recorder
	spinner spinner.Model
	log     logView

	status    capture.Status
	stats     *mencoder.Stats
	size      int64
	remaining time.Duration
	ended     *capture.RecordingEnded
	err       error
}

// NewRecordTui shows a scheduled or running recording until it ends.
// Quitting leaves the recording to the caller.
func NewRecordTui(ctl Recorder) tea.Model {
	return &recordModel{
		ctl:     ctl,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		log:     newLogView(),
		status:  ctl.Status(),
	}
}

func (m *recordModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, refresh())
}

func (m *recordModel) poll() {
	m.status = m.ctl.Status()
	m.stats = nil
	if m.status.Recorder != capture.Running {
		return
	}
	if stats, err := m.ctl.RecorderStats(); err == nil {
		m.stats = stats
	}
	if fi, err := os.Stat(m.status.File); err == nil {
		m.size = fi.Size()
	}
}

func (m *recordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p, ok := msg.(capture.Problem); ok && p.Role == db.RoleRecorder {
		// The scheduled start could not launch.
		m.log.event(p)
		return m, tea.Sequence(finalPause(), tea.Quit)
	}
	if m.log.event(msg) {
		return m, nil
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "s":
			if err := m.ctl.Stop(); err != nil {
				m.err = err
			}
			return m, nil
		case "c":
			if err := m.ctl.CancelSchedule(); err != nil {
				m.err = err
			}
			return m, nil
		default:
			var cmd tea.Cmd
			m.log.viewport, cmd = m.log.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.log.resize(msg, 8)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshMsg:
		m.poll()
		return m, refresh()

	case capture.Progress:
		m.status.Elapsed = msg.Elapsed
		return m, nil

	case capture.Countdown:
		m.remaining = msg.Remaining
		return m, nil

	case capture.ScheduleCancelled:
		m.log.add("scheduled recording cancelled")
		return m, tea.Sequence(finalPause(), tea.Quit)

	case capture.RecordingEnded:
		m.ended = &msg
		m.poll()
		m.log.add(fmt.Sprintf("recording %s after %s", msg.State, capture.FormatElapsed(msg.Elapsed)))
		return m, tea.Sequence(finalPause(), tea.Quit)

	default:
		return m, nil
	}
}

func (m *recordModel) detail() string {
	switch {
	case m.ended != nil:
		return fmt.Sprintf("%s %s (%s)", titleStyle("Finished"), m.ended.File, capture.FormatElapsed(m.ended.Elapsed))
	case m.status.Recorder == capture.Running:
		parts := []string{
			titleStyle("Recording"),
			m.status.File,
			capture.FormatElapsed(m.status.Elapsed),
			humanize.Bytes(uint64(m.size)),
		}
		if m.stats != nil {
			parts = append(parts, fmt.Sprintf("cpu %.0f%%", m.stats.CPUPercent), "rss "+humanize.Bytes(m.stats.RSS))
		}
		return strings.Join(parts, " • ")
	case !m.status.ScheduledAt.IsZero():
		return fmt.Sprintf("%s until %s, starts %s (%s)",
			titleStyle("Waiting"),
			m.status.ScheduledAt.Format(time.DateTime),
			humanize.Time(m.status.ScheduledAt),
			capture.FormatElapsed(m.remaining))
	}
	return "[ not recording ]"
}

func (m *recordModel) View() string {
	pad := strings.Repeat(" ", padding)
	header := "\n" + pad + m.spinner.View() + " " + m.detail() + "\n"
	if m.err != nil {
		header += pad + errStyle(m.err.Error()) + "\n"
	}
	return header + "\n" +
		m.log.viewport.View() + "\n" +
		pad + helpStyle(" ↑/↓: Navigate • s: Stop recording • c: Cancel schedule • q: Quit\n")
}
