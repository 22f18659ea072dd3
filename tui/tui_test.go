package tui

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/achernya/tvcapture/capture"
	"github.com/achernya/tvcapture/db"
	"github.com/achernya/tvcapture/mencoder"
	"github.com/achernya/tvcapture/params"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeTuner struct {
	sent    []string
	stopped bool
	err     error
}

func (f *fakeTuner) Tune(verb, arg string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, mencoder.SlaveCommand(verb, arg))
	return nil
}

func (f *fakeTuner) StopPreview() error {
	f.stopped = true
	return nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPreviewKeys(t *testing.T) {
	tests := map[string]struct {
		setup func(p *params.Parameters)
		keys  []string
		want  []string
	}{
		"channel up and down": {
			keys: []string{"up", "up", "down"},
			want: []string{"tv_set_channel 2", "tv_set_channel 3", "tv_set_channel 2"},
		},
		"channel not below zero": {
			setup: func(p *params.Parameters) { p.Channel = "0" },
			keys:  []string{"down"},
			want:  nil,
		},
		"named channel": {
			setup: func(p *params.Parameters) { p.Channel = "E5" },
			keys:  []string{"up"},
			want:  nil,
		},
		"frequency": {
			setup: func(p *params.Parameters) {
				p.ChannelType = params.ChannelFrequency
				p.Frequency = "471,25"
			},
			keys: []string{"up"},
			want: []string{"tv_set_freq 471.50"},
		},
		"picture": {
			setup: func(p *params.Parameters) { p.Hue = "98" },
			keys:  []string{"B", "b", "H", "c"},
			want:  []string{"tv_set_brightness 5", "tv_set_brightness 0", "tv_set_hue 100", "tv_set_contrast -5"},
		},
		"norm cycles by name": {
			setup: func(p *params.Parameters) { p.Norm = "3" },
			keys:  []string{"n"},
			want:  []string{"tv_set_norm PAL"},
		},
		"negative norm id": {
			setup: func(p *params.Parameters) {
				p.Driver = "v4l"
				p.Norm = "-5"
			},
			keys: []string{"n", "n"},
			want: []string{"tv_set_norm NTSC-M", "tv_set_norm NTSC-M-JP"},
		},
		"norm id past the table": {
			setup: func(p *params.Parameters) { p.Norm = "99" },
			keys:  []string{"n"},
			want:  []string{"tv_set_norm NTSC-M"},
		},
		"last norm wraps": {
			setup: func(p *params.Parameters) { p.Norm = "SECAM-Lc" },
			keys:  []string{"n"},
			want:  []string{"tv_set_norm NTSC"},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := params.Default()
			if tt.setup != nil {
				tt.setup(p)
			}
			f := &fakeTuner{}
			m := NewPreviewTui(f, p)
			for _, k := range tt.keys {
				m, _ = m.Update(key(k))
			}
			if !reflect.DeepEqual(f.sent, tt.want) {
				t.Errorf("got %q, want %q", f.sent, tt.want)
			}
		})
	}
}

func TestPreviewTuneFailure(t *testing.T) {
	f := &fakeTuner{err: errors.New("communication with mplayer failed")}
	m := NewPreviewTui(f, params.Default())
	m, _ = m.Update(key("up"))
	if !strings.Contains(m.View(), "communication with mplayer failed") {
		t.Error("failure is not shown")
	}
}

func TestPreviewQuits(t *testing.T) {
	f := &fakeTuner{}
	m := NewPreviewTui(f, params.Default())
	_, cmd := m.Update(key("q"))
	if cmd == nil || !f.stopped {
		t.Error("q should stop the preview and quit")
	}

	m = NewPreviewTui(f, params.Default())
	_, cmd = m.Update(capture.StateChanged{Role: db.RolePreview, State: capture.Exited})
	if cmd == nil {
		t.Error("an exited preview should end the screen")
	}
}

func TestStep(t *testing.T) {
	tests := map[string]struct {
		value string
		delta int
		want  string
	}{
		"empty":   {"", 5, "5"},
		"clamped": {"-98", -5, "-100"},
		"garbage": {"abc", -5, "-5"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := step(tt.value, tt.delta); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

type fakeRecorder struct {
	status    capture.Status
	stopped   bool
	cancelled bool
}

func (f *fakeRecorder) Stop() error {
	f.stopped = true
	return nil
}

func (f *fakeRecorder) CancelSchedule() error {
	f.cancelled = true
	return capture.ErrNotRunning
}

func (f *fakeRecorder) Status() capture.Status {
	return f.status
}

func (f *fakeRecorder) RecorderStats() (*mencoder.Stats, error) {
	return &mencoder.Stats{CPUPercent: 12, RSS: 4 << 20}, nil
}

func TestRecordView(t *testing.T) {
	f := &fakeRecorder{status: capture.Status{Recorder: capture.Running, File: "capture.avi"}}
	m := NewRecordTui(f)
	m, _ = m.Update(capture.Progress{File: "capture.avi", Elapsed: 75 * time.Second})
	m, _ = m.Update(refreshMsg(time.Now()))
	f.status.Elapsed = 75 * time.Second
	view := m.View()
	for _, want := range []string{"capture.avi", "cpu 12%", "4.2 MB"} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q:\n%s", want, view)
		}
	}

	m, _ = m.Update(key("s"))
	if !f.stopped {
		t.Error("s did not stop the recording")
	}
	m, _ = m.Update(key("c"))
	if !f.cancelled || !strings.Contains(m.View(), capture.ErrNotRunning.Error()) {
		t.Error("cancel failure is not shown")
	}

	_, cmd := m.Update(capture.RecordingEnded{File: "capture.avi", State: capture.Killed, Elapsed: 75 * time.Second})
	if cmd == nil {
		t.Error("the screen should end with the recording")
	}
}

func TestRecordViewWaiting(t *testing.T) {
	at := time.Now().Add(time.Hour)
	f := &fakeRecorder{status: capture.Status{ScheduledAt: at}}
	m := NewRecordTui(f)
	m, _ = m.Update(capture.Countdown{At: at, Remaining: time.Hour})
	if view := m.View(); !strings.Contains(view, "Waiting") || !strings.Contains(view, "01:00:00") {
		t.Errorf("unexpected view:\n%s", view)
	}
}
