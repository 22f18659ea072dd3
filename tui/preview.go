package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/achernya/tvcapture/capture"
	"github.com/achernya/tvcapture/db"
	"github.com/achernya/tvcapture/mencoder"
	"github.com/achernya/tvcapture/params"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	pictureMin  = -100
	pictureMax  = 100
	pictureStep = 5
	freqStep    = 0.25
)

// Tuner is the part of capture.Controller the preview screen drives.
type Tuner interface {
	Tune(verb, arg string) error
	StopPreview() error
}

type previewModel struct {
	ctl    Tuner
	params *params.Parameters
	log    logView
	err    error
	done   bool
}

// NewPreviewTui lets the user retune a running preview from the
// keyboard. p holds the values the preview was started with and is
// updated as they change.
func NewPreviewTui(ctl Tuner, p *params.Parameters) tea.Model {
	return &previewModel{
		ctl:    ctl,
		params: p,
		log:    newLogView(),
	}
}

func (m *previewModel) Init() tea.Cmd {
	return nil
}

// step moves a numeric picture setting, clamped to the range mplayer
// accepts. An empty setting counts as 0.
func step(value string, delta int) string {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		n = 0
	}
	n += delta
	n = max(pictureMin, min(pictureMax, n))
	return strconv.Itoa(n)
}

// nextChannel moves the channel number or the frequency, whichever is
// in use. A channel that is not a number is left alone.
func nextChannel(p *params.Parameters, delta int) (verb, arg string, ok bool) {
	if p.ChannelType == params.ChannelFrequency {
		f, err := strconv.ParseFloat(p.ChannelText(), 64)
		if err != nil {
			return "", "", false
		}
		p.Frequency = strconv.FormatFloat(f+float64(delta)*freqStep, 'f', 2, 64)
		return mencoder.SetFreq, p.Frequency, true
	}
	n, err := strconv.Atoi(p.Channel)
	if err != nil || n+delta < 0 {
		return "", "", false
	}
	p.Channel = strconv.Itoa(n + delta)
	return mencoder.SetChannel, p.Channel, true
}

func nextNorm(p *params.Parameters) string {
	id, err := strconv.Atoi(p.Norm)
	if err != nil {
		id, _ = params.NormID(p.Norm)
	}
	if id < 0 || id >= len(params.Norms) {
		id = 0
	}
	id = (id + 1) % len(params.Norms)
	if p.Driver == params.DriverV4L2 {
		p.Norm = strconv.Itoa(id)
	} else {
		p.Norm = params.Norms[id]
	}
	return p.Norm
}

func (m *previewModel) tune(verb, arg string) {
	if err := m.ctl.Tune(verb, arg); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.log.add(mencoder.SlaveCommand(verb, arg))
}

func (m *previewModel) picture(verb string, field *string, delta int) {
	*field = step(*field, delta)
	m.tune(verb, *field)
}

func (m *previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(capture.StateChanged); ok && msg.Role == db.RolePreview && msg.State != capture.Running {
		m.log.event(msg)
		m.done = true
		return m, tea.Sequence(finalPause(), tea.Quit)
	}
	if m.log.event(msg) {
		return m, nil
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		p := m.params
		switch msg.String() {
		case "ctrl+c", "q":
			m.ctl.StopPreview() //nolint:errcheck
			return m, tea.Quit
		case "up", "+":
			if verb, arg, ok := nextChannel(p, 1); ok {
				m.tune(verb, arg)
			}
		case "down", "-":
			if verb, arg, ok := nextChannel(p, -1); ok {
				m.tune(verb, arg)
			}
		case "n":
			m.tune(mencoder.SetNorm, nextNorm(p))
		case "b":
			m.picture(mencoder.SetBrightness, &p.Brightness, -pictureStep)
		case "B":
			m.picture(mencoder.SetBrightness, &p.Brightness, pictureStep)
		case "c":
			m.picture(mencoder.SetContrast, &p.Contrast, -pictureStep)
		case "C":
			m.picture(mencoder.SetContrast, &p.Contrast, pictureStep)
		case "h":
			m.picture(mencoder.SetHue, &p.Hue, -pictureStep)
		case "H":
			m.picture(mencoder.SetHue, &p.Hue, pictureStep)
		case "s":
			m.picture(mencoder.SetSaturation, &p.Saturation, -pictureStep)
		case "S":
			m.picture(mencoder.SetSaturation, &p.Saturation, pictureStep)
		default:
			var cmd tea.Cmd
			m.log.viewport, cmd = m.log.viewport.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.log.resize(msg, 9)
		return m, nil

	default:
		return m, nil
	}
}

func (m *previewModel) detail() string {
	p := m.params
	channel := "channel " + p.Channel
	if p.ChannelType == params.ChannelFrequency {
		channel = p.ChannelText() + " MHz"
	}
	return fmt.Sprintf("%s %s • norm %s • brightness %s • contrast %s • hue %s • saturation %s",
		titleStyle("Preview"), channel, params.NormName(p.Norm),
		orZero(p.Brightness), orZero(p.Contrast), orZero(p.Hue), orZero(p.Saturation))
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func (m *previewModel) View() string {
	pad := strings.Repeat(" ", padding)
	header := "\n" + pad + m.detail() + "\n"
	if m.err != nil {
		header += pad + errStyle(m.err.Error()) + "\n"
	}
	return header + "\n" +
		m.log.viewport.View() + "\n" +
		pad + helpStyle(" ↑/↓: Channel • n: Norm • b/B c/C h/H s/S: Picture • q: Quit\n")
}
