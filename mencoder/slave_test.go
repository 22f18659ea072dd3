package mencoder

import (
	"errors"
	"testing"
)

type recordingController struct {
	lines []string
	err   error
}

func (r *recordingController) Send(line string) error {
	if r.err != nil {
		return r.err
	}
	r.lines = append(r.lines, line)
	return nil
}

func TestSlaveCommand(t *testing.T) {
	tests := map[string]struct {
		verb, arg string
		want      string
	}{
		"channel":      {SetChannel, "12", "tv_set_channel 12"},
		"frequency":    {SetFreq, "471.25", "tv_set_freq 471.25"},
		"brightness":   {SetBrightness, "-10", "tv_set_brightness -10"},
		"norm by id":   {SetNorm, "4", "tv_set_norm PAL"},
		"norm by name": {SetNorm, "SECAM", "tv_set_norm SECAM"},
		"unknown norm": {SetNorm, "42", "tv_set_norm NTSC"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := SlaveCommand(tt.verb, tt.arg); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTune(t *testing.T) {
	c := &recordingController{}
	if err := Tune(c, SetHue, "3"); err != nil {
		t.Fatal(err)
	}
	if len(c.lines) != 1 || c.lines[0] != "tv_set_hue 3" {
		t.Errorf("got %q", c.lines)
	}
	c.err = errors.New("broken pipe")
	if err := Tune(c, SetHue, "4"); err == nil {
		t.Error("write failure was not reported")
	}
}
