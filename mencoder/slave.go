package mencoder

import (
	"fmt"

	"github.com/achernya/tvcapture/params"
)

// Slave-mode verbs understood by mplayer while showing tv://.
const (
	SetChannel    = "tv_set_channel"
	SetFreq       = "tv_set_freq"
	SetBrightness = "tv_set_brightness"
	SetContrast   = "tv_set_contrast"
	SetHue        = "tv_set_hue"
	SetSaturation = "tv_set_saturation"
	SetNorm       = "tv_set_norm"
)

// Controller is anything that accepts slave commands, one per line.
type Controller interface {
	Send(line string) error
}

// SlaveCommand renders one control line. Norms are sent by name; an
// id outside the norm table is sent as NTSC.
func SlaveCommand(verb, arg string) string {
	if verb == SetNorm {
		arg = params.NormName(arg)
	}
	return verb + " " + arg
}

// Tune sends one control command.
func Tune(c Controller, verb, arg string) error {
	if err := c.Send(SlaveCommand(verb, arg)); err != nil {
		return fmt.Errorf("communication with mplayer failed: %w", err)
	}
	return nil
}
