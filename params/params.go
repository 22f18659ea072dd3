package params

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const tagName = "param"

const (
	ChannelNumber    = "number"
	ChannelFrequency = "frequency"

	// NoAudio is the audio codec value that disables sound entirely.
	NoAudio = "none"

	// DriverV4L2 is the only driver that takes the norm as a numeric id.
	DriverV4L2 = "v4l2"
)

// Parameters is the flat set of options a recording or preview is
// built from. String fields are "present" when non-empty, so "0" is a
// set value. The `param` tag is the key used in the configuration file
// and for command-line flags.
type Parameters struct {
	ChannelType string `param:"channel_type"`
	Channel     string `param:"channel"`
	Frequency   string `param:"frequency"`
	// Duration limits the recording length, as hh:mm:ss.
	Duration string `param:"duration"`

	Driver   string `param:"driver"`
	Device   string `param:"device"`
	Norm     string `param:"norm"`
	Input    string `param:"input"`
	Chanlist string `param:"chanlist"`

	AudioCodec   string `param:"audiocodec"`
	VideoCodec   string `param:"videocodec"`
	AppendSuffix bool   `param:"append_suffix"`

	LameAudioBitrate string `param:"lame_audiobitrate"`
	LameExtraOpts    string `param:"lame_extra_opts"`

	LavcAudioCodec     string `param:"lavc_audiocodec"`
	LavcAudioBitrate   string `param:"lavc_audiobitrate"`
	LavcAudioExtraOpts string `param:"lavc_audio_extra_opts"`
	LavcVideoCodec     string `param:"lavc_videocodec"`
	LavcVideoBitrate   string `param:"lavc_videobitrate"`
	LavcVideoExtraOpts string `param:"lavc_video_extra_opts"`

	XvidBitrate     string `param:"xvid_bitrate"`
	XvidFixedQuant  string `param:"xvid_fixed_quant"`
	XvidMeQuality   string `param:"xvid_me_quality"`
	XvidCartoon     bool   `param:"xvid_cartoon"`
	XvidInterlacing bool   `param:"xvid_interlacing"`
	XvidExtraOpts   string `param:"xvid_extra_opts"`
	X264Bitrate     string `param:"x264_bitrate"`
	X264QpConstant  string `param:"x264_qp_constant"`
	X264ExtraOpts   string `param:"x264_extra_opts"`

	// OutputFile is a filename template, see package filename.
	OutputFile string `param:"outputfile"`

	TvWidth     string `param:"tvwidth"`
	TvHeight    string `param:"tvheight"`
	AudioRate   string `param:"audiorate"`
	AlsaAudio   bool   `param:"alsa_audio"`
	ADevice     string `param:"adevice"`
	ExtraTvParm string `param:"extratvparms"`
	Brightness  string `param:"brightness"`
	Contrast    string `param:"contrast"`
	Hue         string `param:"hue"`
	Saturation  string `param:"saturation"`

	ScaleWidth         string `param:"scalewidth"`
	ScaleHeight        string `param:"scaleheight"`
	Ofps               string `param:"ofps"`
	NoSkip             bool   `param:"noskip"`
	Quiet              bool   `param:"quiet"`
	ExtraFilters       string `param:"extrafilters"`
	ExtraMencoderParms string `param:"extramencoderparms"`

	PreCommand         string `param:"pre_command"`
	PostCommand        string `param:"post_command"`
	PlayWhileRecording bool   `param:"play_while_recording"`
	SetEnvVars         bool   `param:"setenvvars"`
	// EnvVars holds one KEY=VALUE pair per line.
	EnvVars string `param:"envvars"`
}

// Default returns the parameters used when nothing has been
// configured yet.
func Default() *Parameters {
	return &Parameters{
		ChannelType: ChannelNumber,
		Channel:     "1",
		Frequency:   "55.25",
		Driver:      DriverV4L2,
		Device:      "/dev/video0",
		Norm:        "0",
		Input:       "0",
		Chanlist:    "us-bcast",
		AudioCodec:  "mp3lame",
		VideoCodec:  "lavc",
		OutputFile:  "tv_{%Y-%m-%d_%H%M%S}_{channel}.avi",
		Quiet:       true,
	}
}

// ChannelText is the channel number or frequency, whichever the
// channel type selects. Frequencies use a dot as decimal separator.
func (p *Parameters) ChannelText() string {
	if p.ChannelType == ChannelFrequency {
		return strings.ReplaceAll(p.Frequency, ",", ".")
	}
	return p.Channel
}

// Env parses EnvVars. Lines without '=' are ignored; keys and values
// are trimmed.
func (p *Parameters) Env() map[string]string {
	result := make(map[string]string)
	for _, line := range strings.Split(p.EnvVars, "\n") {
		key, val, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		result[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return result
}

// Keys lists every parameter key in declaration order.
func Keys() []string {
	t := reflect.TypeOf(Parameters{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get(tagName)
		if tag == "" || tag == "-" {
			continue
		}
		keys = append(keys, tag)
	}
	return keys
}

// IsBool reports whether key names a boolean parameter.
func IsBool(key string) bool {
	t := reflect.TypeOf(Parameters{})
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get(tagName) == key {
			return t.Field(i).Type.Kind() == reflect.Bool
		}
	}
	return false
}

// FormatBool renders a boolean the way the configuration file stores it.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// Flatten returns every parameter as a string, booleans as
// "True"/"False".
func (p *Parameters) Flatten() map[string]string {
	result := make(map[string]string)
	v := reflect.Indirect(reflect.ValueOf(p))
	for i := 0; i < v.NumField(); i++ {
		tag := v.Type().Field(i).Tag.Get(tagName)
		if tag == "" || tag == "-" {
			continue
		}
		field := v.Field(i)
		switch field.Kind() {
		case reflect.Bool:
			result[tag] = FormatBool(field.Bool())
		default:
			result[tag] = field.String()
		}
	}
	return result
}

// Apply overwrites the fields named in values. Unknown keys are
// returned so the caller can report them. A boolean that does not
// parse is stored as false.
func (p *Parameters) Apply(values map[string]string) []string {
	unknown := make([]string, 0)
	v := reflect.Indirect(reflect.ValueOf(p))
	fields := make(map[string]int)
	for i := 0; i < v.NumField(); i++ {
		fields[v.Type().Field(i).Tag.Get(tagName)] = i
	}
	for key, val := range values {
		i, ok := fields[key]
		if !ok || key == "" || key == "-" {
			unknown = append(unknown, key)
			continue
		}
		field := v.Field(i)
		switch field.Kind() {
		case reflect.Bool:
			b, err := strconv.ParseBool(strings.TrimSpace(val))
			field.SetBool(err == nil && b)
		default:
			field.SetString(val)
		}
	}
	if norm, ok := values["norm"]; ok {
		p.Norm = normalizeNorm(p.Driver, norm)
	}
	return unknown
}

// FromMap builds parameters from defaults overlaid with values.
func FromMap(values map[string]string) *Parameters {
	p := Default()
	p.Apply(values)
	return p
}

// normalizeNorm maps a stored norm name to its numeric id when the
// driver needs one. Anything that is neither a number nor a known name
// falls back to id 0.
func normalizeNorm(driver, norm string) string {
	if driver != DriverV4L2 {
		return norm
	}
	if _, err := strconv.Atoi(norm); err == nil {
		return norm
	}
	if id, ok := NormID(norm); ok {
		return strconv.Itoa(id)
	}
	return "0"
}

// Validate checks that the fields the command builders dereference are
// present.
func (p *Parameters) Validate() error {
	required := map[string]string{
		"driver":   p.Driver,
		"device":   p.Device,
		"norm":     p.Norm,
		"input":    p.Input,
		"chanlist": p.Chanlist,
	}
	if p.ChannelType == ChannelFrequency {
		required["frequency"] = p.Frequency
	} else {
		required["channel"] = p.Channel
	}
	for _, key := range Keys() {
		if val, ok := required[key]; ok && val == "" {
			return fmt.Errorf("parameter %q must be set", key)
		}
	}
	return nil
}
