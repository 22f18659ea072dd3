package mencoder

import (
	"slices"
	"strings"

	"github.com/achernya/tvcapture/params"
)

const (
	tvURL = "tv://"
)

// Command is a fully assembled invocation of one of the tools.
type Command struct {
	Path string
	Args []string
}

// Argv returns the path followed by the arguments.
func (c *Command) Argv() []string {
	return slices.Concat([]string{c.Path}, c.Args)
}

// String joins the invocation with single spaces, for display. It does
// not quote anything.
func (c *Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// tvClause returns the `-tv` suboptions shared by recording and
// preview, in order. Each entry is a key=value pair or a bare flag.
func tvClause(p *params.Parameters) []string {
	clause := make([]string, 0, 16)
	if p.ChannelType == params.ChannelFrequency {
		clause = append(clause, "freq="+p.Frequency)
	} else {
		clause = append(clause, "channel="+p.Channel)
	}
	clause = append(clause, "driver="+p.Driver, "device="+p.Device)
	// v4l2 selects the norm by numeric id, every other driver by name.
	if p.Driver == params.DriverV4L2 {
		clause = append(clause, "normid="+p.Norm)
	} else {
		clause = append(clause, "norm="+p.Norm)
	}
	clause = append(clause, "input="+p.Input, "chanlist="+p.Chanlist)
	if p.TvWidth != "" && p.TvHeight != "" {
		clause = append(clause, "width="+p.TvWidth, "height="+p.TvHeight)
	}
	if p.AudioRate != "" {
		clause = append(clause, "audiorate="+p.AudioRate)
	}
	if p.AlsaAudio {
		clause = append(clause, "alsa")
		if p.ADevice != "" {
			clause = append(clause, "adevice="+p.ADevice)
		}
	}
	for _, kv := range [][2]string{
		{"brightness", p.Brightness},
		{"contrast", p.Contrast},
		{"hue", p.Hue},
		{"saturation", p.Saturation},
	} {
		if kv[1] != "" {
			clause = append(clause, kv[0]+"="+kv[1])
		}
	}
	if p.ExtraTvParm != "" {
		clause = append(clause, p.ExtraTvParm)
	}
	return clause
}

// filterChain returns the -vf value, or "" when no filter applies.
// The scale filter is only added when a height is set, even if the
// width is empty.
func filterChain(p *params.Parameters) string {
	if p.ExtraFilters == "" && (p.ScaleWidth == "" || p.ScaleHeight == "") {
		return ""
	}
	filters := make([]string, 0, 2)
	if p.ExtraFilters != "" {
		filters = append(filters, p.ExtraFilters)
	}
	if p.ScaleHeight != "" {
		filters = append(filters, "scale="+p.ScaleWidth+":"+p.ScaleHeight)
	}
	return strings.Join(filters, ",")
}

// option is one suboption of a codec family block. A flag-style
// option has an empty key and is emitted as its value alone.
type option struct {
	key   string
	value string
}

// familyBlock renders suboptions as key=value tokens joined by ':'.
// It returns "" when no suboption is set.
func familyBlock(opts ...option) string {
	tokens := make([]string, 0, len(opts))
	for _, o := range opts {
		if o.value == "" {
			continue
		}
		if o.key == "" {
			tokens = append(tokens, o.value)
		} else {
			tokens = append(tokens, o.key+"="+o.value)
		}
	}
	return strings.Join(tokens, ":")
}

func flag(set bool, name string) string {
	if set {
		return name
	}
	return ""
}

// codecBlocks returns the codec family option pairs in a fixed order:
// lavc, lame, xvid, x264.
func codecBlocks(p *params.Parameters) []string {
	args := make([]string, 0, 8)
	if lavc := familyBlock(
		option{"acodec", p.LavcAudioCodec},
		option{"abitrate", p.LavcAudioBitrate},
		option{"vcodec", p.LavcVideoCodec},
		option{"vbitrate", p.LavcVideoBitrate},
		option{"", p.LavcAudioExtraOpts},
		option{"", p.LavcVideoExtraOpts},
	); lavc != "" {
		args = append(args, "-lavcopts", lavc)
	}
	// lame takes its bitrate through the constant-bitrate preset.
	if lame := familyBlock(
		option{"cbr:br", p.LameAudioBitrate},
		option{"", p.LameExtraOpts},
	); lame != "" {
		args = append(args, "-lameopts", lame)
	}
	if xvid := familyBlock(
		option{"bitrate", p.XvidBitrate},
		option{"fixed_quant", p.XvidFixedQuant},
		option{"me_quality", p.XvidMeQuality},
		option{"", flag(p.XvidCartoon, "cartoon")},
		option{"", flag(p.XvidInterlacing, "interlacing")},
		option{"", p.XvidExtraOpts},
	); xvid != "" {
		args = append(args, "-xvidencopts", xvid)
	}
	if x264 := familyBlock(
		option{"bitrate", p.X264Bitrate},
		option{"qp_constant", p.X264QpConstant},
		option{"", p.X264ExtraOpts},
	); x264 != "" {
		args = append(args, "-x264encopts", x264)
	}
	return args
}

// SplitExtra splits a free-form parameter string on whitespace. Quotes
// have no meaning: an argument containing spaces cannot be expressed.
func SplitExtra(s string) []string {
	return strings.Fields(s)
}

// RecordArgs builds the mencoder arguments that record from the tuner
// into output. output must already be resolved from its template.
func RecordArgs(p *params.Parameters, output string) []string {
	args := []string{tvURL, "-tv", strings.Join(tvClause(p), ":")}
	if p.AudioCodec == params.NoAudio {
		args = append(args, "-nosound")
	} else {
		args = append(args, "-oac", p.AudioCodec)
	}
	args = append(args, "-ovc", p.VideoCodec)
	if p.Duration != "" {
		args = append(args, "-endpos", p.Duration)
	}
	if p.Ofps != "" {
		args = append(args, "-ofps", p.Ofps)
	}
	if p.NoSkip {
		args = append(args, "-noskip")
	}
	if p.Quiet {
		args = append(args, "-quiet")
	}
	if vf := filterChain(p); vf != "" {
		args = append(args, "-vf", vf)
	}
	args = append(args, codecBlocks(p)...)
	args = append(args, SplitExtra(p.ExtraMencoderParms)...)
	return append(args, "-o", output)
}

// PreviewArgs builds the mplayer arguments for a live preview in slave
// mode. extra is appended as given.
func PreviewArgs(p *params.Parameters, extra ...string) []string {
	args := []string{"-slave", tvURL, "-tv", strings.Join(tvClause(p), ":")}
	if p.Ofps != "" {
		args = append(args, "-fps", p.Ofps)
	}
	args = append(args, "-quiet")
	if vf := filterChain(p); vf != "" {
		args = append(args, "-vf", vf)
	}
	return append(args, extra...)
}

// PlayArgs builds the mplayer arguments that play back a file.
func PlayArgs(file string) []string {
	return []string{"-quiet", file}
}

// RecordCommand is RecordArgs bound to the mencoder binary.
func RecordCommand(mencoder string, p *params.Parameters, output string) *Command {
	return &Command{Path: mencoder, Args: RecordArgs(p, output)}
}

// PreviewCommand is PreviewArgs bound to the mplayer binary.
func PreviewCommand(mplayer string, p *params.Parameters, extra ...string) *Command {
	return &Command{Path: mplayer, Args: PreviewArgs(p, extra...)}
}

// PlayCommand is PlayArgs bound to the mplayer binary.
func PlayCommand(mplayer, file string) *Command {
	return &Command{Path: mplayer, Args: PlayArgs(file)}
}
