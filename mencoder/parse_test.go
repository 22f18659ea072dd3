package mencoder

import (
	"reflect"
	"strings"
	"testing"
)

const sampleOac = `MEncoder 1.5-12.2.0 (C) 2000-2022 MPlayer Team

Available codecs:
   copy     - frame copy, without re-encoding (useful for AC3)
   pcm      - uncompressed PCM audio
   mp3lame  - cbr/abr/vbr MP3 using libmp3lame
   lavc     - FFmpeg audio encoder (MP2, AC3, ...)
`

const sampleProbe = `MPlayer 1.5-12.2.0 (C) 2000-2022 MPlayer Team
Playing tv://.
TV file format detected.
Selected driver: v4l2
 name: Video 4 Linux 2 input
 author: Martin Olschewski <olschewski@zpr.uni-koeln.de>
 comment: first try, more to come ;-)
Selected device: BT878 video (Hauppauge (bt878))
 Tuner cap:
 Tuner rxs:
 Capabilities:  video capture  VBI capture device  tuner  read/write  streaming
 supported norms: 0 = NTSC; 1 = NTSC-M; 2 = NTSC-M-JP; 3 = NTSC-M-KR; 4 = PAL;
 inputs: 0 = Television; 1 = Composite1; 2 = S-Video;
 Current input: 0
 Current format: YUV420
`

func TestParseCodecs(t *testing.T) {
	got, err := ParseCodecs(strings.NewReader(sampleOac))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"copy", "pcm", "mp3lame", "lavc"}
	if !reflect.DeepEqual(got.Names, want) {
		t.Errorf("got %q, want %q", got.Names, want)
	}
	if !strings.HasPrefix(got.Text, "Available codecs:") {
		t.Errorf("text should start at the header: %q", got.Text)
	}
}

func TestParseCodecsWithoutHeader(t *testing.T) {
	in := "mencoder: command not found"
	got, err := ParseCodecs(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Names) != 0 {
		t.Errorf("got names %q from garbage", got.Names)
	}
	if got.Text != in {
		t.Errorf("got %q, want the whole output", got.Text)
	}
}

func TestParseDeviceInfo(t *testing.T) {
	got, err := ParseDeviceInfo(strings.NewReader(sampleProbe))
	if err != nil {
		t.Fatal(err)
	}
	want := &DeviceInfo{
		Norms: []Choice{
			{0, "NTSC"}, {1, "NTSC-M"}, {2, "NTSC-M-JP"}, {3, "NTSC-M-KR"}, {4, "PAL"},
		},
		Inputs: []Choice{
			{0, "Television"}, {1, "Composite1"}, {2, "S-Video"},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseDeviceInfoNoDevice(t *testing.T) {
	got, err := ParseDeviceInfo(strings.NewReader("Exiting... (End of file)\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Norms) != 0 || len(got.Inputs) != 0 {
		t.Errorf("expected empty lists, got %+v", got)
	}
}

func TestScanLines(t *testing.T) {
	tests := map[string]struct {
		data    string
		atEOF   bool
		advance int
		token   string
	}{
		"newline":        {data: "abc\ndef", advance: 4, token: "abc"},
		"carriage":       {data: "Pos: 1s\rPos: 2s", advance: 8, token: "Pos: 1s"},
		"need more":      {data: "abc"},
		"final fragment": {data: "abc", atEOF: true, advance: 3, token: "abc"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			advance, token, err := scanLines([]byte(tt.data), tt.atEOF)
			if err != nil {
				t.Fatal(err)
			}
			if advance != tt.advance || string(token) != tt.token {
				t.Errorf("got (%d, %q), want (%d, %q)", advance, token, tt.advance, tt.token)
			}
		})
	}
}
