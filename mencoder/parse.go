package mencoder

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// `mencoder -oac help` and `mencoder -ovc help` print a banner followed
// by
//
//	Available codecs:
//	   copy     - frame copy, without re-encoding
//	   mp3lame  - cbr/abr/vbr MP3 using libmp3lame
//
// An mplayer tv:// session prints the capabilities of the device,
// including
//
//	supported norms: 0 = NTSC; 1 = NTSC-M; 2 = NTSC-M-JP;
//	inputs: 0 = Television; 1 = Composite1; 2 = S-Video;

const (
	codecsHeader = "Available codecs:"
	normsPrefix  = "supported norms:"
	inputsPrefix = "inputs:"
)

var idName = regexp.MustCompile(`(\d+)\s*=\s*([^;]+);`)

// CodecList is what an encoder reported it supports.
type CodecList struct {
	// Names are the codec names, in the order listed.
	Names []string
	// Text is the listing starting at the header line, or the whole
	// output if no header was found.
	Text string
}

// ParseCodecs reads the help output of -oac or -ovc.
func ParseCodecs(r io.Reader) (*CodecList, error) {
	scanner := bufio.NewScanner(r)
	result := &CodecList{Names: make([]string, 0)}
	all := make([]string, 0)
	listing := make([]string, 0)
	seen := false
	for scanner.Scan() {
		line := scanner.Text()
		all = append(all, line)
		if !seen {
			if strings.Contains(line, codecsHeader) {
				seen = true
				listing = append(listing, line)
			}
			continue
		}
		listing = append(listing, line)
		name, _, found := strings.Cut(line, " - ")
		name = strings.TrimSpace(name)
		if !found || name == "" || strings.Contains(name, " ") {
			continue
		}
		result.Names = append(result.Names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if seen {
		result.Text = strings.Join(listing, "\n")
	} else {
		result.Text = strings.Join(all, "\n")
	}
	return result, nil
}

// Choice is a numbered entry the device offers, such as a norm or an
// input.
type Choice struct {
	ID   int
	Name string
}

// DeviceInfo is what the capture device reported about itself.
type DeviceInfo struct {
	Norms  []Choice
	Inputs []Choice
}

func parseChoices(s string) []Choice {
	result := make([]Choice, 0)
	for _, m := range idName.FindAllStringSubmatch(s, -1) {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		result = append(result, Choice{ID: id, Name: strings.TrimSpace(m[2])})
	}
	return result
}

// ParseDeviceInfo scans mplayer output for the norm and input lists.
// Missing lists are left empty.
func ParseDeviceInfo(r io.Reader) (*DeviceInfo, error) {
	scanner := bufio.NewScanner(r)
	result := &DeviceInfo{
		Norms:  make([]Choice, 0),
		Inputs: make([]Choice, 0),
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, normsPrefix):
			result.Norms = parseChoices(strings.TrimPrefix(line, normsPrefix))
		case strings.HasPrefix(line, inputsPrefix):
			result.Inputs = parseChoices(strings.TrimPrefix(line, inputsPrefix))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
