package params

import "strconv"

// Norms is the table of video standards, indexed by the id the v4l2
// driver expects.
var Norms = []string{
	"NTSC",
	"NTSC-M",
	"NTSC-M-JP",
	"NTSC-M-KR",
	"PAL",
	"PAL-BG",
	"PAL-H",
	"PAL-I",
	"PAL-DK",
	"PAL-M",
	"PAL-N",
	"PAL-Nc",
	"PAL-60",
	"SECAM",
	"SECAM-B",
	"SECAM-G",
	"SECAM-H",
	"SECAM-DK",
	"SECAM-L",
	"SECAM-Lc",
}

// NormID returns the id of a norm name.
func NormID(name string) (int, bool) {
	for id, n := range Norms {
		if n == name {
			return id, true
		}
	}
	return -1, false
}

// NormName resolves a norm given either as an id or as a name. Unknown
// ids become NTSC.
func NormName(norm string) string {
	id, err := strconv.Atoi(norm)
	if err != nil {
		return norm
	}
	if id < 0 || id >= len(Norms) {
		return Norms[0]
	}
	return Norms[id]
}
