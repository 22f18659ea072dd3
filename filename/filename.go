// Package filename expands output filename templates.
//
// A template is literal text plus brace-delimited groups. Inside a
// group the codes %Y, %y, %m, %d, %H, %M, %S and %channel are
// replaced, and the braces are dropped:
//
//	tv_{%Y-%m-%d}_{%channel}.avi -> tv_2024-03-07_5.avi
//
// A group holding nothing but a bare code ({Y}, {m}, {channel}, ...)
// is replaced by that value. The legacy {channel} token is substituted
// before anything else.
package filename

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const channelToken = "{channel}"

var group = regexp.MustCompile(`{[^}]*?}`)

// Exists reports whether a path is taken. It is swapped out in tests.
type Exists func(path string) bool

// FileExists is the Exists used by Make.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func codes(now time.Time, channel string) map[string]string {
	year := fmt.Sprintf("%04d", now.Year())
	return map[string]string{
		"Y":       year,
		"y":       year[len(year)-2:],
		"m":       fmt.Sprintf("%02d", int(now.Month())),
		"d":       fmt.Sprintf("%02d", now.Day()),
		"H":       fmt.Sprintf("%02d", now.Hour()),
		"M":       fmt.Sprintf("%02d", now.Minute()),
		"S":       fmt.Sprintf("%02d", now.Second()),
		"channel": channel,
	}
}

// Expand resolves the template against now and the channel text. It
// never touches the filesystem.
func Expand(template, channel string, now time.Time) string {
	values := codes(now, channel)
	result := strings.ReplaceAll(template, channelToken, channel)
	return group.ReplaceAllStringFunc(result, func(g string) string {
		inner := g[1 : len(g)-1]
		if v, ok := values[inner]; ok {
			return v
		}
		// %channel goes last so channel text is never re-expanded.
		for _, code := range []string{"Y", "y", "m", "d", "H", "M", "S", "channel"} {
			inner = strings.ReplaceAll(inner, "%"+code, values[code])
		}
		return inner
	})
}

// Suffixed returns path with _n inserted before its extension.
func Suffixed(path string, n int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(path, ext), n, ext)
}

// Disambiguate returns the first of path, path_1, path_2, ... for which
// exists is false. The answer is only as good as the moment it was
// computed; nothing stops another process creating the file after.
func Disambiguate(path string, exists Exists) string {
	result := path
	for n := 1; exists(result); n++ {
		result = Suffixed(path, n)
	}
	return result
}

// MakeWith expands the template and, if appendSuffix is set,
// disambiguates it using exists.
func MakeWith(template, channel string, now time.Time, appendSuffix bool, exists Exists) string {
	result := Expand(template, channel, now)
	if appendSuffix {
		result = Disambiguate(result, exists)
	}
	return result
}

// Make is MakeWith against the real filesystem.
func Make(template, channel string, now time.Time, appendSuffix bool) string {
	return MakeWith(template, channel, now, appendSuffix, FileExists)
}
