package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
)

func TestInitWritesBoth(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	if err := InitWithWriter(dir, false, &console); err != nil {
		t.Fatal(err)
	}
	defer Close()
	log.Info().Str("channel", "5").Msg("Launching")
	log.Debug().Msg("hidden")

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	for name, out := range map[string]string{"console": console.String(), "file": string(data)} {
		if !strings.Contains(out, `"channel":"5"`) {
			t.Errorf("%s is missing the entry: %q", name, out)
		}
		if strings.Contains(out, "hidden") {
			t.Errorf("%s has a debug entry at info level", name)
		}
	}
}

func TestInitVerbose(t *testing.T) {
	var console bytes.Buffer
	if err := InitWithWriter("", true, &console); err != nil {
		t.Fatal(err)
	}
	log.Debug().Msg("shown")
	if !strings.Contains(console.String(), "shown") {
		t.Errorf("debug entry missing: %q", console.String())
	}
}

func TestInitBadDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	var console bytes.Buffer
	if err := InitWithWriter(filepath.Join(f, "logs"), false, &console); err == nil {
		t.Error("expected an error for a directory under a file")
	}
	log.Info().Msg("still here")
	if !strings.Contains(console.String(), "still here") {
		t.Error("console logging stopped after a bad directory")
	}
}

func TestQuiet(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	if err := InitWithWriter(dir, false, &console); err != nil {
		t.Fatal(err)
	}
	defer Close()
	restore := Quiet()
	log.Info().Msg("while the screen is up")
	restore()
	log.Info().Msg("after the screen")

	if strings.Contains(console.String(), "while the screen is up") {
		t.Errorf("console written while quiet: %q", console.String())
	}
	if !strings.Contains(console.String(), "after the screen") {
		t.Errorf("console not restored: %q", console.String())
	}
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"while the screen is up", "after the screen"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file is missing %q", want)
		}
	}
}
