// Package logging sets up the global zerolog logger: a console writer
// on stderr plus a JSON log file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const FileName = "tvcapture.log"

var (
	logFile *os.File
	console *switchWriter
)

// switchWriter discards writes while muted.
type switchWriter struct {
	w     io.Writer
	muted atomic.Bool
}

func (s *switchWriter) Write(p []byte) (int, error) {
	if s.muted.Load() {
		return len(p), nil
	}
	return s.w.Write(p)
}

// Quiet silences the console until the returned function is called.
// The log file keeps receiving everything. Full-screen interfaces use
// it to keep log lines off the screen.
func Quiet() (restore func()) {
	c := console
	if c == nil {
		return func() {}
	}
	c.muted.Store(true)
	return func() { c.muted.Store(false) }
}

// Init points the global logger at stderr and, if dir is not empty,
// at dir/tvcapture.log. A log file that cannot be opened is reported
// and skipped.
func Init(dir string, verbose bool) error {
	return InitWithWriter(dir, verbose, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
}

// InitWithWriter is Init with the console replaced by w.
func InitWithWriter(dir string, verbose bool, w io.Writer) error {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	console = &switchWriter{w: w}
	log.Logger = zerolog.New(console).With().Timestamp().Logger()
	if dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("logging to the console only")
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("logging to the console only")
		return err
	}
	Close()
	logFile = f
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, f)).With().Timestamp().Logger()
	return nil
}

// Close closes the log file, if one is open.
func Close() {
	if logFile == nil {
		return
	}
	logFile.Close() //nolint:errcheck
	logFile = nil
}
