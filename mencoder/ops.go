package mencoder

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/achernya/tvcapture/db"
	"github.com/achernya/tvcapture/params"
	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Codec kinds accepted by ListCodecs.
const (
	AudioCodecs = "audio"
	VideoCodecs = "video"
)

// Mencoder runs one-shot queries against the installed tools and keeps
// their output in the session log.
type Mencoder struct {
	db       *gorm.DB
	mencoder string
	mplayer  string
	session  *db.Session
}

func New(d *gorm.DB, mencoder, mplayer string) *Mencoder {
	return &Mencoder{
		db:       d,
		mencoder: mencoder,
		mplayer:  mplayer,
	}
}

func (m *Mencoder) sessionIfNeeded() error {
	if m.session != nil {
		return nil
	}
	now := time.Now()
	m.session = &db.Session{
		Token:     shortuuid.New(),
		Kind:      db.KindQuery,
		StartedAt: &now,
		State:     "running",
	}
	return m.db.Create(m.session).Error
}

// run executes c to completion and returns everything it printed. A
// non-zero exit is recorded but not returned: both tools exit badly
// when asked for help or when no frames are played.
func (m *Mencoder) run(ctx context.Context, role string, c *Command) ([]string, error) {
	if err := m.sessionIfNeeded(); err != nil {
		return nil, err
	}
	rawLog := db.CommandLog{Role: role}
	if err := m.db.Model(m.session).Association("RawLog").Append(&rawLog); err != nil {
		return nil, err
	}
	process, err := NewProcess(ctx, c, Options{Capture: true, Complete: true})
	if err != nil {
		return nil, err
	}
	if err := process.Start(); err != nil {
		rawLog.Outcome = err.Error()
		m.db.Save(&rawLog) //nolint:errcheck
		return nil, err
	}
	rawLog.Args = datatypes.NewJSONSlice(process.Args)
	rawLog.Pid = process.Pid()
	if err := m.db.Save(&rawLog).Error; err != nil {
		return nil, err
	}

	lines := make([]string, 0)
	for line := range process.Lines() {
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		entries := make([]db.CommandLogEntry, len(lines))
		for i, line := range lines {
			entries[i] = db.CommandLogEntry{CommandLogID: rawLog.ID, Entry: line}
		}
		if err := m.db.CreateInBatches(entries, 100).Error; err != nil {
			log.Warn().Err(err).Str("role", role).Msg("could not store output")
		}
	}
	rawLog.Outcome = outcome(process.Err())
	if err := m.db.Save(&rawLog).Error; err != nil {
		return nil, err
	}
	log.Debug().Str("role", role).Str("outcome", rawLog.Outcome).Int("lines", len(lines)).Msg("query finished")
	return lines, nil
}

func outcome(err error) string {
	var exit *exec.ExitError
	switch {
	case err == nil:
		return "exited"
	case errors.As(err, &exit):
		return fmt.Sprintf("exited with status %d", exit.ExitCode())
	default:
		return err.Error()
	}
}

// Close marks the query session finished.
func (m *Mencoder) Close() error {
	if m.session == nil {
		return nil
	}
	now := time.Now()
	m.session.EndedAt = &now
	m.session.State = "exited"
	return m.db.Save(m.session).Error
}

// ListCodecs asks mencoder which audio or video codecs it can encode
// with.
func (m *Mencoder) ListCodecs(ctx context.Context, kind string) (*CodecList, error) {
	var flag string
	switch kind {
	case AudioCodecs:
		flag = "-oac"
	case VideoCodecs:
		flag = "-ovc"
	default:
		return nil, fmt.Errorf("unknown codec kind %q", kind)
	}
	log.Info().Str("kind", kind).Msg("Listing codecs")
	lines, err := m.run(ctx, db.RoleCodecs, &Command{Path: m.mencoder, Args: []string{flag, "help"}})
	if err != nil {
		return nil, err
	}
	return ParseCodecs(strings.NewReader(strings.Join(lines, "\n")))
}

// ProbeDevice opens the capture device without showing anything and
// reports the norms and inputs the driver lists.
func (m *Mencoder) ProbeDevice(ctx context.Context, p *params.Parameters) (*DeviceInfo, error) {
	log.Info().Str("device", p.Device).Str("driver", p.Driver).Msg("Probing capture device")
	c := PreviewCommand(m.mplayer, p, "-vo", "null", "-ao", "null", "-frames", "0")
	lines, err := m.run(ctx, db.RoleProbe, c)
	if err != nil {
		return nil, err
	}
	return ParseDeviceInfo(strings.NewReader(strings.Join(lines, "\n")))
}
