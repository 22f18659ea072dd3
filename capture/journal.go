package capture

import (
	"time"

	"github.com/achernya/tvcapture/db"
	"github.com/achernya/tvcapture/params"
	"github.com/achernya/tvcapture/profileid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// journal records sessions and their commands. With no database every
// method is a no-op; history is never allowed to stop a recording.
type journal struct {
	db *gorm.DB
}

func (j journal) open(kind string, p *params.Parameters) *db.Session {
	fp, err := profileid.Fingerprint(profileid.FromMap(p.Flatten()))
	if err != nil {
		log.Warn().Err(err).Msg("could not fingerprint parameters")
	}
	session := &db.Session{
		Token:       shortuuid.New(),
		Kind:        kind,
		Fingerprint: fp,
		Channel:     p.ChannelText(),
	}
	if j.db == nil {
		return session
	}
	if err := j.db.Create(session).Error; err != nil {
		log.Error().Err(err).Msg("could not record session")
	}
	return session
}

func (j journal) save(session *db.Session) {
	if j.db == nil || session == nil || session.ID == 0 {
		return
	}
	if err := j.db.Save(session).Error; err != nil {
		log.Error().Err(err).Str("session", session.Token).Msg("could not update session")
	}
}

// end stamps the session finished in the given state.
func (j journal) end(session *db.Session, state string, now time.Time) {
	if session == nil {
		return
	}
	session.EndedAt = &now
	session.State = state
	j.save(session)
}

func (j journal) command(session *db.Session, role string, argv []string) *db.CommandLog {
	entry := &db.CommandLog{
		Role: role,
		Args: datatypes.NewJSONSlice(argv),
	}
	if j.db == nil || session == nil || session.ID == 0 {
		return entry
	}
	if err := j.db.Model(session).Association("RawLog").Append(entry); err != nil {
		log.Error().Err(err).Str("role", role).Msg("could not record command")
	}
	return entry
}

func (j journal) started(entry *db.CommandLog, pid int) {
	entry.Pid = pid
	j.saveCommand(entry)
}

func (j journal) finish(entry *db.CommandLog, outcome string) {
	entry.Outcome = outcome
	j.saveCommand(entry)
}

func (j journal) saveCommand(entry *db.CommandLog) {
	if j.db == nil || entry.ID == 0 {
		return
	}
	if err := j.db.Save(entry).Error; err != nil {
		log.Error().Err(err).Str("role", entry.Role).Msg("could not update command")
	}
}

// line stores one output line. It only touches the log by id, so it
// may run alongside updates of the command itself.
func (j journal) line(logID uint, line string) {
	if j.db == nil || logID == 0 {
		return
	}
	j.db.Create(&db.CommandLogEntry{CommandLogID: logID, Entry: line}) //nolint:errcheck
}
