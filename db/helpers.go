package db

import (
	_ "embed"
	"time"

	"gorm.io/gorm"
)

//go:embed queries/session_and_log.sql
var sessionAndLogSql string

// SessionSummary is one row of GetAllSessions.
type SessionSummary struct {
	ID         uint
	Token      string
	Kind       string
	Channel    string
	OutputFile string
	State      string
	CreatedAt  time.Time
	StartedAt  *time.Time
	EndedAt    *time.Time
	Commands   int
}

// GetAllSessions lists recording and preview sessions, newest first,
// with the number of commands each one ran.
func GetAllSessions(db *gorm.DB) ([]SessionSummary, error) {
	result := make([]SessionSummary, 0)
	if err := db.Raw(sessionAndLogSql).Scan(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// FindSession looks a session up by its token, with its command logs.
func FindSession(db *gorm.DB, token string) (*Session, error) {
	session := &Session{}
	if err := db.Preload("RawLog").Where("token = ?", token).First(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}
