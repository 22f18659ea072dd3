package db

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Session kinds.
const (
	KindRecord  = "record"
	KindPreview = "preview"
	KindQuery   = "query"
)

// Command roles within a session.
const (
	RoleRecorder = "recorder"
	RolePreview  = "preview"
	RolePlayer   = "player"
	RolePre      = "pre_command"
	RolePost     = "post_command"
	RoleProbe    = "probe"
	RoleCodecs   = "codecs"
)

type Session struct {
	gorm.Model
	// Token is the short id shown to users.
	Token string `gorm:"uniqueIndex"`
	Kind  string
	// Fingerprint identifies the parameter set, see package profileid.
	Fingerprint []byte `gorm:"index"`
	Channel     string
	OutputFile  string
	ScheduledAt *time.Time
	StartedAt   *time.Time
	EndedAt     *time.Time
	State       string
	RawLog      []CommandLog
}

type CommandLog struct {
	gorm.Model
	SessionID uint
	Role      string
	Args      datatypes.JSONSlice[string]
	Pid       int
	Outcome   string
	Entry     []CommandLogEntry
}

type CommandLogEntry struct {
	gorm.Model
	CommandLogID uint
	Entry        string
}

func OpenDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared and
	// serializes writers.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&Session{}); err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&CommandLog{}); err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&CommandLogEntry{}); err != nil {
		return nil, err
	}
	return db, nil
}
