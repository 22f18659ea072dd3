package db

import (
	"bytes"
	"database/sql"
	"io"

	"gorm.io/gorm"
)

type logReader struct {
	rows       *sql.Rows
	currReader io.Reader
}

func (r *logReader) Read(p []byte) (n int, err error) {
	if r.currReader == nil {
		// No reader right now, try to fetch the next row.
		if !r.rows.Next() {
			r.rows.Close() //nolint:errcheck
			return 0, io.EOF
		}
		var id uint
		var b []byte
		if err := r.rows.Scan(&id, &b); err != nil {
			r.rows.Close() //nolint:errcheck
			return 0, io.EOF
		}
		r.currReader = bytes.NewReader(append(b, '\n'))
	}
	n, err = r.currReader.Read(p)
	if err == io.EOF {
		r.currReader = nil
		err = nil
	}
	return
}

// NewLogReader returns the captured output of one command, one entry
// per line. The reader holds the database connection until it reaches
// EOF.
func NewLogReader(db *gorm.DB, logid uint) (io.Reader, error) {
	rows, err := db.Raw("SELECT id,entry FROM command_log_entries WHERE command_log_id = ? AND deleted_at IS NULL ORDER BY id ASC", logid).Rows()
	if err != nil {
		return nil, err
	}
	return &logReader{rows: rows}, nil
}
