package db

import (
	"testing"
)

func TestGetAllSessionsSqlQueryCompiles(t *testing.T) {
	db, err := OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory db: %+v", err.Error())
	}
	// db is empty at this point, so this purely tests if the sql
	// query is syntactically correct.
	got, err := GetAllSessions(db)
	if err != nil {
		t.Errorf("failed to run sql query: %+v", err.Error())
	}
	if len(got) != 0 {
		t.Errorf("got %v, want 0 rows", len(got))
	}
}

func TestGetAllSessionsCountsCommands(t *testing.T) {
	db, err := OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory db: %+v", err.Error())
	}
	session := Session{Token: "abc", Kind: KindRecord, Channel: "5"}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("failed to insert session record: %+v", err.Error())
	}
	for _, role := range []string{RolePre, RoleRecorder} {
		if err := db.Model(&session).Association("RawLog").Append(&CommandLog{
			Role: role,
			Args: []string{"tv://"},
		}); err != nil {
			t.Errorf("failed to insert log record: %+v", err)
		}
	}
	got, err := GetAllSessions(db)
	if err != nil {
		t.Fatalf("failed to run sql query: %+v", err.Error())
	}
	if len(got) != 1 {
		t.Fatalf("got %v, want 1 row", len(got))
	}
	if got[0].Token != "abc" || got[0].Commands != 2 || got[0].Channel != "5" {
		t.Errorf("unexpected summary %+v", got[0])
	}
}

func TestGetAllSessionsSkipsQueries(t *testing.T) {
	db, err := OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory db: %+v", err.Error())
	}
	for i, kind := range []string{KindQuery, KindPreview, KindRecord} {
		session := Session{Token: string(rune('a' + i)), Kind: kind}
		if err := db.Create(&session).Error; err != nil {
			t.Fatalf("failed to insert session record: %+v", err.Error())
		}
	}
	got, err := GetAllSessions(db)
	if err != nil {
		t.Fatalf("failed to run sql query: %+v", err.Error())
	}
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 rows", len(got))
	}
	// Newest first.
	if got[0].Kind != KindRecord || got[1].Kind != KindPreview {
		t.Errorf("unexpected order %+v", got)
	}
}

func TestFindSession(t *testing.T) {
	db, err := OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory db: %+v", err.Error())
	}
	session := Session{Token: "tok", Kind: KindRecord}
	if err := db.Create(&session).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Model(&session).Association("RawLog").Append(&CommandLog{Role: RoleRecorder}); err != nil {
		t.Fatal(err)
	}
	got, err := FindSession(db, "tok")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.RawLog) != 1 || got.RawLog[0].Role != RoleRecorder {
		t.Errorf("unexpected logs %+v", got.RawLog)
	}
	if _, err := FindSession(db, "missing"); err == nil {
		t.Error("found a session that does not exist")
	}
}
