package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun(t *testing.T) {
	db := openTestDB(t)

	if err := Run(db); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	version, err := GetCurrentVersion(db)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	want := AllMigrations[len(AllMigrations)-1].Version
	if version != want {
		t.Errorf("Expected version %d, got %d", want, version)
	}

	if _, err := db.Exec("INSERT INTO kv (key, value) VALUES ('a', '1')"); err != nil {
		t.Errorf("Expected kv table to exist: %v", err)
	}
}

func TestRun_Idempotent(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 3; i++ {
		if err := Run(db); err != nil {
			t.Fatalf("Run #%d failed: %v", i+1, err)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count != len(AllMigrations) {
		t.Errorf("Expected %d recorded migrations, got %d", len(AllMigrations), count)
	}
}

func TestApply_FailureStopsAndKeepsVersion(t *testing.T) {
	db := openTestDB(t)

	broken := []Migration{
		AllMigrations[0],
		{Version: 2, Name: "broken", Up: "CREATE TABLE oops ("},
	}

	if err := apply(db, broken); err == nil {
		t.Fatal("Expected error from broken migration")
	}

	version, _ := GetCurrentVersion(db)
	if version != 1 {
		t.Errorf("Expected version 1 after failure, got %d", version)
	}
}

func TestRollback(t *testing.T) {
	db := openTestDB(t)

	if v, err := Rollback(db); err != nil || v != 0 {
		t.Errorf("Expected no-op rollback on empty database, got %d, %v", v, err)
	}

	if err := Run(db); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	latest := AllMigrations[len(AllMigrations)-1].Version
	reverted, err := Rollback(db)
	if err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	if reverted != latest {
		t.Errorf("Expected to revert %d, got %d", latest, reverted)
	}

	version, _ := GetCurrentVersion(db)
	if version != latest-1 {
		t.Errorf("Expected version %d, got %d", latest-1, version)
	}

	// re-running applies the reverted migration again
	if err := Run(db); err != nil {
		t.Fatalf("Run after rollback failed: %v", err)
	}
	version, _ = GetCurrentVersion(db)
	if version != latest {
		t.Errorf("Expected version %d, got %d", latest, version)
	}
}
