package database

import (
	"errorwatch/config"
	"strings"
	"testing"
)

func TestBuildSQLiteDSN_PragmaParams(t *testing.T) {
	cfg := &config.Config{
		SQLitePragmasEnabled: true,
		SQLiteBusyTimeoutMS:  5000,
		SQLiteJournalMode:    "wal",
		SQLiteSynchronous:    "NORMAL",
	}

	dsn := buildSQLiteDSN("test.db", sqlitePragmas(cfg))
	for _, want := range []string{
		"_pragma=busy_timeout%285000%29",
		"_pragma=journal_mode%28WAL%29",
		"_pragma=synchronous%28NORMAL%29",
	} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("expected DSN to contain %q, got %q", want, dsn)
		}
	}
}

func TestBuildSQLiteDSN_PreservesExistingQueryAndSkipsInvalid(t *testing.T) {
	cfg := &config.Config{
		SQLitePragmasEnabled: true,
		SQLiteJournalMode:    "sideways",
		SQLiteSynchronous:    "2",
	}
	dsn := buildSQLiteDSN("test.db?cache=shared", sqlitePragmas(cfg))
	if !strings.Contains(dsn, "cache=shared") {
		t.Fatalf("expected existing query to be preserved, got %q", dsn)
	}
	if strings.Contains(dsn, "journal_mode") {
		t.Fatalf("expected invalid journal mode to be skipped, got %q", dsn)
	}
	if !strings.Contains(dsn, "synchronous%282%29") {
		t.Fatalf("expected numeric synchronous value, got %q", dsn)
	}
}

func TestBuildSQLiteDSN_PragmasDisabled(t *testing.T) {
	cfg := &config.Config{SQLitePragmasEnabled: false, SQLiteBusyTimeoutMS: 5000}
	if dsn := buildSQLiteDSN("test.db", sqlitePragmas(cfg)); dsn != "test.db" {
		t.Fatalf("expected bare path, got %q", dsn)
	}
}

func TestCurrentPoolConfig_Clamps(t *testing.T) {
	got := currentPoolConfig(&config.Config{SQLiteMaxOpenConns: 0, SQLiteMaxIdleConns: 5, SQLiteConnMaxIdleSec: -1})
	if got.maxOpenConns != 1 || got.maxIdleConns != 1 || got.maxIdleSec != 0 {
		t.Fatalf("unexpected pool config: %+v", got)
	}
}
