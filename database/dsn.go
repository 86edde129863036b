package database

import (
	"errorwatch/config"
	"fmt"
	"net/url"
	"strings"
)

type poolConfig struct {
	maxOpenConns int
	maxIdleConns int
	maxIdleSec   int
}

// currentPoolConfig reads pool settings and clamps them: at least one open
// connection, idle connections within [0, open], idle time non-negative.
func currentPoolConfig(settings *config.Config) poolConfig {
	cfg := poolConfig{
		maxOpenConns: settings.SQLiteMaxOpenConns,
		maxIdleConns: settings.SQLiteMaxIdleConns,
		maxIdleSec:   settings.SQLiteConnMaxIdleSec,
	}
	if cfg.maxOpenConns < 1 {
		cfg.maxOpenConns = 1
	}
	cfg.maxIdleConns = min(max(cfg.maxIdleConns, 0), cfg.maxOpenConns)
	cfg.maxIdleSec = max(cfg.maxIdleSec, 0)
	return cfg
}

// sqlitePragmas lists the PRAGMA calls to apply on every new connection, in
// the "name(value)" form glebarez/sqlite expects. Invalid values are skipped.
func sqlitePragmas(settings *config.Config) []string {
	if !settings.SQLitePragmasEnabled {
		return nil
	}

	var pragmas []string
	if settings.SQLiteBusyTimeoutMS > 0 {
		pragmas = append(pragmas, fmt.Sprintf("busy_timeout(%d)", settings.SQLiteBusyTimeoutMS))
	}
	if mode := pickPragmaValue(settings.SQLiteJournalMode, "WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF"); mode != "" {
		pragmas = append(pragmas, "journal_mode("+mode+")")
	}
	if syncMode := pickPragmaValue(settings.SQLiteSynchronous, "OFF", "NORMAL", "FULL", "EXTRA", "0", "1", "2", "3"); syncMode != "" {
		pragmas = append(pragmas, "synchronous("+syncMode+")")
	}
	return pragmas
}

// pickPragmaValue returns value upper-cased if it is one of allowed, else ""
func pickPragmaValue(value string, allowed ...string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return ""
}

// buildSQLiteDSN appends one _pragma parameter per pragma to path, keeping
// any query parameters path already carries.
func buildSQLiteDSN(path string, pragmas []string) string {
	base, rawQuery, _ := strings.Cut(path, "?")
	query, _ := url.ParseQuery(rawQuery)
	for _, p := range pragmas {
		query.Add("_pragma", p)
	}
	if len(query) == 0 {
		return base
	}
	return base + "?" + query.Encode()
}
