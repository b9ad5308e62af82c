// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// sqliteParams are appended to every SQLite DSN unless the URL already
// sets them. busy_timeout makes a second writer wait for the lock instead
// of failing with SQLITE_BUSY.
var sqliteParams = []struct {
	key, value string
}{
	{"_pragma", "foreign_keys(1)"},
	{"_pragma", "busy_timeout(5000)"},
	{"_time_format", "sqlite"},
}

// Open opens the database for driver ("sqlite" or "postgres") and tunes
// the pool for it. SQLite gets a single connection so concurrent writers
// queue in database/sql instead of racing for the file lock.
func Open(driver, url string) (*sql.DB, error) {
	dsn := url
	if driver == "sqlite" {
		dsn = SQLiteDSN(url)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		conn.SetMaxOpenConns(1)
	}

	return conn, nil
}

// SQLiteDSN adds the connection pragmas the app relies on to url
func SQLiteDSN(url string) string {
	dsn := url
	for _, p := range sqliteParams {
		param := p.key + "=" + p.value
		if p.key == "_pragma" {
			// Match on the pragma name so a caller's own busy_timeout(100) wins
			name, _, _ := strings.Cut(p.value, "(")
			if strings.Contains(dsn, "_pragma="+name) {
				continue
			}
		} else if strings.Contains(dsn, p.key+"=") {
			continue
		}

		if strings.Contains(dsn, "?") {
			dsn += "&" + param
		} else {
			dsn += "?" + param
		}
	}
	return dsn
}
