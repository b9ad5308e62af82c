// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pollbooth/auth"
	"github.com/danielhkuo/pollbooth/cliparse"
	"github.com/danielhkuo/pollbooth/db"
)

// TestDriver is the database/sql driver used by every test database
const TestDriver = "sqlite"

// SetupTestDB creates a fresh SQLite database file with the full schema,
// opened through db.Open exactly as the server opens it.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(TestDriver, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Command:      cliparse.CommandServe,
		Port:         3318,
		DatabaseURL:  "file:test.db",
		DatabaseType: "sqlite",
		AdminKey:     "test-admin-key",
		SecretKey:    "test-secret-key",
		LogLevel:     "info",
	}
}

// PollOpts describes a poll inserted by CreateTestPoll
type PollOpts struct {
	Title     string
	Active    bool
	EndDate   *time.Time
	CreatedAt time.Time
}

// CreateTestPoll inserts a poll and returns its ID. A zero CreatedAt means now.
func CreateTestPoll(t *testing.T, conn *sql.DB, opts PollOpts) string {
	t.Helper()

	if opts.Title == "" {
		opts.Title = "Test Poll"
	}
	if opts.CreatedAt.IsZero() {
		opts.CreatedAt = time.Now()
	}
	var end sql.NullTime
	if opts.EndDate != nil {
		end = sql.NullTime{Time: opts.EndDate.UTC(), Valid: true}
	}

	pollID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO poll (id, title, question, created_at, end_date, is_active)
		VALUES (?, ?, 'A test question?', ?, ?, ?)
	`, pollID, opts.Title, opts.CreatedAt.UTC(), end, opts.Active)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID
}

// CreateOpenPoll inserts an active poll without an end date
func CreateOpenPoll(t *testing.T, conn *sql.DB) string {
	t.Helper()
	return CreateTestPoll(t, conn, PollOpts{Active: true})
}

// AddTestChoice appends a choice with the given vote count and returns its ID
func AddTestChoice(t *testing.T, conn *sql.DB, pollID, text string, votes int) string {
	t.Helper()

	choiceID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO choice (id, poll_id, choice_text, votes, position)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM choice WHERE poll_id = ?))
	`, choiceID, pollID, text, votes, pollID)
	if err != nil {
		t.Fatalf("Failed to create test choice: %v", err)
	}

	return choiceID
}

// ChoiceVotes reads a choice's vote counter straight from the database
func ChoiceVotes(t *testing.T, conn *sql.DB, choiceID string) int {
	t.Helper()

	var votes int
	if err := conn.QueryRow(`SELECT votes FROM choice WHERE id = ?`, choiceID).Scan(&votes); err != nil {
		t.Fatalf("Failed to read votes for %s: %v", choiceID, err)
	}
	return votes
}

// AdminToken returns a valid admin token for cfg
func AdminToken(t *testing.T, cfg cliparse.Config) string {
	t.Helper()

	token, _, err := auth.IssueAdminToken(cfg.SecretKey, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue admin token: %v", err)
	}
	return token
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
