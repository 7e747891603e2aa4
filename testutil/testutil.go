// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/meeting-vote/cliparse"
	"github.com/danielhkuo/meeting-vote/db"
	"github.com/danielhkuo/meeting-vote/models"
	"github.com/danielhkuo/meeting-vote/notify"
	"github.com/danielhkuo/meeting-vote/store"
)

// SetupTestDB creates a fresh SQLite database with the full schema in the
// test's temp dir. It is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := GetTestConfig()
	cfg.DatabaseURL = "file:" + filepath.Join(t.TempDir(), "vote.db")

	conn, err := db.Open(cfg)
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
		Port:            5000,
		DatabaseType:    cliparse.DatabaseSQLite,
		BaseURL:         "http://vote.test",
		AdminKeySalt:    "test-admin-salt",
		SMTPPort:        587,
		MailFrom:        "secretary@example.com",
		MailTimeout:     time.Second,
		MailConcurrency: 1,
		RateLimitRPS:    1000,
		RateLimitBurst:  1000,
	}
}

// CreateTestMeeting writes a meeting with one member per name and returns
// the meeting and the issued tokens in name order.
func CreateTestMeeting(t *testing.T, conn *sql.DB, names ...string) (*models.Meeting, []store.IssuedToken) {
	t.Helper()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	m := &models.Meeting{
		Title:     "Investment Committee",
		Content:   "Approve the Q2 budget",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	}

	invitees := make([]store.Invitee, len(names))
	for i, name := range names {
		invitees[i] = store.Invitee{Name: name, Email: name + "@example.com"}
	}

	issued, err := store.New(conn).CreateMeeting(context.Background(), m, invitees)
	if err != nil {
		t.Fatalf("Failed to create test meeting: %v", err)
	}
	return m, issued
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()

	var n int
	// table names come from test code only
	if err := conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// RecordingDispatcher captures notifications instead of sending them.
// Addresses listed in Fail are reported as failed deliveries.
type RecordingDispatcher struct {
	mu   sync.Mutex
	Sent []notify.Notification
	Fail map[string]bool
}

func (d *RecordingDispatcher) Dispatch(_ context.Context, n notify.Notification) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Fail[n.To] {
		return false
	}
	d.Sent = append(d.Sent, n)
	return true
}

// Notifications returns a copy of what has been dispatched so far.
func (d *RecordingDispatcher) Notifications() []notify.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notify.Notification(nil), d.Sent...)
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
