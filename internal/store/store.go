// Package store persists chat messages together with their emotion labels.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/medichat-ai/insights-engine/internal/lexicon"
	"github.com/medichat-ai/insights-engine/internal/message"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	text         TEXT NOT NULL,
	emotion      TEXT NOT NULL,
	confidence   INTEGER NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_user_time ON messages(user_id, created_at);

CREATE TABLE IF NOT EXISTS assessment_log (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	assessment_id  TEXT NOT NULL,
	user_id        TEXT NOT NULL,
	risk_level     TEXT NOT NULL,
	score          INTEGER NOT NULL,
	urgent         INTEGER NOT NULL,
	factors_json   TEXT,
	window_size    INTEGER NOT NULL,
	created_at     TEXT NOT NULL
);
`

// TimeLayout is the fixed-width UTC layout used for every stored timestamp,
// so lexical order equals chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// #endregion schema

// #region store-struct
// Store is the message storage collaborator backed by SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion close

// #region save
// SaveMessage stores a labeled message for userID. An empty ID is replaced
// with a new UUID; the stored message is returned.
func (s *Store) SaveMessage(userID string, m message.Labeled) (message.Labeled, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO messages (id, user_id, text, emotion, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, userID, m.Text, string(m.Emotion), m.Confidence, FormatTime(m.Timestamp),
	)
	if err != nil {
		return message.Labeled{}, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}
// #endregion save

// #region queries

// Window returns messages with from <= timestamp < to in chronological
// order. When more than limit match, the most recent limit are kept.
func (s *Store) Window(userID string, from, to time.Time, limit int) ([]message.Labeled, error) {
	rows, err := s.db.Query(
		`SELECT id, text, emotion, confidence, created_at FROM messages
		 WHERE user_id = ? AND created_at >= ? AND created_at < ?
		 ORDER BY created_at DESC LIMIT ?`,
		userID, FormatTime(from), FormatTime(to), sqlLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

// Recent returns the n most recent messages in chronological order.
func (s *Store) Recent(userID string, n int) ([]message.Labeled, error) {
	msgs, err := s.ListMessages(userID, n)
	if err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

// ListMessages returns up to limit messages, newest first. An empty userID
// lists every user.
func (s *Store) ListMessages(userID string, limit int) ([]message.Labeled, error) {
	rows, err := s.db.Query(
		`SELECT id, text, emotion, confidence, created_at FROM messages
		 WHERE (? = '' OR user_id = ?)
		 ORDER BY created_at DESC LIMIT ?`,
		userID, userID, sqlLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return scanMessages(rows)
}

// #endregion queries

// #region helpers

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func scanMessages(rows *sql.Rows) ([]message.Labeled, error) {
	defer rows.Close()

	var msgs []message.Labeled
	for rows.Next() {
		var m message.Labeled
		var emotion, created string
		if err := rows.Scan(&m.ID, &m.Text, &emotion, &m.Confidence, &created); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		ts, err := time.Parse(TimeLayout, created)
		if err != nil {
			log.Printf("[STORE] skipping message %s: bad created_at %q", m.ID, created)
			continue
		}
		m.Emotion = lexicon.Category(emotion)
		m.Timestamp = ts
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// sqlLimit maps a non-positive limit to SQLite's "no limit".
func sqlLimit(n int) int {
	if n <= 0 {
		return -1
	}
	return n
}

func reverse(msgs []message.Labeled) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

// #endregion helpers
