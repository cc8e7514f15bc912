// Package journal records every inbound event envelope and how long it
// took to handle. It is an audit of receipt, separate from the
// transactional idempotency ledger: a journal write failure is logged and
// never fails the event.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one received event.
type Entry struct {
	EventID   string
	EventType string
	Symbol    string
	TradeID   int64
	Summary   string
	Outcome   string
	TookMs    int64
	CreatedAt time.Time
}

// Outcome labels for journal rows.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeIgnored = "ignored"
)

// Store persists journal entries in its own SQLite file.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("journal path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path))
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS event_journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id TEXT,
		event_type TEXT NOT NULL,
		symbol TEXT,
		trade_id INTEGER,
		summary TEXT,
		outcome TEXT,
		execution_time_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_event_journal_trade ON event_journal(trade_id, created_at);`)
	return err
}

// Record appends one entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("journal store not initialized")
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event_journal (event_id, event_type, symbol, trade_id, summary, outcome, execution_time_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EventID, e.EventType, e.Symbol, e.TradeID, e.Summary, e.Outcome, e.TookMs, created.Unix())
	return err
}

// Recent returns the latest entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("journal store not initialized")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, event_type, symbol, trade_id, summary, outcome, execution_time_ms, created_at
		 FROM event_journal ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.EventID, &e.EventType, &e.Symbol, &e.TradeID, &e.Summary, &e.Outcome, &e.TookMs, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(created, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
