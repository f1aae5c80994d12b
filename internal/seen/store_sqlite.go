package seen

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteStore stores events in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the seen table if needed.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS seen_events (
			nick_key TEXT PRIMARY KEY,
			nick TEXT NOT NULL,
			kind TEXT NOT NULL,
			channel TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL DEFAULT '',
			seen_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create seen_events table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Record upserts the nick's event.
func (s *SQLiteStore) Record(ctx context.Context, event Event) error {
	if err := validate(event); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO seen_events (nick_key, nick, kind, channel, text, seen_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(nick_key) DO UPDATE SET
			nick = excluded.nick,
			kind = excluded.kind,
			channel = excluded.channel,
			text = excluded.text,
			seen_at = excluded.seen_at
	`, Key(event.Nick), event.Nick, string(event.Kind), event.Channel, event.Text, event.When.UnixNano())
	if err != nil {
		return fmt.Errorf("upsert seen event: %w", err)
	}
	return nil
}

// Last returns the nick's most recent event.
func (s *SQLiteStore) Last(ctx context.Context, nick string) (Event, error) {
	var (
		e      Event
		kind   string
		seenAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT nick, kind, channel, text, seen_at FROM seen_events WHERE nick_key = ?", Key(nick),
	).Scan(&e.Nick, &kind, &e.Channel, &e.Text, &seenAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, ErrNotFound
		}
		return Event{}, fmt.Errorf("query seen event: %w", err)
	}
	e.Kind = Kind(kind)
	e.When = time.Unix(0, seenAt).UTC()
	return e, nil
}

// Close is a no-op; DB lifecycle is managed by storage layer.
func (s *SQLiteStore) Close() error {
	return nil
}
