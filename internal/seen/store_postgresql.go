package seen

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQLStore stores events in PostgreSQL.
type PostgreSQLStore struct {
	pool *pgxpool.Pool
}

// NewPostgreSQLStore creates the seen table if needed.
func NewPostgreSQLStore(ctx context.Context, pool *pgxpool.Pool) (*PostgreSQLStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS seen_events (
			nick_key TEXT PRIMARY KEY,
			nick TEXT NOT NULL,
			kind TEXT NOT NULL,
			channel TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL DEFAULT '',
			seen_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create seen_events table: %w", err)
	}
	return &PostgreSQLStore{pool: pool}, nil
}

// Record upserts the nick's event.
func (s *PostgreSQLStore) Record(ctx context.Context, event Event) error {
	if err := validate(event); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO seen_events (nick_key, nick, kind, channel, text, seen_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (nick_key) DO UPDATE SET
			nick = EXCLUDED.nick,
			kind = EXCLUDED.kind,
			channel = EXCLUDED.channel,
			text = EXCLUDED.text,
			seen_at = EXCLUDED.seen_at
	`, Key(event.Nick), event.Nick, string(event.Kind), event.Channel, event.Text, event.When.UTC())
	if err != nil {
		return fmt.Errorf("upsert seen event: %w", err)
	}
	return nil
}

// Last returns the nick's most recent event.
func (s *PostgreSQLStore) Last(ctx context.Context, nick string) (Event, error) {
	var (
		e    Event
		kind string
	)
	err := s.pool.QueryRow(ctx,
		"SELECT nick, kind, channel, text, seen_at FROM seen_events WHERE nick_key = $1", Key(nick),
	).Scan(&e.Nick, &kind, &e.Channel, &e.Text, &e.When)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, ErrNotFound
		}
		return Event{}, fmt.Errorf("query seen event: %w", err)
	}
	e.Kind = Kind(kind)
	e.When = e.When.UTC()
	return e, nil
}

// Close is a no-op; the pool is owned by the storage layer.
func (s *PostgreSQLStore) Close() error {
	return nil
}
