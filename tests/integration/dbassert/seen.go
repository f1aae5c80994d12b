//go:build integration

// Package dbassert reads what the bot persisted, straight from the database.
package dbassert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// SeenRow mirrors one stored last-seen event.
type SeenRow struct {
	Nick    string    `bson:"nick"`
	Kind    string    `bson:"kind"`
	Channel string    `bson:"channel"`
	Text    string    `bson:"text"`
	SeenAt  time.Time `bson:"seen_at"`
}

// QuerySeenPostgreSQL returns the row stored under key, or nil.
func QuerySeenPostgreSQL(t *testing.T, pool *pgxpool.Pool, key string) *SeenRow {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var row SeenRow
	err := pool.QueryRow(ctx, `
		SELECT nick, kind, channel, text, seen_at
		FROM seen_events
		WHERE nick_key = $1
	`, key).Scan(&row.Nick, &row.Kind, &row.Channel, &row.Text, &row.SeenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	require.NoError(t, err, "failed to query seen_events")
	return &row
}

// QuerySeenMongoDB returns the document stored under key, or nil.
func QuerySeenMongoDB(t *testing.T, db *mongo.Database, key string) *SeenRow {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var row SeenRow
	err := db.Collection("seen_events").FindOne(ctx, bson.M{"_id": key}).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	require.NoError(t, err, "failed to query seen_events")
	return &row
}

// ClearSeenPostgreSQL empties the seen table if it exists.
func ClearSeenPostgreSQL(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, "DELETE FROM seen_events")
	if err != nil {
		// table is created on first use
		t.Logf("clear seen_events: %v", err)
	}
}

// ClearSeenMongoDB empties the seen collection.
func ClearSeenMongoDB(t *testing.T, db *mongo.Database) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := db.Collection("seen_events").DeleteMany(ctx, bson.M{})
	require.NoError(t, err, "failed to clear seen_events")
}
