package seen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one JSON value per nick under "<prefix>:<nick>".
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store using client. A zero ttl keeps entries
// forever.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if prefix == "" {
		prefix = "butler:seen"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}, nil
}

func (s *RedisStore) key(nick string) string {
	return s.prefix + ":" + Key(nick)
}

// Record overwrites the nick's value and resets its expiry.
func (s *RedisStore) Record(ctx context.Context, event Event) error {
	if err := validate(event); err != nil {
		return err
	}
	payload, err := serializeEvent(event)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(event.Nick), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("set seen event in redis: %w", err)
	}
	return nil
}

// Last returns the nick's most recent event.
func (s *RedisStore) Last(ctx context.Context, nick string) (Event, error) {
	data, err := s.client.Get(ctx, s.key(nick)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Event{}, ErrNotFound
		}
		return Event{}, fmt.Errorf("get seen event from redis: %w", err)
	}
	return deserializeEvent(data)
}

// Close is a no-op; the client is owned by the storage layer.
func (s *RedisStore) Close() error {
	return nil
}
