package seen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoSeenDocument struct {
	Key     string    `bson:"_id"`
	Nick    string    `bson:"nick"`
	Kind    string    `bson:"kind"`
	Channel string    `bson:"channel,omitempty"`
	Text    string    `bson:"text,omitempty"`
	SeenAt  time.Time `bson:"seen_at"`
}

// MongoDBStore stores events in MongoDB, one document per nick.
type MongoDBStore struct {
	collection *mongo.Collection
}

// NewMongoDBStore creates collection indexes if needed.
func NewMongoDBStore(database *mongo.Database) (*MongoDBStore, error) {
	if database == nil {
		return nil, fmt.Errorf("database is required")
	}

	coll := database.Collection("seen_events")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "seen_at", Value: -1}}}); err != nil {
		return nil, fmt.Errorf("create seen_events index: %w", err)
	}
	return &MongoDBStore{collection: coll}, nil
}

// Record replaces the nick's document.
func (s *MongoDBStore) Record(ctx context.Context, event Event) error {
	if err := validate(event); err != nil {
		return err
	}
	doc := mongoSeenDocument{
		Key:     Key(event.Nick),
		Nick:    event.Nick,
		Kind:    string(event.Kind),
		Channel: event.Channel,
		Text:    event.Text,
		SeenAt:  event.When.UTC(),
	}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert seen event: %w", err)
	}
	return nil
}

// Last returns the nick's most recent event.
func (s *MongoDBStore) Last(ctx context.Context, nick string) (Event, error) {
	var doc mongoSeenDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": Key(nick)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Event{}, ErrNotFound
		}
		return Event{}, fmt.Errorf("query seen event: %w", err)
	}
	return Event{
		Nick:    doc.Nick,
		Kind:    Kind(doc.Kind),
		Channel: doc.Channel,
		Text:    doc.Text,
		When:    doc.SeenAt.UTC(),
	}, nil
}

// Close is a no-op; the client is owned by the storage layer.
func (s *MongoDBStore) Close() error {
	return nil
}
