// Package mongo stores admin in-app notifications in MongoDB.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/notification"
)

// Connect opens a client and verifies the server is reachable.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := internal.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

type InboxStore struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewInboxStore(db *mongo.Database, collection string, timeout time.Duration) *InboxStore {
	return &InboxStore{
		collection: db.Collection(collection),
		timeout:    timeout,
	}
}

// EnsureIndexes creates the listing index; safe to call on every start.
func (s *InboxStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "read", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (s *InboxStore) Record(ctx context.Context, entry *notification.InboxEntry) error {
	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert inbox entry: %w", err)
	}
	return nil
}

func (s *InboxStore) List(ctx context.Context, unreadOnly bool, limit int64) ([]*notification.InboxEntry, error) {
	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter := bson.M{}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find inbox entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]*notification.InboxEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode inbox entries: %w", err)
	}
	return entries, nil
}

func (s *InboxStore) MarkRead(ctx context.Context, id string) error {
	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("mark inbox entry read: %w", err)
	}
	if res.MatchedCount == 0 {
		return internal.NewNotFoundError("Notification not found", internal.ErrCodeMissingIdentifier)
	}
	return nil
}
