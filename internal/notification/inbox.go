package notification

import (
	"context"
	"time"
)

// InboxEntry is an in-app notification shown to back-office staff.
type InboxEntry struct {
	ID        string    `json:"id" bson:"_id"`
	Kind      Kind      `json:"kind" bson:"kind"`
	EntityID  string    `json:"entity_id" bson:"entity_id"`
	Title     string    `json:"title" bson:"title"`
	Message   string    `json:"message" bson:"message"`
	Read      bool      `json:"read" bson:"read"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type Inbox interface {
	Record(ctx context.Context, entry *InboxEntry) error
	List(ctx context.Context, unreadOnly bool, limit int64) ([]*InboxEntry, error)
	MarkRead(ctx context.Context, id string) error
}
