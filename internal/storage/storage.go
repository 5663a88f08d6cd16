package storage

import (
	"context"
	"time"

	"github.com/nikbrunner/linkify/internal/model"
)

// PendingRead is a read-mark that could not be delivered to the server.
type PendingRead struct {
	LinkID   model.ID
	Href     string
	QueuedAt time.Time
	Attempts int
}

// Outbox persists read-marks until they are delivered.
type Outbox interface {
	Enqueue(ctx context.Context, id model.ID, href string) error
	Pending(ctx context.Context) ([]PendingRead, error)
	Remove(ctx context.Context, id model.ID) error
	Close() error
}
