// Package notifications owns the outbound notification queue: enqueueing,
// template rendering and the batch processor that drains it.
package notifications

import (
	"context"

	"github.com/suenos-shipping/console/internal/domain"
)

// Repository defines queue persistence.
// The processor is the sole writer of status, attempts, sent_at and
// last_error; rows are created by the enqueue operations.
type Repository interface {
	// Enqueue inserts item with status pending.
	Enqueue(ctx context.Context, item *QueueItem) error

	// FetchPending returns up to limit pending items, oldest first.
	FetchPending(ctx context.Context, limit int) ([]*QueueItem, error)

	// ClaimPending moves a pending item to processing. Returns false
	// when the item was no longer pending, i.e. a concurrent run
	// claimed it first.
	ClaimPending(ctx context.Context, id string) (bool, error)

	// MarkAsSent records a successful delivery: status sent, sent_at
	// now, last_error cleared.
	MarkAsSent(ctx context.Context, id string) error

	// MarkForRetry returns the item to pending, increments attempts and
	// records the cycle's error.
	MarkForRetry(ctx context.Context, id string, sendErr error) error

	// MarkAsFailed terminally fails the item, increments attempts and
	// records the cycle's error.
	MarkAsFailed(ctx context.Context, id string, sendErr error) error

	// GetQueueStats counts items by status.
	GetQueueStats(ctx context.Context) (*QueueStats, error)
}

// ProfileSource resolves the customer profile a notification targets.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
}

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
