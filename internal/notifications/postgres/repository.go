// Package postgres provides the PostgreSQL implementation of the
// notification queue repository.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/suenos-shipping/console/internal/notifications"
)

// Repository implements notifications.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Enqueue inserts a new pending queue item.
func (r *Repository) Enqueue(ctx context.Context, item *notifications.QueueItem) error {
	query := `
		INSERT INTO notification_queue (id, user_id, tracking, template, payload, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		item.ID,
		item.UserID,
		item.Tracking,
		item.Template,
		item.Payload,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	item.Status = notifications.QueueStatusPending
	return nil
}

// FetchPending returns up to limit pending items in creation order.
func (r *Repository) FetchPending(ctx context.Context, limit int) ([]*notifications.QueueItem, error) {
	query := `
		SELECT id, user_id, tracking, template, payload, status, attempts,
		       sent_at, COALESCE(last_error, ''), created_at, updated_at
		FROM notification_queue
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch pending notifications: %w", err)
	}
	defer rows.Close()

	items := make([]*notifications.QueueItem, 0)
	for rows.Next() {
		var item notifications.QueueItem
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.Tracking,
			&item.Template,
			&item.Payload,
			&item.Status,
			&item.Attempts,
			&item.SentAt,
			&item.LastError,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan queue item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue items: %w", err)
	}

	return items, nil
}

// ClaimPending conditionally moves a pending item to processing. The
// WHERE clause makes the claim atomic: at most one caller sees a
// single affected row.
func (r *Repository) ClaimPending(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE notification_queue
		SET status = 'processing', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("claim notification: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// MarkAsSent records a successful delivery.
func (r *Repository) MarkAsSent(ctx context.Context, id string) error {
	query := `
		UPDATE notification_queue
		SET status = 'sent', sent_at = NOW(), last_error = NULL, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("mark as sent: %w", err)
	}
	return nil
}

// MarkForRetry returns the item to pending and counts the failed cycle.
func (r *Repository) MarkForRetry(ctx context.Context, id string, sendErr error) error {
	query := `
		UPDATE notification_queue
		SET status = 'pending', attempts = attempts + 1, last_error = $2, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.db.Exec(ctx, query, id, sendErr.Error()); err != nil {
		return fmt.Errorf("mark for retry: %w", err)
	}
	return nil
}

// MarkAsFailed terminally fails the item and counts the failed cycle.
func (r *Repository) MarkAsFailed(ctx context.Context, id string, sendErr error) error {
	query := `
		UPDATE notification_queue
		SET status = 'failed', attempts = attempts + 1, last_error = $2, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.db.Exec(ctx, query, id, sendErr.Error()); err != nil {
		return fmt.Errorf("mark as failed: %w", err)
	}
	return nil
}

// GetQueueStats counts queue items by status.
func (r *Repository) GetQueueStats(ctx context.Context) (*notifications.QueueStats, error) {
	query := `SELECT status, COUNT(*) FROM notification_queue GROUP BY status`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get queue stats: %w", err)
	}
	defer rows.Close()

	var stats notifications.QueueStats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan queue stats: %w", err)
		}
		switch notifications.QueueStatus(status) {
		case notifications.QueueStatusPending:
			stats.Pending = count
		case notifications.QueueStatusProcessing:
			stats.Processing = count
		case notifications.QueueStatusSent:
			stats.Sent = count
		case notifications.QueueStatusFailed:
			stats.Failed = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue stats: %w", err)
	}

	return &stats, nil
}
