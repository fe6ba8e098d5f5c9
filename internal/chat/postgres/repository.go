// Package postgres implements message storage backed by pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/suenos-shipping/console/internal/domain"
)

// Repository implements chat.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new message repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a message.
func (r *Repository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (id, user_id, author_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		message.ID, message.UserID, message.AuthorID, message.Body,
	).Scan(&message.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListByUser returns the newest limit messages of a thread in
// chronological order.
func (r *Repository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, user_id, author_id, body, created_at
		FROM (
			SELECT id, user_id, author_id, body, created_at
			FROM messages
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.AuthorID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
