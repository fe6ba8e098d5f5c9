// Package postgres implements shipment storage backed by pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/suenos-shipping/console/internal/domain"
	"github.com/suenos-shipping/console/internal/shipments"
)

// Repository implements shipments.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new shipment repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a shipment.
func (r *Repository) Create(ctx context.Context, shipment *domain.Shipment) error {
	query := `
		INSERT INTO shipments (id, user_id, tracking, status, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		shipment.ID, shipment.UserID, shipment.Tracking, shipment.Status, shipment.Description,
	).Scan(&shipment.CreatedAt, &shipment.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shipments.ErrDuplicateTracking
		}
		return fmt.Errorf("insert shipment: %w", err)
	}
	return nil
}

// GetByID returns a shipment by id.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Shipment, error) {
	query := `
		SELECT id, user_id, tracking, status, description, created_at, updated_at
		FROM shipments
		WHERE id = $1`

	var s domain.Shipment
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.Tracking, &s.Status, &s.Description, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shipments.ErrNotFound
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	return &s, nil
}

// ListByUser returns a customer's shipments, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*domain.Shipment, error) {
	query := `
		SELECT id, user_id, tracking, status, description, created_at, updated_at
		FROM shipments
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	var list []*domain.Shipment
	for rows.Next() {
		var s domain.Shipment
		if err := rows.Scan(&s.ID, &s.UserID, &s.Tracking, &s.Status, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// UpdateStatus sets a shipment's status.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.ShipmentStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE shipments SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("update shipment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shipments.ErrNotFound
	}
	return nil
}
