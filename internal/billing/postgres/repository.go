// Package postgres implements invoice storage backed by pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/suenos-shipping/console/internal/billing"
	"github.com/suenos-shipping/console/internal/domain"
)

// Repository implements billing.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new invoice repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an invoice.
func (r *Repository) Create(ctx context.Context, invoice *domain.Invoice) error {
	query := `
		INSERT INTO invoices (id, user_id, tracking, kind, amount_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		invoice.ID, invoice.UserID, invoice.Tracking, invoice.Kind,
		invoice.AmountCents, invoice.Currency, invoice.Status,
	).Scan(&invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID returns an invoice by id.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	query := `
		SELECT id, user_id, tracking, kind, amount_cents, currency, status, approved_at, created_at, updated_at
		FROM invoices
		WHERE id = $1`

	var inv domain.Invoice
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.UserID, &inv.Tracking, &inv.Kind, &inv.AmountCents,
		&inv.Currency, &inv.Status, &inv.ApprovedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, billing.ErrNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// ListByUser returns a customer's invoices, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*domain.Invoice, error) {
	query := `
		SELECT id, user_id, tracking, kind, amount_cents, currency, status, approved_at, created_at, updated_at
		FROM invoices
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var list []*domain.Invoice
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.Tracking, &inv.Kind, &inv.AmountCents,
			&inv.Currency, &inv.Status, &inv.ApprovedAt, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}

// Approve flips an open invoice to approved. The conditional update
// distinguishes a missing invoice from one approved already.
func (r *Repository) Approve(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices
		SET status = 'approved', approved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'open'`, id)
	if err != nil {
		return fmt.Errorf("approve invoice: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check invoice: %w", err)
	}
	if !exists {
		return billing.ErrNotFound
	}
	return billing.ErrAlreadyApproved
}
