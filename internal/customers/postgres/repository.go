// Package postgres implements profile storage backed by pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/suenos-shipping/console/internal/customers"
	"github.com/suenos-shipping/console/internal/domain"
)

// Repository implements customers.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new profile repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a profile. The customer number comes from the table
// default sequence and is read back into the struct.
func (r *Repository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, email, full_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING customer_no, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		profile.ID, profile.Email, profile.FullName, profile.Role,
	).Scan(&profile.CustomerNo, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return customers.ErrDuplicateMail
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// GetByID returns a profile by id.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, email, full_name, customer_no, role, created_at, updated_at
		FROM profiles
		WHERE id = $1`

	return r.scanProfile(r.pool.QueryRow(ctx, query, id))
}

// Search matches email or customer number case-insensitively. An empty
// query returns the newest profiles.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]*domain.Profile, error) {
	sql := `
		SELECT id, email, full_name, customer_no, role, created_at, updated_at
		FROM profiles
		WHERE $1 = '' OR email ILIKE '%' || $1 || '%' OR customer_no ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.CustomerNo, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, &p)
	}
	return profiles, rows.Err()
}

// GetRole returns the current role of a user.
func (r *Repository) GetRole(ctx context.Context, userID string) (domain.Role, error) {
	var role domain.Role
	err := r.pool.QueryRow(ctx, `SELECT role FROM profiles WHERE id = $1`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", customers.ErrNotFound
		}
		return "", fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// GetProfile returns a profile for notification rendering. Satisfies
// the notification processor's profile source.
func (r *Repository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return r.GetByID(ctx, userID)
}

func (r *Repository) scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.CustomerNo, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customers.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return &p, nil
}
