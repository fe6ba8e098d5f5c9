package billing

import (
	"context"
	"errors"

	"github.com/suenos-shipping/console/internal/domain"
)

// Repository errors.
var (
	ErrNotFound        = errors.New("invoice not found")
	ErrAlreadyApproved = errors.New("invoice already approved")
)

// Repository handles invoice persistence.
type Repository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Invoice, error)
	// Approve moves an open invoice to approved. Returns
	// ErrAlreadyApproved when the invoice is not open.
	Approve(ctx context.Context, id string) error
}
