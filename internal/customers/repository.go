package customers

import (
	"context"
	"errors"

	"github.com/suenos-shipping/console/internal/domain"
)

// Repository errors.
var (
	ErrNotFound      = errors.New("profile not found")
	ErrDuplicateMail = errors.New("email already registered")
)

// Repository handles profile persistence. The customer number is
// assigned by the store on create.
type Repository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Search(ctx context.Context, query string, limit int) ([]*domain.Profile, error)
	GetRole(ctx context.Context, userID string) (domain.Role, error)
}
