package chat

import (
	"context"

	"github.com/suenos-shipping/console/internal/domain"
)

// Repository handles message persistence.
type Repository interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Message, error)
}
