package shipments

import (
	"context"
	"errors"

	"github.com/suenos-shipping/console/internal/domain"
)

// Repository errors.
var (
	ErrNotFound          = errors.New("shipment not found")
	ErrDuplicateTracking = errors.New("tracking number already exists")
)

// Repository handles shipment persistence.
type Repository interface {
	Create(ctx context.Context, shipment *domain.Shipment) error
	GetByID(ctx context.Context, id string) (*domain.Shipment, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Shipment, error)
	UpdateStatus(ctx context.Context, id string, status domain.ShipmentStatus) error
}
