package shipments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/suenos-shipping/console/internal/domain"
)

// ErrInvalidStatus reports an unrecognized shipment status string.
var ErrInvalidStatus = errors.New("invalid shipment status")

// Notifier enqueues the status-change notification. The enqueue happens
// inside the status update; the actual email is sent later by the queue
// processor.
type Notifier interface {
	EnqueuePackageStatus(ctx context.Context, userID, tracking, oldStatus, newStatus string) error
}

// Service implements shipment operations.
type Service struct {
	repo     Repository
	notifier Notifier
}

// NewService creates a new shipments service.
func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Create registers a new package for a customer. New shipments start in
// the received state.
func (s *Service) Create(ctx context.Context, userID, tracking, description string) (*domain.Shipment, error) {
	shipment := &domain.Shipment{
		ID:          uuid.NewString(),
		UserID:      userID,
		Tracking:    strings.TrimSpace(tracking),
		Status:      domain.ShipmentReceived,
		Description: strings.TrimSpace(description),
	}

	if err := s.repo.Create(ctx, shipment); err != nil {
		return nil, fmt.Errorf("create shipment: %w", err)
	}

	slog.Info("shipment created",
		"shipment_id", shipment.ID,
		"user_id", userID,
		"tracking", shipment.Tracking,
	)
	return shipment, nil
}

// Get returns one shipment by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Shipment, error) {
	shipment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	return shipment, nil
}

// ListByUser returns all shipments of a customer, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*domain.Shipment, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	return list, nil
}

// UpdateStatus moves a shipment to a new status and enqueues the
// customer notification. The raw status string is canonicalized before
// it is stored. Setting the same status again is a no-op and enqueues
// nothing. Enqueue failures are logged but do not roll back the update.
func (s *Service) UpdateStatus(ctx context.Context, id, rawStatus string) (*domain.Shipment, error) {
	status, ok := domain.ParseShipmentStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, rawStatus)
	}

	shipment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get shipment: %w", err)
	}

	oldStatus := shipment.Status
	if oldStatus == status {
		return shipment, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update shipment status: %w", err)
	}
	shipment.Status = status

	slog.Info("shipment status changed",
		"shipment_id", id,
		"tracking", shipment.Tracking,
		"old_status", oldStatus,
		"new_status", status,
	)

	if err := s.notifier.EnqueuePackageStatus(ctx, shipment.UserID, shipment.Tracking, string(oldStatus), string(status)); err != nil {
		slog.Error("failed to enqueue status notification",
			"shipment_id", id,
			"error", err,
		)
	}

	return shipment, nil
}
