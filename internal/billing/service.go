package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/suenos-shipping/console/internal/domain"
)

// ErrInvalidKind reports an unrecognized invoice kind.
var ErrInvalidKind = errors.New("invalid invoice kind")

// Notifier enqueues invoice notifications for the queue processor.
type Notifier interface {
	EnqueueInvoiceCreated(ctx context.Context, userID, tracking string, kind domain.InvoiceKind) error
	EnqueueInvoiceApproved(ctx context.Context, userID, tracking string) error
}

// Service implements billing operations.
type Service struct {
	repo     Repository
	notifier Notifier
}

// NewService creates a new billing service.
func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Create stores a bill or receipt and enqueues the matching created
// notification. Enqueue failures are logged but do not fail the create.
func (s *Service) Create(ctx context.Context, userID, tracking string, kind domain.InvoiceKind, amountCents int64, currency string) (*domain.Invoice, error) {
	if kind != domain.InvoiceBill && kind != domain.InvoiceReceipt {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if currency == "" {
		currency = "USD"
	}

	invoice := &domain.Invoice{
		ID:          uuid.NewString(),
		UserID:      userID,
		Tracking:    strings.TrimSpace(tracking),
		Kind:        kind,
		AmountCents: amountCents,
		Currency:    strings.ToUpper(currency),
		Status:      domain.InvoiceOpen,
	}

	if err := s.repo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	slog.Info("invoice created",
		"invoice_id", invoice.ID,
		"user_id", userID,
		"kind", kind,
		"amount_cents", amountCents,
	)

	if err := s.notifier.EnqueueInvoiceCreated(ctx, userID, invoice.Tracking, kind); err != nil {
		slog.Error("failed to enqueue invoice notification", "invoice_id", invoice.ID, "error", err)
	}

	return invoice, nil
}

// ListByUser returns a customer's invoices, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*domain.Invoice, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return list, nil
}

// Approve marks an open invoice approved and enqueues the approval
// notification. Approving twice is a conflict.
func (s *Service) Approve(ctx context.Context, id string) (*domain.Invoice, error) {
	if err := s.repo.Approve(ctx, id); err != nil {
		return nil, fmt.Errorf("approve invoice: %w", err)
	}

	invoice, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	slog.Info("invoice approved", "invoice_id", id, "user_id", invoice.UserID)

	if err := s.notifier.EnqueueInvoiceApproved(ctx, invoice.UserID, invoice.Tracking); err != nil {
		slog.Error("failed to enqueue approval notification", "invoice_id", id, "error", err)
	}

	return invoice, nil
}
