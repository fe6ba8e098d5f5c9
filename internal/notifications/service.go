package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/suenos-shipping/console/internal/domain"
)

// Service enqueues notifications for the processor and handles the
// one-shot welcome email. Queue rows are written here by the console's
// triggers (status change, invoice approval, bill/receipt creation).
type Service struct {
	repo   Repository
	sender Sender
}

// NewService creates a notification service.
func NewService(repo Repository, sender Sender) *Service {
	return &Service{repo: repo, sender: sender}
}

func (s *Service) enqueue(ctx context.Context, userID, tracking string, template Template, payload map[string]any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	item := &QueueItem{
		ID:       uuid.NewString(),
		UserID:   userID,
		Tracking: tracking,
		Template: template,
		Payload:  payload,
		Status:   QueueStatusPending,
	}
	if err := s.repo.Enqueue(ctx, item); err != nil {
		return fmt.Errorf("enqueue %s notification: %w", template, err)
	}

	slog.Info("notification enqueued",
		"item_id", item.ID,
		"user_id", userID,
		"template", template,
		"tracking", tracking,
	)
	return nil
}

// EnqueuePackageStatus queues a package_status notification for a
// shipment status change.
func (s *Service) EnqueuePackageStatus(ctx context.Context, userID, tracking, oldStatus, newStatus string) error {
	return s.enqueue(ctx, userID, tracking, TemplatePackageStatus, map[string]any{
		"old_status": oldStatus,
		"new_status": newStatus,
	})
}

// EnqueueInvoiceApproved queues an invoice_approved notification.
func (s *Service) EnqueueInvoiceApproved(ctx context.Context, userID, tracking string) error {
	return s.enqueue(ctx, userID, tracking, TemplateInvoiceApproved, nil)
}

// EnqueueInvoiceCreated queues a bill_created or receipt_created
// notification depending on the invoice kind.
func (s *Service) EnqueueInvoiceCreated(ctx context.Context, userID, tracking string, kind domain.InvoiceKind) error {
	template := TemplateBillCreated
	if kind == domain.InvoiceReceipt {
		template = TemplateReceiptCreated
	}
	return s.enqueue(ctx, userID, tracking, template, nil)
}

// ProfileCreated sends the welcome email directly, without queueing.
// Called as a hook when a customer profile is created.
func (s *Service) ProfileCreated(ctx context.Context, profile *domain.Profile) error {
	if profile.Email == "" {
		return fmt.Errorf("profile %s has no email address", profile.ID)
	}

	subject, body := RenderWelcome(profile)
	if err := s.sender.Send(ctx, Message{To: profile.Email, Subject: subject, Body: body}); err != nil {
		return fmt.Errorf("send welcome email: %w", err)
	}

	slog.Info("welcome email sent", "user_id", profile.ID)
	return nil
}

// QueueStats returns queue counts by status for the console dashboard
// and refreshes the queue size metrics as a side effect.
func (s *Service) QueueStats(ctx context.Context) (*QueueStats, error) {
	stats, err := s.repo.GetQueueStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("get queue stats: %w", err)
	}
	RecordQueueStats(stats)
	return stats, nil
}
