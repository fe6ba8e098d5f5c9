package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Batch limits. A requested limit above the ceiling is clamped, not
// rejected.
const (
	DefaultBatchLimit = 20
	MaxBatchLimit     = 50
)

// ProcessorConfig contains queue processing configuration.
type ProcessorConfig struct {
	// MaxAttempts is the attempt count at which a failing item becomes
	// terminally failed instead of returning to pending.
	MaxAttempts int
}

// DefaultProcessorConfig returns the default processor configuration.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{MaxAttempts: 3}
}

// Processor drains the notification queue one batch at a time. Items are
// processed strictly sequentially; each item's outcome is isolated from
// the rest of the batch.
type Processor struct {
	config   ProcessorConfig
	repo     Repository
	profiles ProfileSource
	sender   Sender
}

// NewProcessor creates a queue processor.
func NewProcessor(config ProcessorConfig, repo Repository, profiles ProfileSource, sender Sender) *Processor {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultProcessorConfig().MaxAttempts
	}
	return &Processor{
		config:   config,
		repo:     repo,
		profiles: profiles,
		sender:   sender,
	}
}

// BatchResult reports one batch pass. Processed = Sent + Failed always
// holds for a completed pass.
type BatchResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// ProcessBatch dequeues up to limit pending items, oldest first, and
// runs the full claim/render/send/outcome cycle for each. A limit of
// zero or less selects the default. An empty queue is a success with
// zero counts. Only a dequeue failure aborts the pass; per-item errors
// are converted into retry or terminal state transitions.
func (p *Processor) ProcessBatch(ctx context.Context, limit int) (BatchResult, error) {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	if limit > MaxBatchLimit {
		limit = MaxBatchLimit
	}

	items, err := p.repo.FetchPending(ctx, limit)
	if err != nil {
		return BatchResult{}, fmt.Errorf("fetch pending notifications: %w", err)
	}

	var result BatchResult
	if len(items) == 0 {
		return result, nil
	}

	recordQueueFetched(len(items))

	for _, item := range items {
		claimed, err := p.repo.ClaimPending(ctx, item.ID)
		if err != nil {
			// Claim write failed; count the cycle as a failure so the
			// item is not silently dropped from the pass.
			result.Processed++
			result.Failed++
			p.recordFailure(ctx, item, fmt.Errorf("claim item: %w", err))
			continue
		}
		if !claimed {
			// A concurrent run took it between fetch and claim.
			slog.Debug("skipping already claimed notification", "item_id", item.ID)
			continue
		}

		result.Processed++

		start := time.Now()
		if err := p.deliver(ctx, item); err != nil {
			result.Failed++
			p.recordFailure(ctx, item, err)
			continue
		}

		if err := p.repo.MarkAsSent(ctx, item.ID); err != nil {
			slog.Error("failed to mark as sent", "item_id", item.ID, "error", err)
		}
		result.Sent++
		recordProcessed(item.Template, "sent")
		recordSendDuration(item.Template, time.Since(start))

		slog.Debug("notification sent",
			"item_id", item.ID,
			"template", item.Template,
			"duration", time.Since(start),
		)
	}

	return result, nil
}

// deliver resolves the target profile, renders the message and sends it.
// Any error is a single-cycle failure; retry bookkeeping happens in the
// caller.
func (p *Processor) deliver(ctx context.Context, item *QueueItem) error {
	profile, err := p.profiles.GetProfile(ctx, item.UserID)
	if err != nil {
		return fmt.Errorf("resolve profile %s: %w", item.UserID, err)
	}
	if strings.TrimSpace(profile.Email) == "" {
		return errors.New("profile has no email address")
	}

	subject, body := Render(item, profile)

	if err := p.sender.Send(ctx, Message{To: profile.Email, Subject: subject, Body: body}); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// recordFailure increments attempts and decides between another pass
// and terminal failure. Attempts are counted once per failed cycle.
func (p *Processor) recordFailure(ctx context.Context, item *QueueItem, cycleErr error) {
	attempts := item.Attempts + 1

	slog.Warn("notification cycle failed",
		"item_id", item.ID,
		"template", item.Template,
		"attempt", attempts,
		"max_attempts", p.config.MaxAttempts,
		"error", cycleErr,
	)

	if attempts >= p.config.MaxAttempts {
		if markErr := p.repo.MarkAsFailed(ctx, item.ID, cycleErr); markErr != nil {
			slog.Error("failed to mark as failed", "item_id", item.ID, "error", markErr)
		}
		recordProcessed(item.Template, "failed")
		return
	}

	if markErr := p.repo.MarkForRetry(ctx, item.ID, cycleErr); markErr != nil {
		slog.Error("failed to mark for retry", "item_id", item.ID, "error", markErr)
	}
	recordProcessed(item.Template, "retry")
}
