package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/suenos-shipping/console/internal/domain"
)

// ErrEmptyBody reports a message with no content after trimming.
var ErrEmptyBody = errors.New("message body is empty")

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service implements the per-customer message thread.
type Service struct {
	repo Repository
}

// NewService creates a new chat service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Post appends a message to a customer's thread. The author is the
// authenticated staff caller; customers post through their own app.
func (s *Service) Post(ctx context.Context, userID, authorID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}

	message := &domain.Message{
		ID:       uuid.NewString(),
		UserID:   userID,
		AuthorID: authorID,
		Body:     body,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return message, nil
}

// List returns a customer's thread, oldest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	messages, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}
