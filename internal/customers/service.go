package customers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/suenos-shipping/console/internal/domain"
)

// Notifier is the hook fired after a profile is created. The welcome
// email goes out once, directly, without touching the queue.
type Notifier interface {
	ProfileCreated(ctx context.Context, profile *domain.Profile) error
}

// Service implements customer profile operations.
type Service struct {
	repo     Repository
	notifier Notifier
}

// NewService creates a new customers service.
func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

const (
	defaultSearchLimit = 25
	maxSearchLimit     = 100
)

// Create stores a new customer profile and fires the welcome hook.
// A failed welcome email does not fail the creation; it is logged and
// the profile stands.
func (s *Service) Create(ctx context.Context, email, fullName string, role domain.Role) (*domain.Profile, error) {
	if role == "" {
		role = domain.RoleCustomer
	}

	profile := &domain.Profile{
		ID:       uuid.NewString(),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		FullName: strings.TrimSpace(fullName),
		Role:     role,
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	slog.Info("profile created",
		"user_id", profile.ID,
		"customer_no", profile.CustomerNo,
		"role", profile.Role,
	)

	if s.notifier != nil {
		if err := s.notifier.ProfileCreated(ctx, profile); err != nil {
			slog.Warn("welcome email failed", "user_id", profile.ID, "error", err)
		}
	}

	return profile, nil
}

// Get returns one profile by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Profile, error) {
	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// Search matches profiles by email or customer number, case-insensitive
// substring. An empty query lists the most recent profiles.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*domain.Profile, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	profiles, err := s.repo.Search(ctx, strings.TrimSpace(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	return profiles, nil
}
