package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suenos-shipping/console/internal/domain"
)

// mockRepository implements Repository for testing and records the
// state transitions the processor issues.
type mockRepository struct {
	items []*QueueItem

	fetchErr error
	claimErr map[string]error
	denied   map[string]bool // ids whose claim loses the race

	fetchedLimit int
	claimed      []string
	sent         []string
	retried      map[string]string // id -> recorded error
	failed       map[string]string
}

func newMockRepository(items ...*QueueItem) *mockRepository {
	return &mockRepository{
		items:    items,
		claimErr: make(map[string]error),
		denied:   make(map[string]bool),
		retried:  make(map[string]string),
		failed:   make(map[string]string),
	}
}

func (m *mockRepository) Enqueue(_ context.Context, item *QueueItem) error {
	m.items = append(m.items, item)
	return nil
}

func (m *mockRepository) FetchPending(_ context.Context, limit int) ([]*QueueItem, error) {
	m.fetchedLimit = limit
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if len(m.items) > limit {
		return m.items[:limit], nil
	}
	return m.items, nil
}

func (m *mockRepository) ClaimPending(_ context.Context, id string) (bool, error) {
	if err := m.claimErr[id]; err != nil {
		return false, err
	}
	if m.denied[id] {
		return false, nil
	}
	m.claimed = append(m.claimed, id)
	return true, nil
}

func (m *mockRepository) MarkAsSent(_ context.Context, id string) error {
	m.sent = append(m.sent, id)
	return nil
}

func (m *mockRepository) MarkForRetry(_ context.Context, id string, sendErr error) error {
	m.retried[id] = sendErr.Error()
	return nil
}

func (m *mockRepository) MarkAsFailed(_ context.Context, id string, sendErr error) error {
	m.failed[id] = sendErr.Error()
	return nil
}

func (m *mockRepository) GetQueueStats(_ context.Context) (*QueueStats, error) {
	return &QueueStats{}, nil
}

// mockProfiles implements ProfileSource.
type mockProfiles struct {
	profiles map[string]*domain.Profile
	errs     map[string]error
}

func newMockProfiles() *mockProfiles {
	return &mockProfiles{
		profiles: make(map[string]*domain.Profile),
		errs:     make(map[string]error),
	}
}

func (m *mockProfiles) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	if err := m.errs[userID]; err != nil {
		return nil, err
	}
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return nil, errors.New("profile not found")
}

// mockSender implements Sender.
type mockSender struct {
	sent    []Message
	sendErr error
	failTo  map[string]error
}

func newMockSender() *mockSender {
	return &mockSender{failTo: make(map[string]error)}
}

func (m *mockSender) Send(_ context.Context, msg Message) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	if err := m.failTo[msg.To]; err != nil {
		return err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func pendingItem(id, userID string, attempts int) *QueueItem {
	return &QueueItem{
		ID:       id,
		UserID:   userID,
		Tracking: "TRK-" + id,
		Template: TemplatePackageStatus,
		Payload:  map[string]any{"old_status": "received", "new_status": "in transit"},
		Status:   QueueStatusPending,
		Attempts: attempts,
	}
}

func addProfile(profiles *mockProfiles, userID, email string) {
	profiles.profiles[userID] = &domain.Profile{
		ID:         userID,
		Email:      email,
		FullName:   "Test Customer",
		CustomerNo: "C1",
		Role:       domain.RoleCustomer,
	}
}

func newTestProcessor(repo *mockRepository, profiles *mockProfiles, sender *mockSender) *Processor {
	return NewProcessor(DefaultProcessorConfig(), repo, profiles, sender)
}

func TestProcessBatch_EmptyQueue(t *testing.T) {
	repo := newMockRepository()
	p := newTestProcessor(repo, newMockProfiles(), newMockSender())

	result, err := p.ProcessBatch(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, BatchResult{}, result)
	assert.Empty(t, repo.claimed)
	assert.Empty(t, repo.sent)
}

func TestProcessBatch_LimitClamping(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		effective int
	}{
		{"zero uses default", 0, DefaultBatchLimit},
		{"negative uses default", -5, DefaultBatchLimit},
		{"within range passes through", 7, 7},
		{"ceiling exactly", 50, 50},
		{"above ceiling is clamped", 1000, MaxBatchLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepository()
			p := newTestProcessor(repo, newMockProfiles(), newMockSender())

			_, err := p.ProcessBatch(context.Background(), tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.effective, repo.fetchedLimit)
		})
	}
}

func TestProcessBatch_SuccessfulCycle(t *testing.T) {
	repo := newMockRepository(pendingItem("n1", "u1", 2))
	profiles := newMockProfiles()
	addProfile(profiles, "u1", "ann@example.com")
	sender := newMockSender()
	p := newTestProcessor(repo, profiles, sender)

	result, err := p.ProcessBatch(context.Background(), 10)
	require.NoError(t, err)

	// Success is terminal regardless of prior attempts.
	assert.Equal(t, BatchResult{Processed: 1, Sent: 1, Failed: 0}, result)
	assert.Equal(t, []string{"n1"}, repo.claimed)
	assert.Equal(t, []string{"n1"}, repo.sent)
	assert.Empty(t, repo.retried)
	assert.Empty(t, repo.failed)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ann@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Subject, "TRK-n1")
}

func TestProcessBatch_FailureBelowLimitRetries(t *testing.T) {
	for _, attempts := range []int{0, 1} {
		repo := newMockRepository(pendingItem("n1", "u1", attempts))
		profiles := newMockProfiles()
		addProfile(profiles, "u1", "ann@example.com")
		sender := newMockSender()
		sender.sendErr = errors.New("smtp exploded")
		p := newTestProcessor(repo, profiles, sender)

		result, err := p.ProcessBatch(context.Background(), 10)
		require.NoError(t, err)

		assert.Equal(t, BatchResult{Processed: 1, Sent: 0, Failed: 1}, result)
		assert.Contains(t, repo.retried["n1"], "smtp exploded")
		assert.Empty(t, repo.failed)
	}
}

func TestProcessBatch_ThirdFailureIsTerminal(t *testing.T) {
	repo := newMockRepository(pendingItem("n1", "u1", 2))
	profiles := newMockProfiles()
	addProfile(profiles, "u1", "ann@example.com")
	sender := newMockSender()
	sender.sendErr = errors.New("still broken")
	p := newTestProcessor(repo, profiles, sender)

	result, err := p.ProcessBatch(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, BatchResult{Processed: 1, Sent: 0, Failed: 1}, result)
	assert.Contains(t, repo.failed["n1"], "still broken")
	assert.Empty(t, repo.retried)
}

func TestProcessBatch_ItemFailureIsIsolated(t *testing.T) {
	repo := newMockRepository(
		pendingItem("n1", "u1", 0),
		pendingItem("n2", "u2", 0),
		pendingItem("n3", "u3", 0),
	)
	profiles := newMockProfiles()
	addProfile(profiles, "u1", "a@example.com")
	profiles.errs["u2"] = errors.New("profile store timeout")
	addProfile(profiles, "u3", "c@example.com")
	sender := newMockSender()
	p := newTestProcessor(repo, profiles, sender)

	result, err := p.ProcessBatch(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, BatchResult{Processed: 3, Sent: 2, Failed: 1}, result)
	assert.Equal(t, []string{"n1", "n3"}, repo.sent)
	assert.Contains(t, repo.retried["n2"], "profile store timeout")

	// Items are processed in queue order.
	assert.Equal(t, []string{"n1", "n2", "n3"}, repo.claimed)
}

func TestProcessBatch_MissingEmailIsFailure(t *testing.T) {
	repo := newMockRepository(pendingItem("n1", "u1", 0))
	profiles := newMockProfiles()
	addProfile(profiles, "u1", "   ")
	p := newTestProcessor(repo, profiles, newMockSender())

	result, err := p.ProcessBatch(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, BatchResult{Processed: 1, Sent: 0, Failed: 1}, result)
	assert.Contains(t, repo.retried["n1"], "no email address")
}

func TestProcessBatch_LostClaimIsSkipped(t *testing.T) {
	repo := newMockRepository(
		pendingItem("n1", "u1", 0),
		pendingItem("n2", "u2", 0),
	)
	repo.denied["n1"] = true
	profiles := newMockProfiles()
	addProfile(profiles, "u1", "a@example.com")
	addProfile(profiles, "u2", "b@example.com")
	p := newTestProcessor(repo, profiles, newMockSender())

	result, err := p.ProcessBatch(context.Background(), 10)
	require.NoError(t, err)

	// The raced item is neither sent nor failed; counts stay consistent.
	assert.Equal(t, BatchResult{Processed: 1, Sent: 1, Failed: 0}, result)
	assert.Equal(t, []string{"n2"}, repo.sent)
}

func TestProcessBatch_ClaimErrorCountsAsFailure(t *testing.T) {
	repo := newMockRepository(pendingItem("n1", "u1", 0))
	repo.claimErr["n1"] = errors.New("connection reset")
	p := newTestProcessor(repo, newMockProfiles(), newMockSender())

	result, err := p.ProcessBatch(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, BatchResult{Processed: 1, Sent: 0, Failed: 1}, result)
}

func TestProcessBatch_FetchErrorAbortsPass(t *testing.T) {
	repo := newMockRepository()
	repo.fetchErr = errors.New("database unreachable")
	p := newTestProcessor(repo, newMockProfiles(), newMockSender())

	_, err := p.ProcessBatch(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database unreachable")
}

func TestProcessBatch_ProcessedEqualsSentPlusFailed(t *testing.T) {
	repo := newMockRepository(
		pendingItem("n1", "u1", 0),
		pendingItem("n2", "u2", 2),
		pendingItem("n3", "u3", 0),
		pendingItem("n4", "u4", 0),
	)
	profiles := newMockProfiles()
	addProfile(profiles, "u1", "a@example.com")
	addProfile(profiles, "u2", "b@example.com")
	addProfile(profiles, "u3", "c@example.com")
	addProfile(profiles, "u4", "d@example.com")
	sender := newMockSender()
	sender.failTo["b@example.com"] = errors.New("mailbox full")
	sender.failTo["d@example.com"] = errors.New("mailbox full")
	p := newTestProcessor(repo, profiles, sender)

	result, err := p.ProcessBatch(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, result.Processed, result.Sent+result.Failed)
	assert.Equal(t, BatchResult{Processed: 4, Sent: 2, Failed: 2}, result)

	// n2 entered with attempts=2, so its failure is terminal; n4 retries.
	assert.Contains(t, repo.failed, "n2")
	assert.Contains(t, repo.retried, "n4")
}
