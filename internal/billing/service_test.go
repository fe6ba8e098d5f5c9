package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suenos-shipping/console/internal/domain"
)

type mockRepository struct {
	invoices map[string]*domain.Invoice
}

func newMockRepository(items ...*domain.Invoice) *mockRepository {
	m := &mockRepository{invoices: make(map[string]*domain.Invoice)}
	for _, inv := range items {
		m.invoices[inv.ID] = inv
	}
	return m
}

func (m *mockRepository) Create(_ context.Context, invoice *domain.Invoice) error {
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *mockRepository) GetByID(_ context.Context, id string) (*domain.Invoice, error) {
	if inv, ok := m.invoices[id]; ok {
		return inv, nil
	}
	return nil, ErrNotFound
}

func (m *mockRepository) ListByUser(_ context.Context, userID string) ([]*domain.Invoice, error) {
	var list []*domain.Invoice
	for _, inv := range m.invoices {
		if inv.UserID == userID {
			list = append(list, inv)
		}
	}
	return list, nil
}

func (m *mockRepository) Approve(_ context.Context, id string) error {
	inv, ok := m.invoices[id]
	if !ok {
		return ErrNotFound
	}
	if inv.Status != domain.InvoiceOpen {
		return ErrAlreadyApproved
	}
	now := time.Now()
	inv.Status = domain.InvoiceApproved
	inv.ApprovedAt = &now
	return nil
}

type mockNotifier struct {
	created  []domain.InvoiceKind
	approved []string // trackings
}

func (m *mockNotifier) EnqueueInvoiceCreated(_ context.Context, _, _ string, kind domain.InvoiceKind) error {
	m.created = append(m.created, kind)
	return nil
}

func (m *mockNotifier) EnqueueInvoiceApproved(_ context.Context, _, tracking string) error {
	m.approved = append(m.approved, tracking)
	return nil
}

func TestCreate_EnqueuesByKind(t *testing.T) {
	tests := []struct {
		name string
		kind domain.InvoiceKind
	}{
		{"bill", domain.InvoiceBill},
		{"receipt", domain.InvoiceReceipt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &mockNotifier{}
			svc := NewService(newMockRepository(), notifier)

			invoice, err := svc.Create(context.Background(), "u1", "TRK1", tt.kind, 2500, "usd")
			require.NoError(t, err)

			assert.Equal(t, tt.kind, invoice.Kind)
			assert.Equal(t, domain.InvoiceOpen, invoice.Status)
			assert.Equal(t, "USD", invoice.Currency)
			assert.Equal(t, []domain.InvoiceKind{tt.kind}, notifier.created)
		})
	}
}

func TestCreate_RejectsUnknownKind(t *testing.T) {
	svc := NewService(newMockRepository(), &mockNotifier{})

	_, err := svc.Create(context.Background(), "u1", "TRK1", "credit-note", 100, "USD")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestApprove_EnqueuesNotification(t *testing.T) {
	repo := newMockRepository(&domain.Invoice{
		ID:       "i1",
		UserID:   "u1",
		Tracking: "TRK1",
		Kind:     domain.InvoiceBill,
		Status:   domain.InvoiceOpen,
	})
	notifier := &mockNotifier{}
	svc := NewService(repo, notifier)

	invoice, err := svc.Approve(context.Background(), "i1")
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceApproved, invoice.Status)
	assert.NotNil(t, invoice.ApprovedAt)
	assert.Equal(t, []string{"TRK1"}, notifier.approved)
}

func TestApprove_TwiceIsConflict(t *testing.T) {
	repo := newMockRepository(&domain.Invoice{
		ID:     "i1",
		UserID: "u1",
		Kind:   domain.InvoiceBill,
		Status: domain.InvoiceApproved,
	})
	notifier := &mockNotifier{}
	svc := NewService(repo, notifier)

	_, err := svc.Approve(context.Background(), "i1")
	require.ErrorIs(t, err, ErrAlreadyApproved)
	assert.Empty(t, notifier.approved)
}

func TestApprove_UnknownInvoice(t *testing.T) {
	svc := NewService(newMockRepository(), &mockNotifier{})

	_, err := svc.Approve(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
