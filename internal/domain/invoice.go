package domain

import "time"

// InvoiceKind distinguishes bills (customer owes) from receipts (customer paid).
type InvoiceKind string

const (
	InvoiceBill    InvoiceKind = "bill"
	InvoiceReceipt InvoiceKind = "receipt"
)

// InvoiceStatus is the approval state of an invoice.
type InvoiceStatus string

const (
	InvoiceOpen     InvoiceStatus = "open"
	InvoiceApproved InvoiceStatus = "approved"
)

// Invoice is a bill or receipt attached to a customer's shipment.
type Invoice struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Tracking    string        `json:"tracking"`
	Kind        InvoiceKind   `json:"kind"`
	AmountCents int64         `json:"amount_cents"`
	Currency    string        `json:"currency"`
	Status      InvoiceStatus `json:"status"`
	ApprovedAt  *time.Time    `json:"approved_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
