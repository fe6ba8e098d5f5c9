package notifications

import "time"

// QueueStatus represents the lifecycle state of a queue item.
type QueueStatus string

// Queue statuses. Sent and failed are terminal.
const (
	QueueStatusPending    QueueStatus = "pending"
	QueueStatusProcessing QueueStatus = "processing"
	QueueStatusSent       QueueStatus = "sent"
	QueueStatusFailed     QueueStatus = "failed"
)

// Template selects which message variant a queue item renders.
type Template string

// Known templates. Anything else falls back to a generic message.
const (
	TemplatePackageStatus   Template = "package_status"
	TemplateInvoiceApproved Template = "invoice_approved"
	TemplateBillCreated     Template = "bill_created"
	TemplateReceiptCreated  Template = "receipt_created"
)

// QueueItem represents one outbound customer notification awaiting send.
type QueueItem struct {
	ID        string
	UserID    string
	Tracking  string
	Template  Template
	Payload   map[string]any
	Status    QueueStatus
	Attempts  int
	SentAt    *time.Time
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QueueStats counts queue items by status.
type QueueStats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
}
