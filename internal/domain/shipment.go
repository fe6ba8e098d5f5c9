package domain

import (
	"strings"
	"time"
)

// ShipmentStatus is the canonical lifecycle stage of a forwarded package.
// Stored lowercase; display casing is a presentation concern.
type ShipmentStatus string

const (
	ShipmentReceived       ShipmentStatus = "received"
	ShipmentProcessing     ShipmentStatus = "processing"
	ShipmentInTransit      ShipmentStatus = "in transit"
	ShipmentReadyForPickup ShipmentStatus = "ready for pickup"
	ShipmentDelivered      ShipmentStatus = "delivered"
)

// ParseShipmentStatus matches s case-insensitively against the known
// statuses. Returns false when s is not a recognized status.
func ParseShipmentStatus(s string) (ShipmentStatus, bool) {
	switch normalized := ShipmentStatus(strings.ToLower(strings.TrimSpace(s))); normalized {
	case ShipmentReceived, ShipmentProcessing, ShipmentInTransit, ShipmentReadyForPickup, ShipmentDelivered:
		return normalized, true
	default:
		return "", false
	}
}

// Shipment is a package handled for a customer.
type Shipment struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Tracking    string         `json:"tracking"`
	Status      ShipmentStatus `json:"status"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
