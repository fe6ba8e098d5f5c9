package notifications

import (
	"fmt"
	"strings"

	"github.com/suenos-shipping/console/internal/domain"
)

const brandName = "Sueños Shipping"

// statusNotes maps a shipment status (lowercased) to the sentence used
// in package_status bodies. The "read for pickup" entry covers rows
// written by a legacy trigger with the misspelled status.
var statusNotes = map[string]string{
	"received":         "Your package has arrived at our warehouse.",
	"processing":       "Your package is being processed for forwarding.",
	"in transit":       "Your package is on its way.",
	"ready for pickup": "Good news! Your package is ready for pickup at our office.",
	"read for pickup":  "Good news! Your package is ready for pickup at our office.",
	"delivered":        "Your package has been delivered.",
}

const genericStatusNote = "There is an update on your shipment."

// Render builds the subject and body for a queue item. It is a pure
// function of the item's template, payload and tracking plus the target
// profile; identical inputs always produce identical output.
func Render(item *QueueItem, profile *domain.Profile) (subject, body string) {
	account := displayName(profile) + accountSuffix(profile)

	switch item.Template {
	case TemplatePackageStatus:
		oldStatus := payloadString(item.Payload, "old_status")
		newStatus := payloadString(item.Payload, "new_status")
		subject = fmt.Sprintf("%s: %s — Status update", brandName, item.Tracking)
		body = fmt.Sprintf(
			"Hi %s,\n\n%s\n\nStatus changed from %s to %s.\n\n%s",
			account, statusNote(newStatus), oldStatus, newStatus, brandName,
		)

	case TemplateInvoiceApproved:
		subject = fmt.Sprintf("%s: Invoice approved", brandName)
		body = fmt.Sprintf(
			"Hi %s,\n\nYour invoice for shipment %s has been approved. You can settle it from your account at any time.\n\n%s",
			account, item.Tracking, brandName,
		)

	case TemplateBillCreated:
		subject = fmt.Sprintf("%s: New bill for %s", brandName, item.Tracking)
		body = fmt.Sprintf(
			"Hi %s,\n\nA new bill has been added to your account for shipment %s.\n\n%s",
			account, item.Tracking, brandName,
		)

	case TemplateReceiptCreated:
		subject = fmt.Sprintf("%s: Receipt for %s", brandName, item.Tracking)
		body = fmt.Sprintf(
			"Hi %s,\n\nA receipt has been issued to your account for shipment %s.\n\n%s",
			account, item.Tracking, brandName,
		)

	default:
		subject = "Update"
		body = fmt.Sprintf(
			"Hi %s,\n\nThere is an update on your account regarding shipment %s.\n\n%s",
			account, item.Tracking, brandName,
		)
	}

	return subject, body
}

// RenderWelcome builds the one-shot welcome email for a new profile.
func RenderWelcome(profile *domain.Profile) (subject, body string) {
	subject = fmt.Sprintf("Welcome to %s", brandName)
	body = fmt.Sprintf(
		"Hi %s,\n\nWelcome to %s! Your customer number is %s. Quote it whenever you contact us about a shipment.\n\n%s",
		displayName(profile), brandName, profile.CustomerNo, brandName,
	)
	return subject, body
}

// displayName resolves a greeting name: trimmed full name, else the
// local part of the email address, else a neutral fallback.
func displayName(profile *domain.Profile) string {
	if name := strings.TrimSpace(profile.FullName); name != "" {
		return name
	}
	if local, _, found := strings.Cut(profile.Email, "@"); found && local != "" {
		return local
	}
	return "there"
}

// accountSuffix appends the customer number when present.
func accountSuffix(profile *domain.Profile) string {
	if profile.CustomerNo == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", profile.CustomerNo)
}

func statusNote(status string) string {
	if note, ok := statusNotes[strings.ToLower(strings.TrimSpace(status))]; ok {
		return note
	}
	return genericStatusNote
}

// payloadString reads a payload field as a string, tolerating rows whose
// payload carries non-string JSON values.
func payloadString(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
