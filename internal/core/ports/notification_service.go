package ports

import (
	"context"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
)

// Message is an outbound delivery (email/SMS stand-in).
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// Courier hands messages to out-of-band delivery. Deliver must not block.
type Courier interface {
	Deliver(msg Message)
}

// DeliveryGateway performs the actual out-of-band send.
type DeliveryGateway interface {
	Send(ctx context.Context, msg Message) error
}

// BulkResult reports the outcome of SendBulk per recipient.
type BulkResult struct {
	Sent   []string
	Failed map[string]error
}

// NotificationService appends to the notification log and triggers delivery.
type NotificationService interface {
	Send(ctx context.Context, username, message string) (*domain.Notification, error)
	SendBulk(ctx context.Context, usernames []string, message string) BulkResult
	List(ctx context.Context, username string) ([]*domain.Notification, error)
}
