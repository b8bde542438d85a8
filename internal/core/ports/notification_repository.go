package ports

import (
	"context"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
)

// NotificationRepository is the append-only notification log.
type NotificationRepository interface {
	// Append returns domain.ErrUserNotFound when the recipient does not exist.
	Append(ctx context.Context, n *domain.Notification) error
	ListByUsername(ctx context.Context, username string) ([]*domain.Notification, error)
}
