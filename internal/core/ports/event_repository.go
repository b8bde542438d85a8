package ports

import (
	"context"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
)

// EventRepository persists the appointment audit trail.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.AppointmentEvent) error
	ListByAppointment(ctx context.Context, appointmentID int64) ([]*domain.AppointmentEvent, error)
}
