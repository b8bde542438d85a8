package ports

import (
	"context"
	"time"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
)

// AppointmentService is the appointment ledger.
type AppointmentService interface {
	Book(ctx context.Context, userID string, clinicID int64, at time.Time) (*domain.Appointment, error)
	Cancel(ctx context.Context, appointmentID int64) (*domain.Appointment, error)
	Reschedule(ctx context.Context, appointmentID int64, at time.Time) (*domain.Appointment, error)
	Confirm(ctx context.Context, appointmentID int64) (*domain.Appointment, error)
	Get(ctx context.Context, appointmentID int64) (*domain.Appointment, error)
	// Owned is Get restricted to appointments assigned to userID; others
	// are reported as domain.ErrAppointmentNotFound.
	Owned(ctx context.Context, userID string, appointmentID int64) (*domain.Appointment, error)
	ListForUser(ctx context.Context, userID string) ([]domain.AppointmentView, error)
	AddCapacitySlot(ctx context.Context, clinicID int64, at time.Time) (*domain.Appointment, error)
	Remove(ctx context.Context, appointmentID int64) error
}
