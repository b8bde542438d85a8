package ports

import (
	"context"
	"time"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
)

// AppointmentRepository defines persistence operations for the ledger.
// Slot checks and the writes that depend on them must run inside
// Transactor.WithinClinicLock so they observe a consistent view.
type AppointmentRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Appointment, error)
	// FindActiveAt returns the non-canceled appointment occupying the slot,
	// ignoring excludeID (0 = none). Returns nil, nil when the slot is free.
	FindActiveAt(ctx context.Context, clinicID int64, at time.Time, excludeID int64) (*domain.Appointment, error)
	// Create assigns a.ID; a unique violation maps to domain.ErrSlotTaken.
	Create(ctx context.Context, a *domain.Appointment) error
	AssignUser(ctx context.Context, id int64, userID string, status domain.AppointmentStatus) error
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	UpdateDateTime(ctx context.Context, id int64, at time.Time, status domain.AppointmentStatus) error
	// Delete removes the row; a missing id is not an error.
	Delete(ctx context.Context, id int64) error
	// ListByUser joins clinic names, falling back to domain.UnknownClinicName.
	ListByUser(ctx context.Context, userID string) ([]domain.AppointmentView, error)
}
