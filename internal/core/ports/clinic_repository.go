package ports

import (
	"context"
	"time"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
)

// ClinicRepository defines persistence operations for clinics and their
// per-date availability.
type ClinicRepository interface {
	Create(ctx context.Context, c *domain.Clinic) error
	// FindByID returns the clinic with its availability map populated.
	FindByID(ctx context.Context, id int64) (*domain.Clinic, error)
	List(ctx context.Context) ([]*domain.Clinic, error)
	UpdateInfo(ctx context.Context, id int64, address, phone *string) error
	// SetAvailability upserts the flag for the date; last write wins.
	SetAvailability(ctx context.Context, id int64, date time.Time, available bool) error
}
