package ports

import (
	"context"
	"time"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
)

// CreateClinicInput carries the data for a new clinic.
type CreateClinicInput struct {
	Name     string
	Address  string
	Phone    string
	Services []string
}

// ClinicInfoUpdate is a partial update of clinic contact details.
type ClinicInfoUpdate struct {
	Address *string
	Phone   *string
}

// ClinicService is the clinic registry.
type ClinicService interface {
	CreateClinic(ctx context.Context, in CreateClinicInput) (*domain.Clinic, error)
	UpdateInfo(ctx context.Context, clinicID int64, upd ClinicInfoUpdate) (*domain.Clinic, error)
	SetAvailability(ctx context.Context, clinicID int64, date time.Time, available bool) error
	Get(ctx context.Context, clinicID int64) (*domain.Clinic, error)
	List(ctx context.Context) ([]*domain.Clinic, error)
}
