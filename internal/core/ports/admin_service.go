package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
)

// AdminService runs privileged operations on behalf of a staff user.
// Every method resolves the actor into a domain.AdminContext first and
// fails with domain.ErrForbidden for non-staff users.
type AdminService interface {
	Context(ctx context.Context, actorID string) (*domain.AdminContext, error)
	CreateClinic(ctx context.Context, actorID string, in CreateClinicInput) (*domain.Clinic, error)
	UpdateClinicInfo(ctx context.Context, actorID string, clinicID int64, upd ClinicInfoUpdate) (*domain.Clinic, error)
	SetAvailability(ctx context.Context, actorID string, clinicID int64, date time.Time, available bool) error
	AddCapacitySlot(ctx context.Context, actorID string, clinicID int64, at time.Time) (*domain.Appointment, error)
	RemoveAppointment(ctx context.Context, actorID string, appointmentID int64) error
	ConfirmAppointment(ctx context.Context, actorID string, appointmentID int64) (*domain.Appointment, error)
	AppointmentHistory(ctx context.Context, actorID string, appointmentID int64) ([]*domain.AppointmentEvent, error)
	Broadcast(ctx context.Context, actorID string, usernames []string, message string) (BulkResult, error)
	AssignClinic(ctx context.Context, actorID, staffUserID string, clinicID int64) error
	AdjustCapacity(ctx context.Context, actorID string, adj CapacityAdjustment) (json.RawMessage, error)
}
