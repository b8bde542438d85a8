package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

// AdminService gates privileged registry, ledger and notification
// operations behind the staff role. Staff bound to a clinic may only
// touch that clinic.
type AdminService struct {
	users         ports.UserRepository
	clinics       ports.ClinicService
	appointments  ports.AppointmentService
	notifications ports.NotificationService
	events        ports.EventRepository
	feed          ports.FeedService
	log           zerolog.Logger
}

var _ ports.AdminService = (*AdminService)(nil)

func NewAdminService(
	users ports.UserRepository,
	clinics ports.ClinicService,
	appointments ports.AppointmentService,
	notifications ports.NotificationService,
	events ports.EventRepository,
	feed ports.FeedService,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		users:         users,
		clinics:       clinics,
		appointments:  appointments,
		notifications: notifications,
		events:        events,
		feed:          feed,
		log:           log,
	}
}

// Context resolves the actor into an AdminContext. Non-staff users get
// domain.ErrForbidden.
func (s *AdminService) Context(ctx context.Context, actorID string) (*domain.AdminContext, error) {
	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}
	if !user.IsStaff() {
		return nil, domain.ErrForbidden
	}
	clinicID, err := s.users.StaffClinic(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("admin context: %w", err)
	}
	return &domain.AdminContext{UserID: user.ID, Username: user.Username, ClinicID: clinicID}, nil
}

// forClinic returns the admin context when the actor may manage clinicID.
func (s *AdminService) forClinic(ctx context.Context, actorID string, clinicID int64) (*domain.AdminContext, error) {
	ac, err := s.Context(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !ac.CanManage(clinicID) {
		s.log.Warn().Str("actor", ac.Username).Int64("clinic_id", clinicID).Msg("staff outside clinic scope")
		return nil, domain.ErrForbidden
	}
	return ac, nil
}

// unscoped returns the admin context of staff not bound to any clinic.
func (s *AdminService) unscoped(ctx context.Context, actorID string) (*domain.AdminContext, error) {
	ac, err := s.Context(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if ac.ClinicID != nil {
		return nil, domain.ErrForbidden
	}
	return ac, nil
}

func (s *AdminService) CreateClinic(ctx context.Context, actorID string, in ports.CreateClinicInput) (*domain.Clinic, error) {
	if _, err := s.unscoped(ctx, actorID); err != nil {
		return nil, err
	}
	return s.clinics.CreateClinic(ctx, in)
}

func (s *AdminService) UpdateClinicInfo(ctx context.Context, actorID string, clinicID int64, upd ports.ClinicInfoUpdate) (*domain.Clinic, error) {
	if _, err := s.forClinic(ctx, actorID, clinicID); err != nil {
		return nil, err
	}
	return s.clinics.UpdateInfo(ctx, clinicID, upd)
}

func (s *AdminService) SetAvailability(ctx context.Context, actorID string, clinicID int64, date time.Time, available bool) error {
	if _, err := s.forClinic(ctx, actorID, clinicID); err != nil {
		return err
	}
	return s.clinics.SetAvailability(ctx, clinicID, date, available)
}

func (s *AdminService) AddCapacitySlot(ctx context.Context, actorID string, clinicID int64, at time.Time) (*domain.Appointment, error) {
	ac, err := s.forClinic(ctx, actorID, clinicID)
	if err != nil {
		return nil, err
	}
	return s.appointments.AddCapacitySlot(ports.WithActor(ctx, ac.Username), clinicID, at)
}

// RemoveAppointment hard-deletes an appointment. Unknown ids are a no-op.
func (s *AdminService) RemoveAppointment(ctx context.Context, actorID string, appointmentID int64) error {
	ac, err := s.Context(ctx, actorID)
	if err != nil {
		return err
	}
	a, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return nil
		}
		return err
	}
	if !ac.CanManage(a.ClinicID) {
		return domain.ErrForbidden
	}
	return s.appointments.Remove(ports.WithActor(ctx, ac.Username), appointmentID)
}

func (s *AdminService) ConfirmAppointment(ctx context.Context, actorID string, appointmentID int64) (*domain.Appointment, error) {
	ac, err := s.managedAppointment(ctx, actorID, appointmentID)
	if err != nil {
		return nil, err
	}
	return s.appointments.Confirm(ports.WithActor(ctx, ac.Username), appointmentID)
}

func (s *AdminService) AppointmentHistory(ctx context.Context, actorID string, appointmentID int64) ([]*domain.AppointmentEvent, error) {
	if _, err := s.managedAppointment(ctx, actorID, appointmentID); err != nil {
		return nil, err
	}
	return s.events.ListByAppointment(ctx, appointmentID)
}

func (s *AdminService) managedAppointment(ctx context.Context, actorID string, appointmentID int64) (*domain.AdminContext, error) {
	ac, err := s.Context(ctx, actorID)
	if err != nil {
		return nil, err
	}
	a, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !ac.CanManage(a.ClinicID) {
		return nil, domain.ErrForbidden
	}
	return ac, nil
}

func (s *AdminService) Broadcast(ctx context.Context, actorID string, usernames []string, message string) (ports.BulkResult, error) {
	ac, err := s.Context(ctx, actorID)
	if err != nil {
		return ports.BulkResult{}, err
	}
	if len(usernames) == 0 {
		return ports.BulkResult{}, fmt.Errorf("broadcast: no recipients: %w", domain.ErrInvalidInput)
	}
	s.log.Info().Str("actor", ac.Username).Int("recipients", len(usernames)).Msg("broadcast requested")
	return s.notifications.SendBulk(ctx, usernames, message), nil
}

// AssignClinic binds a staff member to a clinic. Only unscoped staff may
// assign.
func (s *AdminService) AssignClinic(ctx context.Context, actorID, staffUserID string, clinicID int64) error {
	ac, err := s.unscoped(ctx, actorID)
	if err != nil {
		return err
	}
	target, err := s.users.FindByID(ctx, staffUserID)
	if err != nil {
		return err
	}
	if !target.IsStaff() {
		return fmt.Errorf("assign clinic: %s is not staff: %w", target.Username, domain.ErrInvalidInput)
	}
	if _, err := s.clinics.Get(ctx, clinicID); err != nil {
		return err
	}
	if err := s.users.AssignStaffClinic(ctx, target.ID, clinicID); err != nil {
		return fmt.Errorf("assign clinic: %w", err)
	}
	s.log.Info().Str("actor", ac.Username).Str("staff", target.Username).Int64("clinic_id", clinicID).Msg("staff assigned to clinic")
	return nil
}

func (s *AdminService) AdjustCapacity(ctx context.Context, actorID string, adj ports.CapacityAdjustment) (json.RawMessage, error) {
	if _, err := s.forClinic(ctx, actorID, int64(adj.ClinicCode)); err != nil {
		return nil, err
	}
	if adj.ReservedAppointments < 0 {
		return nil, fmt.Errorf("adjust capacity: negative reservation count: %w", domain.ErrInvalidInput)
	}
	return s.feed.AdjustCapacity(ctx, adj)
}
