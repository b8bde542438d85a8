package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

const slotDisplayLayout = "2006-01-02 15:04"

// AppointmentService implements the appointment ledger. Every
// check-then-write on a slot runs under the clinic lock.
type AppointmentService struct {
	appointments  ports.AppointmentRepository
	clinics       ports.ClinicRepository
	users         ports.UserRepository
	tx            ports.Transactor
	notifications ports.NotificationService
	events        ports.EventRepository
	log           zerolog.Logger
	now           func() time.Time
}

var _ ports.AppointmentService = (*AppointmentService)(nil)

func NewAppointmentService(
	appointments ports.AppointmentRepository,
	clinics ports.ClinicRepository,
	users ports.UserRepository,
	tx ports.Transactor,
	notifications ports.NotificationService,
	events ports.EventRepository,
	log zerolog.Logger,
) *AppointmentService {
	return &AppointmentService{
		appointments:  appointments,
		clinics:       clinics,
		users:         users,
		tx:            tx,
		notifications: notifications,
		events:        events,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Book reserves the slot for userID. An open capacity slot at the same time
// is handed to the patient; a slot held by another patient fails with
// domain.ErrSlotTaken.
func (s *AppointmentService) Book(ctx context.Context, userID string, clinicID int64, at time.Time) (*domain.Appointment, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}
	clinic, err := s.clinics.FindByID(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}

	slot := domain.SlotTime(at)
	var booked *domain.Appointment
	err = s.tx.WithinClinicLock(ctx, clinicID, func(ctx context.Context) error {
		existing, err := s.appointments.FindActiveAt(ctx, clinicID, slot, 0)
		if err != nil {
			return err
		}
		if existing != nil {
			if !existing.IsOpenSlot() {
				return domain.ErrSlotTaken
			}
			if err := s.appointments.AssignUser(ctx, existing.ID, userID, domain.StatusPending); err != nil {
				return err
			}
			existing.UserID = &userID
			existing.Status = domain.StatusPending
			existing.UpdatedAt = s.now()
			booked = existing
			return nil
		}

		now := s.now()
		a := &domain.Appointment{
			Status:    domain.StatusPending,
			DateTime:  slot,
			UserID:    &userID,
			ClinicID:  clinicID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.appointments.Create(ctx, a); err != nil {
			return err
		}
		booked = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}

	s.log.Info().
		Int64("appointment_id", booked.ID).
		Int64("clinic_id", clinicID).
		Str("user_id", userID).
		Time("date_time", slot).
		Msg("appointment booked")

	s.notify(ctx, user.Username, fmt.Sprintf("Your appointment at %s on %s is booked (pending confirmation).", clinic.Name, slot.Format(slotDisplayLayout)))
	s.audit(ctx, booked, domain.ActionBooked)
	return booked, nil
}

// Cancel marks the appointment canceled. Canceling twice is a no-op.
func (s *AppointmentService) Cancel(ctx context.Context, appointmentID int64) (*domain.Appointment, error) {
	a, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("cancel: %w", err)
	}
	if a.Status == domain.StatusCanceled {
		return a, nil
	}
	if !a.Status.CanTransitionTo(domain.StatusCanceled) {
		return nil, fmt.Errorf("cancel: %w (from %s)", domain.ErrInvalidTransition, a.Status)
	}

	if err := s.appointments.UpdateStatus(ctx, a.ID, domain.StatusCanceled); err != nil {
		return nil, fmt.Errorf("cancel: %w", err)
	}
	a.Status = domain.StatusCanceled
	a.UpdatedAt = s.now()

	s.log.Info().Int64("appointment_id", a.ID).Msg("appointment canceled")
	s.notifyOwner(ctx, a, fmt.Sprintf("Your appointment on %s has been canceled.", a.DateTime.Format(slotDisplayLayout)))
	s.audit(ctx, a, domain.ActionCanceled)
	return a, nil
}

// Reschedule moves the appointment to a new slot and resets it to pending.
// A canceled appointment is revived when the target slot is free.
func (s *AppointmentService) Reschedule(ctx context.Context, appointmentID int64, at time.Time) (*domain.Appointment, error) {
	current, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("reschedule: %w", err)
	}

	slot := domain.SlotTime(at)
	var moved *domain.Appointment
	err = s.tx.WithinClinicLock(ctx, current.ClinicID, func(ctx context.Context) error {
		a, err := s.appointments.FindByID(ctx, appointmentID)
		if err != nil {
			return err
		}
		if !a.Status.CanTransitionTo(domain.StatusPending) {
			return fmt.Errorf("%w (from %s)", domain.ErrInvalidTransition, a.Status)
		}
		other, err := s.appointments.FindActiveAt(ctx, a.ClinicID, slot, a.ID)
		if err != nil {
			return err
		}
		if other != nil {
			return domain.ErrSlotTaken
		}
		if err := s.appointments.UpdateDateTime(ctx, a.ID, slot, domain.StatusPending); err != nil {
			return err
		}
		a.DateTime = slot
		a.Status = domain.StatusPending
		a.UpdatedAt = s.now()
		moved = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reschedule: %w", err)
	}

	s.log.Info().Int64("appointment_id", moved.ID).Time("date_time", slot).Msg("appointment rescheduled")
	s.notifyOwner(ctx, moved, fmt.Sprintf("Your appointment has been moved to %s.", slot.Format(slotDisplayLayout)))
	s.audit(ctx, moved, domain.ActionRescheduled)
	return moved, nil
}

// Confirm moves a booked pending appointment to confirmed.
func (s *AppointmentService) Confirm(ctx context.Context, appointmentID int64) (*domain.Appointment, error) {
	a, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}
	if a.IsOpenSlot() || !a.Status.CanTransitionTo(domain.StatusConfirmed) {
		return nil, fmt.Errorf("confirm: %w (from %s)", domain.ErrInvalidTransition, a.Status)
	}

	if err := s.appointments.UpdateStatus(ctx, a.ID, domain.StatusConfirmed); err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}
	a.Status = domain.StatusConfirmed
	a.UpdatedAt = s.now()

	s.log.Info().Int64("appointment_id", a.ID).Msg("appointment confirmed")
	s.notifyOwner(ctx, a, fmt.Sprintf("Your appointment on %s is confirmed.", a.DateTime.Format(slotDisplayLayout)))
	s.audit(ctx, a, domain.ActionConfirmed)
	return a, nil
}

func (s *AppointmentService) Get(ctx context.Context, appointmentID int64) (*domain.Appointment, error) {
	return s.appointments.FindByID(ctx, appointmentID)
}

func (s *AppointmentService) Owned(ctx context.Context, userID string, appointmentID int64) (*domain.Appointment, error) {
	a, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !a.BelongsTo(userID) {
		return nil, domain.ErrAppointmentNotFound
	}
	return a, nil
}

func (s *AppointmentService) ListForUser(ctx context.Context, userID string) ([]domain.AppointmentView, error) {
	return s.appointments.ListByUser(ctx, userID)
}

// AddCapacitySlot creates an unassigned pending appointment that patients
// can book into.
func (s *AppointmentService) AddCapacitySlot(ctx context.Context, clinicID int64, at time.Time) (*domain.Appointment, error) {
	if _, err := s.clinics.FindByID(ctx, clinicID); err != nil {
		return nil, fmt.Errorf("add capacity slot: %w", err)
	}

	slot := domain.SlotTime(at)
	var created *domain.Appointment
	err := s.tx.WithinClinicLock(ctx, clinicID, func(ctx context.Context) error {
		existing, err := s.appointments.FindActiveAt(ctx, clinicID, slot, 0)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrSlotTaken
		}
		now := s.now()
		a := &domain.Appointment{
			Status:    domain.StatusPending,
			DateTime:  slot,
			ClinicID:  clinicID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.appointments.Create(ctx, a); err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add capacity slot: %w", err)
	}

	s.log.Info().Int64("appointment_id", created.ID).Int64("clinic_id", clinicID).Time("date_time", slot).Msg("capacity slot added")
	s.audit(ctx, created, domain.ActionSlotAdded)
	return created, nil
}

// Remove hard-deletes the appointment. Unknown ids are ignored.
func (s *AppointmentService) Remove(ctx context.Context, appointmentID int64) error {
	a, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			s.log.Debug().Int64("appointment_id", appointmentID).Msg("remove: appointment not found, nothing to do")
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	if err := s.appointments.Delete(ctx, appointmentID); err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	s.log.Info().Int64("appointment_id", appointmentID).Msg("appointment removed")
	s.audit(ctx, a, domain.ActionRemoved)
	return nil
}

// notifyOwner and audit are side effects; failures are logged only.
func (s *AppointmentService) notifyOwner(ctx context.Context, a *domain.Appointment, msg string) {
	if a.IsOpenSlot() {
		return
	}
	user, err := s.users.FindByID(ctx, *a.UserID)
	if err != nil {
		s.log.Warn().Err(err).Int64("appointment_id", a.ID).Msg("notify: owner lookup failed")
		return
	}
	s.notify(ctx, user.Username, msg)
}

func (s *AppointmentService) notify(ctx context.Context, username, msg string) {
	if _, err := s.notifications.Send(ctx, username, msg); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to send appointment notification")
	}
}

func (s *AppointmentService) audit(ctx context.Context, a *domain.Appointment, action domain.AppointmentAction) {
	event := &domain.AppointmentEvent{
		AppointmentID: a.ID,
		Action:        action,
		Status:        a.Status,
		ClinicID:      a.ClinicID,
		UserID:        a.UserID,
		DateTime:      a.DateTime,
		Actor:         ports.ActorFromContext(ctx),
		RecordedAt:    s.now(),
	}
	if err := s.events.InsertEvent(ctx, event); err != nil {
		s.log.Warn().Err(err).Int64("appointment_id", a.ID).Str("action", string(action)).Msg("failed to insert audit event")
	}
}
