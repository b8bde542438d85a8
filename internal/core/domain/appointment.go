package domain

import "time"

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCanceled  AppointmentStatus = "canceled"
)

// validTransitions defines the allowed state machine transitions.
// Reschedule moves any state back to pending, which is why canceled is not
// terminal.
var validTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCanceled, StatusPending},
	StatusConfirmed: {StatusCanceled, StatusPending},
	StatusCanceled:  {StatusPending},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment is a booking (or an open capacity slot when UserID is nil)
// at a clinic for a minute-granular time.
type Appointment struct {
	ID        int64             `json:"id"`
	Status    AppointmentStatus `json:"status"`
	DateTime  time.Time         `json:"date_time"`
	UserID    *string           `json:"user_id"`
	ClinicID  int64             `json:"clinic_id"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// IsOpenSlot reports whether the appointment is capacity with no patient.
func (a *Appointment) IsOpenSlot() bool {
	return a.UserID == nil
}

// Active reports whether the appointment still occupies its slot.
func (a *Appointment) Active() bool {
	return a.Status != StatusCanceled
}

// BelongsTo reports whether the appointment is assigned to userID.
func (a *Appointment) BelongsTo(userID string) bool {
	return a.UserID != nil && *a.UserID == userID
}

// AppointmentView is an appointment annotated with its clinic's display name.
type AppointmentView struct {
	Appointment
	ClinicName string `json:"clinic_name"`
}

// SlotTime truncates t to minute granularity in UTC so equal slots compare equal.
func SlotTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}
