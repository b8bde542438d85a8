package domain

import "time"

// AppointmentAction names the ledger operation recorded in the audit trail.
type AppointmentAction string

const (
	ActionBooked      AppointmentAction = "booked"
	ActionSlotAdded   AppointmentAction = "slot_added"
	ActionCanceled    AppointmentAction = "canceled"
	ActionRescheduled AppointmentAction = "rescheduled"
	ActionConfirmed   AppointmentAction = "confirmed"
	ActionRemoved     AppointmentAction = "removed"
)

// AppointmentEvent is one entry of the appointment audit trail.
type AppointmentEvent struct {
	AppointmentID int64             `json:"appointment_id"`
	Action        AppointmentAction `json:"action"`
	Status        AppointmentStatus `json:"status"`
	ClinicID      int64             `json:"clinic_id"`
	UserID        *string           `json:"user_id,omitempty"`
	DateTime      time.Time         `json:"date_time"`
	Actor         string            `json:"actor"`
	RecordedAt    time.Time         `json:"recorded_at"`
}
