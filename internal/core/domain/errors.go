package domain

import "errors"

// Sentinel errors returned by the core services. Callers match them with
// errors.Is; adapters wrap them with context using %w.
var (
	ErrDuplicateUsername        = errors.New("username already exists")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrUserNotFound             = errors.New("user not found")
	ErrClinicNotFound           = errors.New("clinic not found")
	ErrAppointmentNotFound      = errors.New("appointment not found")
	ErrSlotTaken                = errors.New("time slot already booked")
	ErrRemoteServiceUnavailable = errors.New("remote service unavailable")
	ErrForbidden                = errors.New("access forbidden")
	ErrInvalidInput             = errors.New("invalid input")
	ErrInvalidTransition        = errors.New("invalid status transition")
)
