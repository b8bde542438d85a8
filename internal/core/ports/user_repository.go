package ports

import (
	"context"
	"time"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
)

// UserChanges is a partial update of a stored user; nil fields are kept.
type UserChanges struct {
	Email        *string
	PasswordHash *string
	UseOTP       *bool
}

// UserRepository defines the persistence operations for users and their
// staff clinic association. Each mutation touches only its own columns.
type UserRepository interface {
	// Create returns domain.ErrDuplicateUsername when the username is taken.
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// UpdateProfile applies ch and returns the stored user.
	UpdateProfile(ctx context.Context, id string, ch UserChanges, at time.Time) (*domain.User, error)
	// SetOTP replaces the current one-time password.
	SetOTP(ctx context.Context, id, code string, expiry, at time.Time) error
	// ConsumeOTP clears the one-time password only if it equals code and
	// has not expired at at. Otherwise it returns domain.ErrInvalidCredentials.
	ConsumeOTP(ctx context.Context, id, code string, at time.Time) error

	StaffClinic(ctx context.Context, userID string) (*int64, error)
	AssignStaffClinic(ctx context.Context, userID string, clinicID int64) error
}
