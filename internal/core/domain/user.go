package domain

import (
	"crypto/subtle"
	"time"
)

// Role distinguishes patients from clinic staff.
type Role string

const (
	RolePatient Role = "patient"
	RoleStaff   Role = "staff"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleStaff
}

// User models an authenticated actor in the system.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	UseOTP       bool       `json:"use_otp"`
	OTP          *string    `json:"-"`
	OTPExpiry    *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsStaff reports whether the user may run admin operations.
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff
}

// OTPMatches reports whether code is the current one-time password and now is
// strictly before its expiry.
func (u *User) OTPMatches(code string, now time.Time) bool {
	if u.OTP == nil || u.OTPExpiry == nil || code == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(*u.OTP), []byte(code)) != 1 {
		return false
	}
	return now.Before(*u.OTPExpiry)
}

// AdminContext is the privileged view of a staff user. A nil ClinicID means
// the staff member is not bound to a single clinic.
type AdminContext struct {
	UserID   string
	Username string
	ClinicID *int64
}

// CanManage reports whether the admin may mutate the given clinic.
func (a AdminContext) CanManage(clinicID int64) bool {
	return a.ClinicID == nil || *a.ClinicID == clinicID
}
