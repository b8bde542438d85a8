package handler

import "github.com/clinicreserve/reservation-system/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// registerRequest is the public sign-up payload. Staff accounts are created
// through the operator console, never over HTTP.
type registerRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Role     string `json:"role"     validate:"omitempty,oneof=patient"`
	UseOTP   bool   `json:"use_otp"`
}

// loginRequest carries the password, or the one-time code for users with
// use_otp enabled.
type loginRequest struct {
	Username   string `json:"username"   validate:"required"`
	Credential string `json:"credential" validate:"required"`
}

type otpRequest struct {
	Username string `json:"username" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type updateProfileRequest struct {
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	UseOTP   *bool   `json:"use_otp"`
}
