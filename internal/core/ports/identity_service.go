package ports

import (
	"context"
	"time"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
)

// RegisterInput carries sign-up data.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
	UseOTP   bool
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	Email    *string
	Password *string
	UseOTP   *bool
}

// Empty reports whether no field was provided.
func (p ProfileUpdate) Empty() bool {
	return p.Email == nil && p.Password == nil && p.UseOTP == nil
}

// OTPGrant is the freshly issued one-time password. It is delivered
// out-of-band and never returned over the API.
type OTPGrant struct {
	Code      string
	ExpiresAt time.Time
}

// AuthResult is returned by a successful authentication.
type AuthResult struct {
	Token string
	User  *domain.User
}

// IdentityService covers sign-up, login and profile management.
type IdentityService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, username, credential string) (*AuthResult, error)
	IssueOTP(ctx context.Context, userID string) (*OTPGrant, error)
	RequestOTP(ctx context.Context, username string) error
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
}
