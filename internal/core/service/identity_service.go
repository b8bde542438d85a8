package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

const (
	defaultTokenTTL = 24 * time.Hour
	defaultOTPTTL   = 5 * time.Minute
	otpMin          = 100000
	otpSpan         = 900000
)

// IdentityConfig holds token and OTP settings.
type IdentityConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	OTPTTL    time.Duration
}

// IdentityService implements registration, login and profile management.
type IdentityService struct {
	users   ports.UserRepository
	courier ports.Courier
	cfg     IdentityConfig
	log     zerolog.Logger
	now     func() time.Time
}

var _ ports.IdentityService = (*IdentityService)(nil)

func NewIdentityService(users ports.UserRepository, courier ports.Courier, cfg IdentityConfig, log zerolog.Logger) *IdentityService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = defaultOTPTTL
	}
	return &IdentityService{
		users:   users,
		courier: courier,
		cfg:     cfg,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *IdentityService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("register: username and password required: %w", domain.ErrInvalidInput)
	}
	role := in.Role
	if role == "" {
		role = domain.RolePatient
	}
	if !role.Valid() {
		return nil, fmt.Errorf("register: unknown role %q: %w", role, domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
		Role:         role,
		UseOTP:       in.UseOTP,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

// Authenticate checks the credential against the password hash, or against
// the current OTP when the user logs in with one-time passwords. A matching
// OTP is consumed atomically, so a code admits exactly one login.
func (s *IdentityService) Authenticate(ctx context.Context, username, credential string) (*ports.AuthResult, error) {
	if username == "" || credential == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same bcrypt cost as a known user so timing does not reveal accounts.
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(credential))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.UseOTP {
		now := s.now()
		if !user.OTPMatches(credential, now) {
			return nil, domain.ErrInvalidCredentials
		}
		if err := s.users.ConsumeOTP(ctx, user.ID, credential, now); err != nil {
			if errors.Is(err, domain.ErrInvalidCredentials) {
				return nil, err
			}
			return nil, fmt.Errorf("authenticate: consume otp: %w", err)
		}
		user.OTP = nil
		user.OTPExpiry = nil
		user.UpdatedAt = now
	} else if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

// IssueOTP replaces any previous code with a fresh six-digit one and hands
// it to the courier.
func (s *IdentityService) IssueOTP(ctx context.Context, userID string) (*ports.OTPGrant, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// RequestOTP issues a code by username. Unknown usernames are accepted
// silently so the endpoint does not reveal which accounts exist.
func (s *IdentityService) RequestOTP(ctx context.Context, username string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Debug().Str("username", username).Msg("otp requested for unknown user")
			return nil
		}
		return err
	}
	_, err = s.issue(ctx, user)
	return err
}

func (s *IdentityService) issue(ctx context.Context, user *domain.User) (*ports.OTPGrant, error) {
	code, err := generateOTP()
	if err != nil {
		return nil, fmt.Errorf("issue otp: %w", err)
	}
	now := s.now()
	expiry := now.Add(s.cfg.OTPTTL)
	if err := s.users.SetOTP(ctx, user.ID, code, expiry, now); err != nil {
		return nil, fmt.Errorf("issue otp: %w", err)
	}

	s.courier.Deliver(ports.Message{
		Recipient: user.Username,
		Subject:   "Your one-time password",
		Body:      fmt.Sprintf("Your login code is %s. It expires at %s.", code, expiry.Format(time.RFC3339)),
	})
	s.log.Info().Str("user_id", user.ID).Time("expires_at", expiry).Msg("otp issued")

	return &ports.OTPGrant{Code: code, ExpiresAt: expiry}, nil
}

// UpdateProfile applies the non-nil fields of upd. An empty update returns
// the stored user unchanged.
func (s *IdentityService) UpdateProfile(ctx context.Context, userID string, upd ports.ProfileUpdate) (*domain.User, error) {
	if upd.Empty() {
		return s.users.FindByID(ctx, userID)
	}

	var ch ports.UserChanges
	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		ch.Email = &email
	}
	if upd.Password != nil {
		if *upd.Password == "" {
			return nil, fmt.Errorf("update profile: empty password: %w", domain.ErrInvalidInput)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("update profile: hash password: %w", err)
		}
		h := string(hash)
		ch.PasswordHash = &h
	}
	ch.UseOTP = upd.UseOTP

	user, err := s.users.UpdateProfile(ctx, userID, ch, s.now())
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Msg("profile updated")
	return user, nil
}

func (s *IdentityService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *IdentityService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      s.now().Add(s.cfg.TokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.cfg.JWTSecret))
}

// dummyHash is compared against on unknown usernames.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("no-such-user"), bcrypt.DefaultCost)
	return h
})

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}
