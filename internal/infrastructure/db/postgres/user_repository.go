package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

// UserRepository implements ports.UserRepository on PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userCols = `id::text, username, email, password_hash, role, use_otp, otp, otp_expiry, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.UseOTP, &u.OTP, &u.OTPExpiry, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, use_otp, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Username, u.Email, u.PasswordHash, string(u.Role), u.UseOTP, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateUsername
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1::uuid`, id))
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE username = $1`, username))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, ch ports.UserChanges, at time.Time) (*domain.User, error) {
	u, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE users
		SET email = COALESCE($2, email),
		    password_hash = COALESCE($3, password_hash),
		    use_otp = COALESCE($4, use_otp),
		    updated_at = $5
		WHERE id = $1::uuid
		RETURNING `+userCols,
		id, ch.Email, ch.PasswordHash, ch.UseOTP, at,
	))
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, err
}

func (r *UserRepository) SetOTP(ctx context.Context, id, code string, expiry, at time.Time) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE users SET otp = $2, otp_expiry = $3, updated_at = $4
		WHERE id = $1::uuid`,
		id, code, expiry, at,
	)
	if err != nil {
		if isInvalidText(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("set otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ConsumeOTP matches and clears the code in one statement, so concurrent
// logins with the same code see exactly one affected row between them.
func (r *UserRepository) ConsumeOTP(ctx context.Context, id, code string, at time.Time) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE users SET otp = NULL, otp_expiry = NULL, updated_at = $3
		WHERE id = $1::uuid AND otp = $2 AND otp_expiry > $3`,
		id, code, at,
	)
	if err != nil {
		if isInvalidText(err) {
			return domain.ErrInvalidCredentials
		}
		return fmt.Errorf("consume otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidCredentials
	}
	return nil
}

func (r *UserRepository) StaffClinic(ctx context.Context, userID string) (*int64, error) {
	var clinicID int64
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT clinic_id FROM staff_clinics WHERE user_id = $1::uuid`, userID).Scan(&clinicID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query staff clinic: %w", err)
	}
	return &clinicID, nil
}

func (r *UserRepository) AssignStaffClinic(ctx context.Context, userID string, clinicID int64) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO staff_clinics (user_id, clinic_id) VALUES ($1::uuid, $2)
		ON CONFLICT (user_id) DO UPDATE SET clinic_id = EXCLUDED.clinic_id`,
		userID, clinicID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrClinicNotFound
		}
		return fmt.Errorf("assign staff clinic: %w", err)
	}
	return nil
}
