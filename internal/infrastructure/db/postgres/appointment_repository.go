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

// AppointmentRepository implements ports.AppointmentRepository on PostgreSQL.
// The partial unique index appointments_active_slot_idx backs the
// one-active-appointment-per-slot rule.
type AppointmentRepository struct {
	pool *pgxpool.Pool
}

var _ ports.AppointmentRepository = (*AppointmentRepository)(nil)

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

const appointmentCols = `id, status, date_time, user_id::text, clinic_id, created_at, updated_at`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	var status string
	if err := row.Scan(&a.ID, &status, &a.DateTime, &a.UserID, &a.ClinicID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Status = domain.AppointmentStatus(status)
	a.DateTime = a.DateTime.UTC()
	return &a, nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	a, err := scanAppointment(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("select appointment: %w", err)
	}
	return a, nil
}

func (r *AppointmentRepository) FindActiveAt(ctx context.Context, clinicID int64, at time.Time, excludeID int64) (*domain.Appointment, error) {
	a, err := scanAppointment(conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+appointmentCols+` FROM appointments
		WHERE clinic_id = $1 AND date_time = $2 AND status <> 'canceled' AND id <> $3
		LIMIT 1`,
		clinicID, at, excludeID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select active appointment: %w", err)
	}
	return a, nil
}

func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) error {
	err := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO appointments (status, date_time, user_id, clinic_id, created_at, updated_at)
		VALUES ($1, $2, $3::uuid, $4, $5, $6)
		RETURNING id`,
		string(a.Status), a.DateTime, a.UserID, a.ClinicID, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrSlotTaken
		case isForeignKeyViolation(err):
			return domain.ErrClinicNotFound
		}
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) AssignUser(ctx context.Context, id int64, userID string, status domain.AppointmentStatus) error {
	return r.exec(ctx, `UPDATE appointments SET user_id = $2::uuid, status = $3, updated_at = NOW() WHERE id = $1`, id, userID, string(status))
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	return r.exec(ctx, `UPDATE appointments SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
}

func (r *AppointmentRepository) UpdateDateTime(ctx context.Context, id int64, at time.Time, status domain.AppointmentStatus) error {
	return r.exec(ctx, `UPDATE appointments SET date_time = $2, status = $3, updated_at = NOW() WHERE id = $1`, id, at, string(status))
}

// exec runs a single-row update, mapping a missing row and index conflicts
// to domain errors.
func (r *AppointmentRepository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSlotTaken
		}
		return fmt.Errorf("update appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) ListByUser(ctx context.Context, userID string) ([]domain.AppointmentView, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT a.id, a.status, a.date_time, a.user_id::text, a.clinic_id, a.created_at, a.updated_at,
		       COALESCE(c.name, $2)
		FROM appointments a
		LEFT JOIN clinics c ON c.id = a.clinic_id
		WHERE a.user_id = $1::uuid
		ORDER BY a.date_time, a.id`,
		userID, domain.UnknownClinicName,
	)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var out []domain.AppointmentView
	for rows.Next() {
		var v domain.AppointmentView
		var status string
		if err := rows.Scan(&v.ID, &status, &v.DateTime, &v.UserID, &v.ClinicID, &v.CreatedAt, &v.UpdatedAt, &v.ClinicName); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		v.Status = domain.AppointmentStatus(status)
		v.DateTime = v.DateTime.UTC()
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}
