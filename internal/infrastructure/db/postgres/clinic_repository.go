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

// ClinicRepository implements ports.ClinicRepository on PostgreSQL.
type ClinicRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ClinicRepository = (*ClinicRepository)(nil)

func NewClinicRepository(pool *pgxpool.Pool) *ClinicRepository {
	return &ClinicRepository{pool: pool}
}

const clinicCols = `id, name, address, phone, services, created_at, updated_at`

func scanClinic(row pgx.Row) (*domain.Clinic, error) {
	var c domain.Clinic
	if err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.Services, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Availability = make(map[string]bool)
	return &c, nil
}

func (r *ClinicRepository) Create(ctx context.Context, c *domain.Clinic) error {
	err := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO clinics (name, address, phone, services, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		c.Name, c.Address, c.Phone, c.Services, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert clinic: %w", err)
	}
	return nil
}

func (r *ClinicRepository) FindByID(ctx context.Context, id int64) (*domain.Clinic, error) {
	c, err := scanClinic(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+clinicCols+` FROM clinics WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClinicNotFound
		}
		return nil, fmt.Errorf("select clinic: %w", err)
	}
	if err := r.loadAvailability(ctx, map[int64]*domain.Clinic{c.ID: c}); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ClinicRepository) List(ctx context.Context) ([]*domain.Clinic, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+clinicCols+` FROM clinics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list clinics: %w", err)
	}
	defer rows.Close()

	var clinics []*domain.Clinic
	byID := make(map[int64]*domain.Clinic)
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clinic: %w", err)
		}
		clinics = append(clinics, c)
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clinics: %w", err)
	}

	if err := r.loadAvailability(ctx, byID); err != nil {
		return nil, err
	}
	return clinics, nil
}

func (r *ClinicRepository) loadAvailability(ctx context.Context, byID map[int64]*domain.Clinic) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT clinic_id, date, available FROM availabilities WHERE clinic_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("select availability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var clinicID int64
		var date time.Time
		var available bool
		if err := rows.Scan(&clinicID, &date, &available); err != nil {
			return fmt.Errorf("scan availability: %w", err)
		}
		if c, ok := byID[clinicID]; ok {
			c.Availability[domain.DateKey(date)] = available
		}
	}
	return rows.Err()
}

func (r *ClinicRepository) UpdateInfo(ctx context.Context, id int64, address, phone *string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE clinics
		SET address = COALESCE($2, address), phone = COALESCE($3, phone), updated_at = NOW()
		WHERE id = $1`,
		id, address, phone,
	)
	if err != nil {
		return fmt.Errorf("update clinic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClinicNotFound
	}
	return nil
}

func (r *ClinicRepository) SetAvailability(ctx context.Context, id int64, date time.Time, available bool) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO availabilities (clinic_id, date, available) VALUES ($1, $2::date, $3)
		ON CONFLICT (clinic_id, date) DO UPDATE SET available = EXCLUDED.available`,
		id, domain.DateKey(date), available,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrClinicNotFound
		}
		return fmt.Errorf("set availability: %w", err)
	}
	return nil
}
