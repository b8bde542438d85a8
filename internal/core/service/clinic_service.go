package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

// ClinicService implements the clinic registry.
type ClinicService struct {
	repo ports.ClinicRepository
	log  zerolog.Logger
	now  func() time.Time
}

var _ ports.ClinicService = (*ClinicService)(nil)

func NewClinicService(repo ports.ClinicRepository, log zerolog.Logger) *ClinicService {
	return &ClinicService{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *ClinicService) CreateClinic(ctx context.Context, in ports.CreateClinicInput) (*domain.Clinic, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("create clinic: name required: %w", domain.ErrInvalidInput)
	}

	now := s.now()
	clinic := &domain.Clinic{
		Name:         name,
		Address:      strings.TrimSpace(in.Address),
		Phone:        strings.TrimSpace(in.Phone),
		Services:     domain.NormalizeServices(in.Services),
		Availability: map[string]bool{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, clinic); err != nil {
		s.log.Error().Err(err).Str("name", name).Msg("failed to create clinic")
		return nil, err
	}

	s.log.Info().Int64("clinic_id", clinic.ID).Str("name", clinic.Name).Msg("clinic created")
	return clinic, nil
}

// UpdateInfo changes address and/or phone. Nil fields are left untouched.
func (s *ClinicService) UpdateInfo(ctx context.Context, clinicID int64, upd ports.ClinicInfoUpdate) (*domain.Clinic, error) {
	if upd.Address != nil || upd.Phone != nil {
		if err := s.repo.UpdateInfo(ctx, clinicID, upd.Address, upd.Phone); err != nil {
			return nil, err
		}
		s.log.Info().Int64("clinic_id", clinicID).Msg("clinic info updated")
	}
	return s.repo.FindByID(ctx, clinicID)
}

func (s *ClinicService) SetAvailability(ctx context.Context, clinicID int64, date time.Time, available bool) error {
	if err := s.repo.SetAvailability(ctx, clinicID, date, available); err != nil {
		return err
	}
	s.log.Info().
		Int64("clinic_id", clinicID).
		Str("date", domain.DateKey(date)).
		Bool("available", available).
		Msg("availability set")
	return nil
}

func (s *ClinicService) Get(ctx context.Context, clinicID int64) (*domain.Clinic, error) {
	return s.repo.FindByID(ctx, clinicID)
}

func (s *ClinicService) List(ctx context.Context) ([]*domain.Clinic, error) {
	return s.repo.List(ctx)
}
