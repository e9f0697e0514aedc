package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medagenda/clinic-api/internal/model"
	"github.com/medagenda/clinic-api/internal/repository"
	apperrors "github.com/medagenda/clinic-api/pkg/errors"
)

type DoctorServicer interface {
	CreateDoctor(ctx context.Context, doctor *model.Doctor) error
	GetDoctor(ctx context.Context, clinicID, id uuid.UUID) (*model.Doctor, error)
	UpdateDoctor(ctx context.Context, doctor *model.Doctor) error
	DeleteDoctor(ctx context.Context, clinicID, id uuid.UUID) error
	ListDoctors(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error)
}

type Service struct {
	repo repository.DoctorRepository
}

func NewService(repo repository.DoctorRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateDoctor(ctx context.Context, doctor *model.Doctor) error {
	if err := validateDoctor(doctor); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (s *Service) GetDoctor(ctx context.Context, clinicID, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("doctor", err)
	}
	if doctor.ClinicID != clinicID {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return doctor, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, doctor *model.Doctor) error {
	if err := validateDoctor(doctor); err != nil {
		return err
	}
	existing, err := s.repo.Get(ctx, doctor.ID)
	if err != nil {
		return apperrors.NotFound("doctor", err)
	}
	if existing.ClinicID != doctor.ClinicID {
		return apperrors.NotFound("doctor", nil)
	}
	if err := s.repo.Update(ctx, doctor); err != nil {
		return fmt.Errorf("failed to update doctor: %w", err)
	}
	return nil
}

func (s *Service) DeleteDoctor(ctx context.Context, clinicID, id uuid.UUID) error {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return apperrors.NotFound("doctor", err)
	}
	if doctor.ClinicID != clinicID {
		return apperrors.NotFound("doctor", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}
	return nil
}

func (s *Service) ListDoctors(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error) {
	doctors, err := s.repo.List(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

// validateDoctor checks the weekly availability window. The window may wrap
// the week (e.g. Friday through Monday), so from/to weekdays only need to be
// valid days; the time of day must parse and span a positive range.
func validateDoctor(doctor *model.Doctor) error {
	if doctor.Name == "" {
		return apperrors.BadRequest("doctor name is required", nil)
	}
	if doctor.Speciality == "" {
		return apperrors.BadRequest("doctor speciality is required", nil)
	}
	if doctor.AvailableFromWeekDay < 0 || doctor.AvailableFromWeekDay > 6 ||
		doctor.AvailableToWeekDay < 0 || doctor.AvailableToWeekDay > 6 {
		return apperrors.BadRequest("availability weekdays must be between 0 and 6", nil)
	}

	from, err := parseTimeOfDay(doctor.AvailableFromTime)
	if err != nil {
		return apperrors.BadRequest("invalid available_from_time", err)
	}
	to, err := parseTimeOfDay(doctor.AvailableToTime)
	if err != nil {
		return apperrors.BadRequest("invalid available_to_time", err)
	}
	if !to.After(from) {
		return apperrors.BadRequest("available_to_time must be after available_from_time", nil)
	}

	if doctor.AppointmentPriceInCents <= 0 {
		return apperrors.BadRequest("appointment price must be positive", nil)
	}
	return nil
}

func parseTimeOfDay(value string) (time.Time, error) {
	if t, err := time.Parse("15:04:05", value); err == nil {
		return t, nil
	}
	return time.Parse("15:04", value)
}
