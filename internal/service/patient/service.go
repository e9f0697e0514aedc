package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medagenda/clinic-api/internal/model"
	"github.com/medagenda/clinic-api/internal/repository"
	apperrors "github.com/medagenda/clinic-api/pkg/errors"
)

type PatientServicer interface {
	CreatePatient(ctx context.Context, patient *model.Patient) error
	GetPatient(ctx context.Context, clinicID, id uuid.UUID) (*model.Patient, error)
	UpdatePatient(ctx context.Context, patient *model.Patient) error
	DeletePatient(ctx context.Context, clinicID, id uuid.UUID) error
	ListPatients(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error)
}

type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePatient(ctx context.Context, patient *model.Patient) error {
	if err := validatePatient(patient); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return err
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (s *Service) GetPatient(ctx context.Context, clinicID, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("patient", err)
	}
	if patient.ClinicID != clinicID {
		return nil, apperrors.NotFound("patient", nil)
	}
	return patient, nil
}

func (s *Service) UpdatePatient(ctx context.Context, patient *model.Patient) error {
	if err := validatePatient(patient); err != nil {
		return err
	}
	existing, err := s.repo.Get(ctx, patient.ID)
	if err != nil {
		return apperrors.NotFound("patient", err)
	}
	if existing.ClinicID != patient.ClinicID {
		return apperrors.NotFound("patient", nil)
	}
	if err := s.repo.Update(ctx, patient); err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return err
		}
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (s *Service) DeletePatient(ctx context.Context, clinicID, id uuid.UUID) error {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return apperrors.NotFound("patient", err)
	}
	if patient.ClinicID != clinicID {
		return apperrors.NotFound("patient", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

func (s *Service) ListPatients(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func validatePatient(patient *model.Patient) error {
	if patient.Name == "" {
		return apperrors.BadRequest("patient name is required", nil)
	}
	if patient.Email == "" {
		return apperrors.BadRequest("patient email is required", nil)
	}
	if patient.PhoneNumber == "" {
		return apperrors.BadRequest("patient phone number is required", nil)
	}
	switch patient.Sex {
	case model.PatientSexMale, model.PatientSexFemale, model.PatientSexOther:
	default:
		return apperrors.BadRequest("patient sex must be male, female or other", nil)
	}
	return nil
}
