package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medagenda/clinic-api/internal/email"
	"github.com/medagenda/clinic-api/internal/model"
	"github.com/medagenda/clinic-api/internal/repository"
	apperrors "github.com/medagenda/clinic-api/pkg/errors"
	"github.com/medagenda/clinic-api/pkg/logger"
)

type AppointmentServicer interface {
	CreateAppointment(ctx context.Context, appointment *model.Appointment) error
	GetAppointment(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, clinicID, id uuid.UUID) error
	ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
}

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	mailer   email.Service
	logger   *logger.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	mailer email.Service,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		doctors:  doctors,
		mailer:   mailer,
		logger:   logger,
	}
}

// CreateAppointment requires the patient and the doctor to belong to the
// appointment's clinic. The schema does not enforce this, so it is checked
// here before the insert.
func (s *Service) CreateAppointment(ctx context.Context, appointment *model.Appointment) error {
	if appointment.Date.IsZero() {
		return apperrors.BadRequest("appointment date is required", nil)
	}

	patient, err := s.patients.Get(ctx, appointment.PatientID)
	if err != nil {
		return apperrors.NotFound("patient", err)
	}
	if patient.ClinicID != appointment.ClinicID {
		return apperrors.BadRequest("patient does not belong to this clinic", nil)
	}

	doctor, err := s.doctors.Get(ctx, appointment.DoctorID)
	if err != nil {
		return apperrors.NotFound("doctor", err)
	}
	if doctor.ClinicID != appointment.ClinicID {
		return apperrors.BadRequest("doctor does not belong to this clinic", nil)
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	// Confirmation mail is best effort; the appointment stands either way.
	if err := s.mailer.SendAppointmentConfirmation(ctx, patient.Email, patient.Name, doctor.Name, appointment.Date); err != nil {
		s.logger.Error(err, "failed to send appointment confirmation",
			"appointment_id", appointment.ID.String())
	}

	return nil
}

func (s *Service) GetAppointment(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}
	if appointment.ClinicID != clinicID {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return appointment, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, clinicID, id uuid.UUID) error {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return apperrors.NotFound("appointment", err)
	}
	if appointment.ClinicID != clinicID {
		return apperrors.NotFound("appointment", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
