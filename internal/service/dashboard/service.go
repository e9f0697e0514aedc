package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medagenda/clinic-api/internal/repository"
)

// Summary aggregates the clinic's headline numbers for the dashboard.
type Summary struct {
	Doctors      int64 `json:"doctors"`
	Patients     int64 `json:"patients"`
	Appointments int64 `json:"appointments"`
}

type DashboardServicer interface {
	Summarize(ctx context.Context, clinicID uuid.UUID) (*Summary, error)
}

type Service struct {
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
}

func NewService(
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	appointments repository.AppointmentRepository,
) *Service {
	return &Service{
		doctors:      doctors,
		patients:     patients,
		appointments: appointments,
	}
}

func (s *Service) Summarize(ctx context.Context, clinicID uuid.UUID) (*Summary, error) {
	doctors, err := s.doctors.CountByClinic(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to count doctors: %w", err)
	}
	patients, err := s.patients.CountByClinic(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to count patients: %w", err)
	}
	appointments, err := s.appointments.CountByClinic(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}

	return &Summary{
		Doctors:      doctors,
		Patients:     patients,
		Appointments: appointments,
	}, nil
}
