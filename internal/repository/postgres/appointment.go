package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medagenda/clinic-api/internal/model"
	"github.com/medagenda/clinic-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, clinic_id, patient_id, doctor_id, date, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.ClinicID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.Date,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE id = $1`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM appointments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, clinic_id, patient_id, doctor_id, date, created_at, updated_at
		FROM appointments
		WHERE clinic_id = $1
		AND ($2::uuid IS NULL OR doctor_id = $2)
		AND ($3::uuid IS NULL OR patient_id = $3)
		AND ($4::timestamptz IS NULL OR date >= $4)
		AND ($5::timestamptz IS NULL OR date <= $5)
		ORDER BY date ASC
	`
	var doctorID, patientID interface{}
	if filters.DoctorID != uuid.Nil {
		doctorID = filters.DoctorID
	}
	if filters.PatientID != uuid.Nil {
		patientID = filters.PatientID
	}
	var from, to interface{}
	if !filters.From.IsZero() {
		from = filters.From
	}
	if !filters.To.IsZero() {
		to = filters.To
	}

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query,
		filters.ClinicID, doctorID, patientID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) CountByClinic(ctx context.Context, clinicID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM appointments WHERE clinic_id = $1`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, clinicID); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}
