package dashboard

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medagenda/clinic-api/internal/model"
)

type countingRepo struct {
	counts map[uuid.UUID]int64
}

func (r countingRepo) CountByClinic(ctx context.Context, clinicID uuid.UUID) (int64, error) {
	return r.counts[clinicID], nil
}

type countingDoctorRepo struct{ countingRepo }

func (countingDoctorRepo) Create(ctx context.Context, doctor *model.Doctor) error { return nil }
func (countingDoctorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return nil, nil
}
func (countingDoctorRepo) Update(ctx context.Context, doctor *model.Doctor) error { return nil }
func (countingDoctorRepo) Delete(ctx context.Context, id uuid.UUID) error         { return nil }
func (countingDoctorRepo) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error) {
	return nil, nil
}

type countingPatientRepo struct{ countingRepo }

func (countingPatientRepo) Create(ctx context.Context, patient *model.Patient) error { return nil }
func (countingPatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return nil, nil
}
func (countingPatientRepo) Update(ctx context.Context, patient *model.Patient) error { return nil }
func (countingPatientRepo) Delete(ctx context.Context, id uuid.UUID) error           { return nil }
func (countingPatientRepo) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error) {
	return nil, nil
}

type countingAppointmentRepo struct{ countingRepo }

func (countingAppointmentRepo) Create(ctx context.Context, appointment *model.Appointment) error {
	return nil
}
func (countingAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return nil, nil
}
func (countingAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (countingAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func TestSummarize(t *testing.T) {
	clinicID := uuid.New()
	svc := NewService(
		countingDoctorRepo{countingRepo{map[uuid.UUID]int64{clinicID: 3}}},
		countingPatientRepo{countingRepo{map[uuid.UUID]int64{clinicID: 40}}},
		countingAppointmentRepo{countingRepo{map[uuid.UUID]int64{clinicID: 12}}},
	)

	summary, err := svc.Summarize(context.Background(), clinicID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Doctors)
	assert.Equal(t, int64(40), summary.Patients)
	assert.Equal(t, int64(12), summary.Appointments)
}

func TestSummarizeEmptyClinic(t *testing.T) {
	svc := NewService(
		countingDoctorRepo{countingRepo{map[uuid.UUID]int64{}}},
		countingPatientRepo{countingRepo{map[uuid.UUID]int64{}}},
		countingAppointmentRepo{countingRepo{map[uuid.UUID]int64{}}},
	)

	summary, err := svc.Summarize(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, summary.Doctors)
	assert.Zero(t, summary.Patients)
	assert.Zero(t, summary.Appointments)
}
