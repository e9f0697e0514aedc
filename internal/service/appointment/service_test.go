package appointment

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medagenda/clinic-api/internal/model"
	apperrors "github.com/medagenda/clinic-api/pkg/errors"
	"github.com/medagenda/clinic-api/pkg/logger"
)

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, appointment *model.Appointment) error {
	appointment.ID = uuid.New()
	r.appointments[appointment.ID] = appointment
	return nil
}

func (r *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return a, nil
}

func (r *fakeAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.appointments, id)
	return nil
}

func (r *fakeAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.appointments {
		if a.ClinicID == filters.ClinicID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) CountByClinic(ctx context.Context, clinicID uuid.UUID) (int64, error) {
	var n int64
	for _, a := range r.appointments {
		if a.ClinicID == clinicID {
			n++
		}
	}
	return n, nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (r *fakePatientRepo) Create(ctx context.Context, patient *model.Patient) error { return nil }

func (r *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (r *fakePatientRepo) Update(ctx context.Context, patient *model.Patient) error { return nil }
func (r *fakePatientRepo) Delete(ctx context.Context, id uuid.UUID) error           { return nil }

func (r *fakePatientRepo) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error) {
	return nil, nil
}

func (r *fakePatientRepo) CountByClinic(ctx context.Context, clinicID uuid.UUID) (int64, error) {
	return 0, nil
}

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.Doctor
}

func (r *fakeDoctorRepo) Create(ctx context.Context, doctor *model.Doctor) error { return nil }

func (r *fakeDoctorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := r.doctors[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return d, nil
}

func (r *fakeDoctorRepo) Update(ctx context.Context, doctor *model.Doctor) error { return nil }
func (r *fakeDoctorRepo) Delete(ctx context.Context, id uuid.UUID) error         { return nil }

func (r *fakeDoctorRepo) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error) {
	return nil, nil
}

func (r *fakeDoctorRepo) CountByClinic(ctx context.Context, clinicID uuid.UUID) (int64, error) {
	return 0, nil
}

type recordingMailer struct {
	sent []string
}

type failingMailer struct{}

func (failingMailer) SendAppointmentConfirmation(ctx context.Context, to, patientName, doctorName string, date time.Time) error {
	return errors.New("smtp unreachable")
}

func (m *recordingMailer) SendAppointmentConfirmation(ctx context.Context, to, patientName, doctorName string, date time.Time) error {
	m.sent = append(m.sent, to)
	return nil
}

type fixture struct {
	svc      *Service
	repo     *fakeAppointmentRepo
	mailer   *recordingMailer
	clinicID uuid.UUID
	patient  *model.Patient
	doctor   *model.Doctor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clinicID := uuid.New()
	patient := &model.Patient{
		Base:     model.Base{ID: uuid.New()},
		ClinicID: clinicID,
		Name:     "Ana Souza",
		Email:    "ana@example.com",
	}
	doctor := &model.Doctor{
		Base:     model.Base{ID: uuid.New()},
		ClinicID: clinicID,
		Name:     "Dr. Lima",
	}

	repo := newFakeAppointmentRepo()
	mailer := &recordingMailer{}
	svc := NewService(
		repo,
		&fakePatientRepo{patients: map[uuid.UUID]*model.Patient{patient.ID: patient}},
		&fakeDoctorRepo{doctors: map[uuid.UUID]*model.Doctor{doctor.ID: doctor}},
		mailer,
		logger.NewLogger(nil),
	)

	return &fixture{
		svc:      svc,
		repo:     repo,
		mailer:   mailer,
		clinicID: clinicID,
		patient:  patient,
		doctor:   doctor,
	}
}

func TestCreateAppointment(t *testing.T) {
	f := newFixture(t)

	appointment := &model.Appointment{
		ClinicID:  f.clinicID,
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		Date:      time.Now().Add(24 * time.Hour),
	}
	err := f.svc.CreateAppointment(context.Background(), appointment)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, appointment.ID)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "ana@example.com", f.mailer.sent[0])
}

func TestCreateAppointmentPatientFromOtherClinic(t *testing.T) {
	f := newFixture(t)

	appointment := &model.Appointment{
		ClinicID:  uuid.New(),
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		Date:      time.Now().Add(24 * time.Hour),
	}
	err := f.svc.CreateAppointment(context.Background(), appointment)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	assert.Empty(t, f.repo.appointments)
}

func TestCreateAppointmentDoctorFromOtherClinic(t *testing.T) {
	f := newFixture(t)
	f.doctor.ClinicID = uuid.New()

	appointment := &model.Appointment{
		ClinicID:  f.clinicID,
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		Date:      time.Now().Add(24 * time.Hour),
	}
	err := f.svc.CreateAppointment(context.Background(), appointment)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	assert.Empty(t, f.repo.appointments)
}

func TestCreateAppointmentUnknownPatient(t *testing.T) {
	f := newFixture(t)

	appointment := &model.Appointment{
		ClinicID:  f.clinicID,
		PatientID: uuid.New(),
		DoctorID:  f.doctor.ID,
		Date:      time.Now().Add(24 * time.Hour),
	}
	err := f.svc.CreateAppointment(context.Background(), appointment)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestCreateAppointmentRequiresDate(t *testing.T) {
	f := newFixture(t)

	err := f.svc.CreateAppointment(context.Background(), &model.Appointment{
		ClinicID:  f.clinicID,
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestCreateAppointmentSurvivesMailFailure(t *testing.T) {
	f := newFixture(t)

	// Delivery failure must not fail the create.
	svc := NewService(
		f.svc.repo,
		f.svc.patients,
		f.svc.doctors,
		failingMailer{},
		logger.NewLogger(nil),
	)

	appointment := &model.Appointment{
		ClinicID:  f.clinicID,
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		Date:      time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, svc.CreateAppointment(context.Background(), appointment))
}

func TestGetAppointmentScopedToClinic(t *testing.T) {
	f := newFixture(t)

	appointment := &model.Appointment{
		ClinicID:  f.clinicID,
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		Date:      time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, f.svc.CreateAppointment(context.Background(), appointment))

	got, err := f.svc.GetAppointment(context.Background(), f.clinicID, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.ID, got.ID)

	_, err = f.svc.GetAppointment(context.Background(), uuid.New(), appointment.ID)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestDeleteAppointmentScopedToClinic(t *testing.T) {
	f := newFixture(t)

	appointment := &model.Appointment{
		ClinicID:  f.clinicID,
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		Date:      time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, f.svc.CreateAppointment(context.Background(), appointment))

	err := f.svc.DeleteAppointment(context.Background(), uuid.New(), appointment.ID)
	require.Error(t, err)
	assert.Len(t, f.repo.appointments, 1)

	require.NoError(t, f.svc.DeleteAppointment(context.Background(), f.clinicID, appointment.ID))
	assert.Empty(t, f.repo.appointments)
}
