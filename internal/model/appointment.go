package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment references exactly one patient and one doctor. The service
// layer guarantees patient, doctor and appointment share the same clinic;
// the schema only enforces the clinic foreign key.
type Appointment struct {
	Base
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date      time.Time `db:"date" json:"date"`
}

type CreateAppointmentRequest struct {
	PatientID string    `json:"patient_id" binding:"required,uuid"`
	DoctorID  string    `json:"doctor_id" binding:"required,uuid"`
	Date      time.Time `json:"date" binding:"required"`
}

type AppointmentFilters struct {
	ClinicID  uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	From      time.Time
	To        time.Time
}
