package model

import (
	"time"

	"github.com/google/uuid"
)

// Clinic is the tenant boundary: every doctor, patient and appointment
// belongs to exactly one clinic.
type Clinic struct {
	Base
	Name string `db:"name" json:"name"`
}

// UserClinic links a user to a clinic. A user may belong to several clinics
// and a clinic may have several users.
type UserClinic struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type CreateClinicRequest struct {
	Name string `json:"name" binding:"required"`
}
