package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medagenda/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		// UpdateSubscription sets the user's billing columns to exactly the
		// given values (nil clears). The write is absolute, so replayed
		// webhook deliveries converge on the same row state.
		UpdateSubscription(ctx context.Context, id uuid.UUID, update *model.SubscriptionUpdate) error
	}

	ClinicRepository interface {
		// CreateWithOwner inserts the clinic and the owning membership in a
		// single transaction; a failed membership insert leaves no clinic.
		CreateWithOwner(ctx context.Context, clinic *model.Clinic, userID uuid.UUID) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Clinic, error)
		AddMember(ctx context.Context, clinicID, userID uuid.UUID) error
		IsMember(ctx context.Context, clinicID, userID uuid.UUID) (bool, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error)
		CountByClinic(ctx context.Context, clinicID uuid.UUID) (int64, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error)
		CountByClinic(ctx context.Context, clinicID uuid.UUID) (int64, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		CountByClinic(ctx context.Context, clinicID uuid.UUID) (int64, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
