package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medagenda/clinic-api/internal/model"
	"github.com/medagenda/clinic-api/internal/repository"
)

type clinicRepository struct {
	BaseRepository
}

func NewClinicRepository(base BaseRepository) repository.ClinicRepository {
	return &clinicRepository{base}
}

func (r *clinicRepository) CreateWithOwner(ctx context.Context, clinic *model.Clinic, userID uuid.UUID) error {
	clinic.ID = uuid.New()
	clinic.CreatedAt = time.Now()
	clinic.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		clinicQuery := `
			INSERT INTO clinics (id, name, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, clinicQuery,
			clinic.ID,
			clinic.Name,
			clinic.CreatedAt,
			clinic.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create clinic: %w", err)
		}

		memberQuery := `
			INSERT INTO users_to_clinics (user_id, clinic_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, memberQuery,
			userID,
			clinic.ID,
			clinic.CreatedAt,
			clinic.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create clinic membership: %w", err)
		}

		return nil
	})
}

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM clinics
		WHERE id = $1
	`
	var clinic model.Clinic
	if err := r.db.GetContext(ctx, &clinic, query, id); err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Clinic, error) {
	query := `
		SELECT c.id, c.name, c.created_at, c.updated_at
		FROM clinics c
		JOIN users_to_clinics utc ON utc.clinic_id = c.id
		WHERE utc.user_id = $1
		ORDER BY c.created_at DESC
	`
	var clinics []*model.Clinic
	if err := r.db.SelectContext(ctx, &clinics, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}

func (r *clinicRepository) AddMember(ctx context.Context, clinicID, userID uuid.UUID) error {
	query := `
		INSERT INTO users_to_clinics (user_id, clinic_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, clinicID, time.Now()); err != nil {
		return fmt.Errorf("failed to add clinic member: %w", err)
	}
	return nil
}

func (r *clinicRepository) IsMember(ctx context.Context, clinicID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM users_to_clinics
			WHERE clinic_id = $1 AND user_id = $2
		)
	`
	var member bool
	if err := r.db.GetContext(ctx, &member, query, clinicID, userID); err != nil {
		return false, fmt.Errorf("failed to check clinic membership: %w", err)
	}
	return member, nil
}
