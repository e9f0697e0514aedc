package clinic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/medagenda/clinic-api/internal/model"
	"github.com/medagenda/clinic-api/internal/repository"
	apperrors "github.com/medagenda/clinic-api/pkg/errors"
	"github.com/medagenda/clinic-api/pkg/logger"
)

type ClinicServicer interface {
	CreateClinic(ctx context.Context, userID uuid.UUID, name string) (*model.Clinic, error)
	GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	ListClinics(ctx context.Context, userID uuid.UUID) ([]*model.Clinic, error)
	IsMember(ctx context.Context, clinicID, userID uuid.UUID) (bool, error)
}

type Service struct {
	repo   repository.ClinicRepository
	outbox repository.OutboxRepository
	logger *logger.Logger
}

func NewService(repo repository.ClinicRepository, outbox repository.OutboxRepository, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		outbox: outbox,
		logger: logger,
	}
}

// CreateClinic creates the clinic and the acting user's membership in one
// transaction so a failed membership insert cannot leave an orphaned
// clinic with no owner.
func (s *Service) CreateClinic(ctx context.Context, userID uuid.UUID, name string) (*model.Clinic, error) {
	if userID == uuid.Nil {
		return nil, apperrors.Unauthorized(nil)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.BadRequest("clinic name is required", nil)
	}

	clinic := &model.Clinic{Name: name}
	if err := s.repo.CreateWithOwner(ctx, clinic, userID); err != nil {
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}

	if payload, err := json.Marshal(clinic); err != nil {
		s.logger.Error(err, "failed to marshal clinic for event")
	} else if err := s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: model.EventClinicCreated,
		Payload:   payload,
	}); err != nil {
		s.logger.Error(err, "failed to create outbox event", "clinic_id", clinic.ID.String())
	}

	return clinic, nil
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return clinic, nil
}

func (s *Service) ListClinics(ctx context.Context, userID uuid.UUID) ([]*model.Clinic, error) {
	clinics, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}

func (s *Service) IsMember(ctx context.Context, clinicID, userID uuid.UUID) (bool, error) {
	return s.repo.IsMember(ctx, clinicID, userID)
}
