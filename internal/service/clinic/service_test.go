package clinic

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medagenda/clinic-api/internal/model"
	apperrors "github.com/medagenda/clinic-api/pkg/errors"
	"github.com/medagenda/clinic-api/pkg/logger"
)

type fakeClinicRepo struct {
	clinics     map[uuid.UUID]*model.Clinic
	memberships map[uuid.UUID][]uuid.UUID
}

func newFakeClinicRepo() *fakeClinicRepo {
	return &fakeClinicRepo{
		clinics:     make(map[uuid.UUID]*model.Clinic),
		memberships: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *fakeClinicRepo) CreateWithOwner(ctx context.Context, clinic *model.Clinic, userID uuid.UUID) error {
	clinic.ID = uuid.New()
	r.clinics[clinic.ID] = clinic
	r.memberships[clinic.ID] = append(r.memberships[clinic.ID], userID)
	return nil
}

func (r *fakeClinicRepo) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	return r.clinics[id], nil
}

func (r *fakeClinicRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Clinic, error) {
	var out []*model.Clinic
	for clinicID, members := range r.memberships {
		for _, m := range members {
			if m == userID {
				out = append(out, r.clinics[clinicID])
			}
		}
	}
	return out, nil
}

func (r *fakeClinicRepo) AddMember(ctx context.Context, clinicID, userID uuid.UUID) error {
	r.memberships[clinicID] = append(r.memberships[clinicID], userID)
	return nil
}

func (r *fakeClinicRepo) IsMember(ctx context.Context, clinicID, userID uuid.UUID) (bool, error) {
	for _, m := range r.memberships[clinicID] {
		if m == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (r *fakeOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *fakeOutboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMessage *string) error {
	return nil
}

func (r *fakeOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func TestCreateClinic(t *testing.T) {
	repo := newFakeClinicRepo()
	outbox := &fakeOutboxRepo{}
	svc := NewService(repo, outbox, logger.NewLogger(nil))
	userID := uuid.New()

	clinic, err := svc.CreateClinic(context.Background(), userID, "Downtown Clinic")
	require.NoError(t, err)
	assert.Equal(t, "Downtown Clinic", clinic.Name)
	assert.NotEqual(t, uuid.Nil, clinic.ID)

	member, err := svc.IsMember(context.Background(), clinic.ID, userID)
	require.NoError(t, err)
	assert.True(t, member, "creating user should be linked to the clinic")

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventClinicCreated, outbox.events[0].EventType)
}

func TestCreateClinicRequiresUser(t *testing.T) {
	svc := NewService(newFakeClinicRepo(), &fakeOutboxRepo{}, logger.NewLogger(nil))

	_, err := svc.CreateClinic(context.Background(), uuid.Nil, "Downtown Clinic")
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}

func TestCreateClinicRequiresName(t *testing.T) {
	svc := NewService(newFakeClinicRepo(), &fakeOutboxRepo{}, logger.NewLogger(nil))

	for _, name := range []string{"", "   "} {
		_, err := svc.CreateClinic(context.Background(), uuid.New(), name)
		require.Error(t, err)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	}
}

func TestListClinicsScopedToUser(t *testing.T) {
	repo := newFakeClinicRepo()
	svc := NewService(repo, &fakeOutboxRepo{}, logger.NewLogger(nil))
	alice := uuid.New()
	bob := uuid.New()

	_, err := svc.CreateClinic(context.Background(), alice, "Alice Clinic")
	require.NoError(t, err)
	_, err = svc.CreateClinic(context.Background(), bob, "Bob Clinic")
	require.NoError(t, err)

	clinics, err := svc.ListClinics(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, clinics, 1)
	assert.Equal(t, "Alice Clinic", clinics[0].Name)
}
