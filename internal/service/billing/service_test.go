package billing

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medagenda/clinic-api/internal/billing"
	"github.com/medagenda/clinic-api/internal/model"
	apperrors "github.com/medagenda/clinic-api/pkg/errors"
	"github.com/medagenda/clinic-api/pkg/logger"
	"github.com/medagenda/clinic-api/pkg/metrics"
)

// Prometheus collectors register globally, so the whole package shares one
// metrics instance.
var testMetrics = metrics.NewMetrics("test", "billing")

type fakeGateway struct {
	event         *billing.Event
	constructErr  error
	subscriptions map[string]*billing.Subscription
	active        map[string][]*billing.Subscription
	listErr       error
}

func (g *fakeGateway) ConstructEvent(payload []byte, signature string) (*billing.Event, error) {
	if g.constructErr != nil {
		return nil, g.constructErr
	}
	return g.event, nil
}

func (g *fakeGateway) GetSubscription(ctx context.Context, id string) (*billing.Subscription, error) {
	sub, ok := g.subscriptions[id]
	if !ok {
		return nil, billing.ErrNotFound
	}
	return sub, nil
}

func (g *fakeGateway) ListActiveSubscriptions(ctx context.Context, customerID string) ([]*billing.Subscription, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.active[customerID], nil
}

type fakeUserRepo struct {
	users   map[uuid.UUID]*model.User
	updates []*model.SubscriptionUpdate
}

func newFakeUserRepo(ids ...uuid.UUID) *fakeUserRepo {
	users := make(map[uuid.UUID]*model.User)
	for _, id := range ids {
		users[id] = &model.User{Base: model.Base{ID: id}}
	}
	return &fakeUserRepo{users: users}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) UpdateSubscription(ctx context.Context, id uuid.UUID, update *model.SubscriptionUpdate) error {
	user, ok := r.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.StripeCustomerID = update.StripeCustomerID
	user.StripeSubscriptionID = update.StripeSubscriptionID
	user.Plan = update.Plan
	r.updates = append(r.updates, update)
	return nil
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

func newTestService(gateway *fakeGateway, users *fakeUserRepo) (*Service, *fakeOutboxRepo) {
	outbox := &fakeOutboxRepo{}
	return NewService(gateway, users, outbox, logger.NewLogger(nil), testMetrics), outbox
}

func invoicePaidEvent(id string, invoice *billing.Invoice) *billing.Event {
	return &billing.Event{ID: id, Type: billing.EventInvoicePaid, Invoice: invoice}
}

func TestProcessEventInvoicePaid(t *testing.T) {
	userID := uuid.New()
	gateway := &fakeGateway{
		event: invoicePaidEvent("evt_1", &billing.Invoice{
			ID:             "in_1",
			SubscriptionID: "sub_1",
			CustomerID:     "cus_1",
		}),
		subscriptions: map[string]*billing.Subscription{
			"sub_1": {
				ID:         "sub_1",
				CustomerID: "cus_1",
				Metadata:   map[string]string{"userId": userID.String()},
			},
		},
	}
	users := newFakeUserRepo(userID)
	svc, outbox := newTestService(gateway, users)

	result, err := svc.ProcessEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Received)
	assert.Empty(t, result.Error)

	user := users.users[userID]
	require.NotNil(t, user.StripeSubscriptionID)
	assert.Equal(t, "sub_1", *user.StripeSubscriptionID)
	require.NotNil(t, user.StripeCustomerID)
	assert.Equal(t, "cus_1", *user.StripeCustomerID)
	require.NotNil(t, user.Plan)
	assert.Equal(t, model.PlanEssential, *user.Plan)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventSubscriptionUpdated, outbox.events[0].EventType)
}

func TestProcessEventInvoicePaidCustomerFallback(t *testing.T) {
	userID := uuid.New()
	gateway := &fakeGateway{
		event: invoicePaidEvent("evt_2", &billing.Invoice{
			ID:         "in_2",
			CustomerID: "cus_2",
		}),
		subscriptions: map[string]*billing.Subscription{
			"sub_2": {
				ID:         "sub_2",
				CustomerID: "cus_2",
				Metadata:   map[string]string{"userId": userID.String()},
			},
		},
		active: map[string][]*billing.Subscription{
			"cus_2": {{ID: "sub_2", CustomerID: "cus_2"}},
		},
	}
	users := newFakeUserRepo(userID)
	svc, _ := newTestService(gateway, users)

	result, err := svc.ProcessEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Received)

	user := users.users[userID]
	require.NotNil(t, user.StripeSubscriptionID)
	assert.Equal(t, "sub_2", *user.StripeSubscriptionID)
}

func TestProcessEventInvoicePaidNoSubscription(t *testing.T) {
	gateway := &fakeGateway{
		event: invoicePaidEvent("evt_3", &billing.Invoice{
			ID:         "in_3",
			CustomerID: "cus_3",
		}),
	}
	users := newFakeUserRepo()
	svc, outbox := newTestService(gateway, users)

	result, err := svc.ProcessEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Received)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, users.updates)
	assert.Empty(t, outbox.events)
}

func TestProcessEventInvoicePaidSubscriptionGone(t *testing.T) {
	gateway := &fakeGateway{
		event: invoicePaidEvent("evt_4", &billing.Invoice{
			ID:             "in_4",
			SubscriptionID: "sub_gone",
		}),
	}
	users := newFakeUserRepo()
	svc, _ := newTestService(gateway, users)

	result, err := svc.ProcessEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Received)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, users.updates)
}

func TestProcessEventInvoicePaidNoUserAttribution(t *testing.T) {
	gateway := &fakeGateway{
		event: invoicePaidEvent("evt_5", &billing.Invoice{
			ID:             "in_5",
			SubscriptionID: "sub_5",
		}),
		subscriptions: map[string]*billing.Subscription{
			"sub_5": {ID: "sub_5", CustomerID: "cus_5"},
		},
	}
	users := newFakeUserRepo()
	svc, _ := newTestService(gateway, users)

	result, err := svc.ProcessEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Received)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, users.updates)
}

func TestProcessEventInvoicePaidMalformedUserID(t *testing.T) {
	gateway := &fakeGateway{
		event: invoicePaidEvent("evt_6", &billing.Invoice{
			ID:             "in_6",
			SubscriptionID: "sub_6",
		}),
		subscriptions: map[string]*billing.Subscription{
			"sub_6": {
				ID:         "sub_6",
				CustomerID: "cus_6",
				Metadata:   map[string]string{"userId": "not-a-uuid"},
			},
		},
	}
	users := newFakeUserRepo()
	svc, _ := newTestService(gateway, users)

	result, err := svc.ProcessEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Received)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, users.updates)
}

func TestProcessEventInvoicePaidUnknownUser(t *testing.T) {
	gateway := &fakeGateway{
		event: invoicePaidEvent("evt_7", &billing.Invoice{
			ID:             "in_7",
			SubscriptionID: "sub_7",
		}),
		subscriptions: map[string]*billing.Subscription{
			"sub_7": {
				ID:         "sub_7",
				CustomerID: "cus_7",
				Metadata:   map[string]string{"userId": uuid.NewString()},
			},
		},
	}
	users := newFakeUserRepo()
	svc, outbox := newTestService(gateway, users)

	result, err := svc.ProcessEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Received)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, outbox.events)
}

func TestProcessEventListSubscriptionsFailure(t *testing.T) {
	gateway := &fakeGateway{
		event: invoicePaidEvent("evt_8", &billing.Invoice{
			ID:         "in_8",
			CustomerID: "cus_8",
		}),
		listErr: errors.New("provider unavailable"),
	}
	users := newFakeUserRepo()
	svc, _ := newTestService(gateway, users)

	_, err := svc.ProcessEvent(context.Background(), []byte("{}"), "sig")
	require.Error(t, err)
	assert.Empty(t, users.updates)
}

func TestProcessEventSubscriptionDeleted(t *testing.T) {
	userID := uuid.New()
	sub := "sub_9"
	cus := "cus_9"
	plan := model.PlanEssential
	gateway := &fakeGateway{
		event: &billing.Event{
			ID:   "evt_9",
			Type: billing.EventSubscriptionDeleted,
			Subscription: &billing.Subscription{
				ID:         sub,
				CustomerID: cus,
				Metadata:   map[string]string{"userId": userID.String()},
			},
		},
	}
	users := newFakeUserRepo(userID)
	users.users[userID].StripeSubscriptionID = &sub
	users.users[userID].StripeCustomerID = &cus
	users.users[userID].Plan = &plan
	svc, outbox := newTestService(gateway, users)

	result, err := svc.ProcessEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Received)

	user := users.users[userID]
	assert.Nil(t, user.StripeSubscriptionID)
	assert.Nil(t, user.StripeCustomerID)
	assert.Nil(t, user.Plan)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventSubscriptionCleared, outbox.events[0].EventType)
}

func TestProcessEventSubscriptionDeletedNoID(t *testing.T) {
	gateway := &fakeGateway{
		event: &billing.Event{
			ID:           "evt_10",
			Type:         billing.EventSubscriptionDeleted,
			Subscription: &billing.Subscription{},
		},
	}
	users := newFakeUserRepo()
	svc, _ := newTestService(gateway, users)

	result, err := svc.ProcessEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Received)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, users.updates)
}

func TestProcessEventBadSignature(t *testing.T) {
	gateway := &fakeGateway{constructErr: errors.New("signature mismatch")}
	users := newFakeUserRepo()
	svc, outbox := newTestService(gateway, users)

	result, err := svc.ProcessEvent(context.Background(), []byte("{}"), "bad")
	require.Error(t, err)
	assert.Nil(t, result)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	assert.Empty(t, users.updates)
	assert.Empty(t, outbox.events)
}

func TestProcessEventIgnoresUnknownTypes(t *testing.T) {
	gateway := &fakeGateway{
		event: &billing.Event{ID: "evt_11", Type: "invoice.created"},
	}
	users := newFakeUserRepo()
	svc, _ := newTestService(gateway, users)

	result, err := svc.ProcessEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Received)
	assert.Empty(t, users.updates)
}

func TestProcessEventDeduplicatesDeliveries(t *testing.T) {
	userID := uuid.New()
	gateway := &fakeGateway{
		event: invoicePaidEvent("evt_12", &billing.Invoice{
			ID:             "in_12",
			SubscriptionID: "sub_12",
		}),
		subscriptions: map[string]*billing.Subscription{
			"sub_12": {
				ID:         "sub_12",
				CustomerID: "cus_12",
				Metadata:   map[string]string{"userId": userID.String()},
			},
		},
	}
	users := newFakeUserRepo(userID)
	svc, _ := newTestService(gateway, users)

	_, err := svc.ProcessEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	result, err := svc.ProcessEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Received)
	assert.Len(t, users.updates, 1)
}

func TestProcessEventIdempotentReplay(t *testing.T) {
	userID := uuid.New()
	newEvent := func(id string) *billing.Event {
		return invoicePaidEvent(id, &billing.Invoice{
			ID:             "in_13",
			SubscriptionID: "sub_13",
		})
	}
	gateway := &fakeGateway{
		event: newEvent("evt_13a"),
		subscriptions: map[string]*billing.Subscription{
			"sub_13": {
				ID:         "sub_13",
				CustomerID: "cus_13",
				Metadata:   map[string]string{"userId": userID.String()},
			},
		},
	}
	users := newFakeUserRepo(userID)
	svc, _ := newTestService(gateway, users)

	_, err := svc.ProcessEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)

	// Same invoice redelivered under a fresh event id: the absolute write
	// leaves the row unchanged.
	gateway.event = newEvent("evt_13b")
	_, err = svc.ProcessEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)

	user := users.users[userID]
	require.NotNil(t, user.StripeSubscriptionID)
	assert.Equal(t, "sub_13", *user.StripeSubscriptionID)
	require.NotNil(t, user.Plan)
	assert.Equal(t, model.PlanEssential, *user.Plan)
	assert.Len(t, users.updates, 2)
}
