package billing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/medagenda/clinic-api/internal/billing"
	"github.com/medagenda/clinic-api/internal/model"
	"github.com/medagenda/clinic-api/internal/repository"
	apperrors "github.com/medagenda/clinic-api/pkg/errors"
	"github.com/medagenda/clinic-api/pkg/logger"
	"github.com/medagenda/clinic-api/pkg/metrics"
)

// Result is the acknowledgment returned to the billing provider. Error is
// informational only: the provider still receives a success status so it
// does not retry events we cannot attribute.
type Result struct {
	Received bool   `json:"received"`
	Error    string `json:"error,omitempty"`
}

type BillingServicer interface {
	ProcessEvent(ctx context.Context, payload []byte, signature string) (*Result, error)
}

// Service reconciles billing provider webhook events with local user rows.
type Service struct {
	gateway billing.Gateway
	users   repository.UserRepository
	outbox  repository.OutboxRepository
	seen    *cache.Cache
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(
	gateway billing.Gateway,
	users repository.UserRepository,
	outbox repository.OutboxRepository,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		gateway: gateway,
		users:   users,
		outbox:  outbox,
		metrics: metrics,
		// Providers redeliver on timeouts; remembering recent event ids
		// short-circuits exact replays. The updates themselves are absolute
		// writes, so a replay past the TTL still converges.
		seen:   cache.New(defaultDedupeTTL, defaultDedupeSweep),
		logger: logger,
	}
}

// ProcessEvent verifies the signature against the raw payload, then
// dispatches by event type. It returns an error only for verification
// failures or provider/storage faults; resolution dead ends (no
// subscription, no user attribution) are logged and acknowledged so the
// provider does not amplify them into retry storms.
func (s *Service) ProcessEvent(ctx context.Context, payload []byte, signature string) (*Result, error) {
	event, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		return nil, apperrors.BadRequest("webhook signature verification failed", err)
	}

	s.metrics.WebhookEventsTotal.WithLabelValues(event.Type).Inc()

	if _, dup := s.seen.Get(event.ID); dup {
		s.logger.Info("duplicate webhook delivery", "event_id", event.ID, "event_type", event.Type)
		return &Result{Received: true}, nil
	}

	var result *Result
	switch event.Type {
	case billing.EventInvoicePaid:
		result, err = s.handleInvoicePaid(ctx, event)
	case billing.EventSubscriptionDeleted:
		result, err = s.handleSubscriptionDeleted(ctx, event)
	default:
		s.logger.Debug("ignoring webhook event", "event_type", event.Type)
		result = &Result{Received: true}
	}
	if err != nil {
		return nil, err
	}

	s.seen.SetDefault(event.ID, struct{}{})
	return result, nil
}

func (s *Service) handleInvoicePaid(ctx context.Context, event *billing.Event) (*Result, error) {
	invoice := event.Invoice
	if invoice == nil {
		return s.softFail(event, "invoice payload missing"), nil
	}

	// Prefer the subscription attached to the invoice; fall back to the
	// customer's first active subscription. One-time invoices resolve to
	// neither, which is not an error.
	subscriptionID := invoice.SubscriptionID
	if subscriptionID == "" && invoice.CustomerID != "" {
		subs, err := s.gateway.ListActiveSubscriptions(ctx, invoice.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("failed to list subscriptions for customer %s: %w", invoice.CustomerID, err)
		}
		if len(subs) > 0 {
			subscriptionID = subs[0].ID
		}
	}
	if subscriptionID == "" {
		return s.softFail(event, "no subscription found for invoice"), nil
	}

	sub, err := s.gateway.GetSubscription(ctx, subscriptionID)
	if errors.Is(err, billing.ErrNotFound) {
		return s.softFail(event, "subscription not found"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve subscription %s: %w", subscriptionID, err)
	}

	userID, ok := s.attributeUser(event, sub)
	if !ok {
		return s.softFail(event, "user id not found in subscription metadata"), nil
	}

	plan := model.PlanEssential
	update := &model.SubscriptionUpdate{
		StripeCustomerID:     &sub.CustomerID,
		StripeSubscriptionID: &sub.ID,
		Plan:                 &plan,
	}
	if err := s.users.UpdateSubscription(ctx, userID, update); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.softFail(event, "no user matches subscription metadata"), nil
		}
		return nil, fmt.Errorf("failed to update user subscription: %w", err)
	}

	s.metrics.SubscriptionUpdates.WithLabelValues("set").Inc()
	s.publish(ctx, model.EventSubscriptionUpdated, userID, update)
	s.logger.Info("activated subscription for user",
		"user_id", userID.String(), "subscription_id", sub.ID)
	return &Result{Received: true}, nil
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, event *billing.Event) (*Result, error) {
	sub := event.Subscription
	if sub == nil || sub.ID == "" {
		return s.softFail(event, "subscription id not found in event"), nil
	}

	userID, ok := s.attributeUser(event, sub)
	if !ok {
		return s.softFail(event, "user id not found in subscription metadata"), nil
	}

	// Clear all three billing columns together; a user either has a full
	// set of billing identifiers or none.
	update := &model.SubscriptionUpdate{}
	if err := s.users.UpdateSubscription(ctx, userID, update); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.softFail(event, "no user matches subscription metadata"), nil
		}
		return nil, fmt.Errorf("failed to clear user subscription: %w", err)
	}

	s.metrics.SubscriptionUpdates.WithLabelValues("clear").Inc()
	s.publish(ctx, model.EventSubscriptionCleared, userID, update)
	s.logger.Info("cleared subscription for user",
		"user_id", userID.String(), "subscription_id", sub.ID)
	return &Result{Received: true}, nil
}

// attributeUser recovers the local user id from the subscription metadata.
// The identifier is free-form text configured at checkout, so it is
// validated before use; malformed values are soft-skipped.
func (s *Service) attributeUser(event *billing.Event, sub *billing.Subscription) (uuid.UUID, bool) {
	raw, ok := sub.Metadata[metadataUserIDKey]
	if !ok || raw == "" {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Warn("malformed user id in subscription metadata",
			"event_id", event.ID, "subscription_id", sub.ID, "user_id", raw)
		return uuid.Nil, false
	}
	return userID, true
}

func (s *Service) softFail(event *billing.Event, reason string) *Result {
	s.metrics.WebhookSoftFailures.WithLabelValues(reason).Inc()
	s.logger.Warn("webhook event acknowledged without mutation",
		"event_id", event.ID, "event_type", event.Type, "reason", reason)
	return &Result{Received: true, Error: reason}
}

func (s *Service) publish(ctx context.Context, eventType string, userID uuid.UUID, update *model.SubscriptionUpdate) {
	payload, err := json.Marshal(map[string]interface{}{
		"user_id":                userID,
		"stripe_customer_id":     update.StripeCustomerID,
		"stripe_subscription_id": update.StripeSubscriptionID,
		"plan":                   update.Plan,
	})
	if err != nil {
		s.logger.Error(err, "failed to marshal billing event payload")
		return
	}
	if err := s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}); err != nil {
		s.logger.Error(err, "failed to create outbox event", "event_type", eventType)
	}
}
