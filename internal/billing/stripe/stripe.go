package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/medagenda/clinic-api/internal/billing"
)

// Gateway implements billing.Gateway against the Stripe API.
type Gateway struct {
	api           *client.API
	webhookSecret string
}

// NewGateway requires both the API secret key and the webhook signing
// secret; missing either is a configuration error the caller must treat
// as fatal.
func NewGateway(secretKey, webhookSecret string) (*Gateway, error) {
	if secretKey == "" || webhookSecret == "" {
		return nil, fmt.Errorf("stripe secret key and webhook secret are required")
	}

	api := &client.API{}
	api.Init(secretKey, nil)

	return &Gateway{
		api:           api,
		webhookSecret: webhookSecret,
	}, nil
}

func (g *Gateway) ConstructEvent(payload []byte, signature string) (*billing.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	out := &billing.Event{
		ID:   event.ID,
		Type: string(event.Type),
	}

	switch out.Type {
	case billing.EventInvoicePaid:
		var invoice stripeapi.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return nil, fmt.Errorf("failed to decode invoice payload: %w", err)
		}
		out.Invoice = &billing.Invoice{ID: invoice.ID}
		if invoice.Subscription != nil {
			out.Invoice.SubscriptionID = invoice.Subscription.ID
		}
		if invoice.Customer != nil {
			out.Invoice.CustomerID = invoice.Customer.ID
		}
	case billing.EventSubscriptionDeleted:
		var sub stripeapi.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("failed to decode subscription payload: %w", err)
		}
		out.Subscription = toSubscription(&sub)
	}

	return out, nil
}

func (g *Gateway) GetSubscription(ctx context.Context, id string) (*billing.Subscription, error) {
	params := &stripeapi.SubscriptionParams{}
	params.Context = ctx

	sub, err := g.api.Subscriptions.Get(id, params)
	if err != nil {
		if isResourceMissing(err) {
			return nil, billing.ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve subscription %s: %w", id, err)
	}
	return toSubscription(sub), nil
}

func (g *Gateway) ListActiveSubscriptions(ctx context.Context, customerID string) ([]*billing.Subscription, error) {
	params := &stripeapi.SubscriptionListParams{
		Customer: stripeapi.String(customerID),
		Status:   stripeapi.String(string(stripeapi.SubscriptionStatusActive)),
	}
	params.Context = ctx
	params.Limit = stripeapi.Int64(1)

	var subs []*billing.Subscription
	iter := g.api.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, toSubscription(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list subscriptions for customer %s: %w", customerID, err)
	}
	return subs, nil
}

func toSubscription(sub *stripeapi.Subscription) *billing.Subscription {
	out := &billing.Subscription{
		ID:       sub.ID,
		Metadata: sub.Metadata,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	return out
}

func isResourceMissing(err error) bool {
	var stripeErr *stripeapi.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.HTTPStatusCode == http.StatusNotFound ||
		stripeErr.Code == stripeapi.ErrorCodeResourceMissing
}
