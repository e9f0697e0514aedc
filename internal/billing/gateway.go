package billing

import (
	"context"
	"errors"
)

// Event types this service reacts to; every other type is acknowledged
// without side effect.
const (
	EventInvoicePaid         = "invoice.paid"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

var (
	// ErrNotFound is returned when the provider has no record of the
	// requested resource.
	ErrNotFound = errors.New("billing: resource not found")
)

// Event is a verified webhook notification. Exactly one of Invoice or
// Subscription is populated, depending on Type.
type Event struct {
	ID           string
	Type         string
	Invoice      *Invoice
	Subscription *Subscription
}

// Invoice carries the identifiers needed to resolve a subscription from an
// invoice-paid notification.
type Invoice struct {
	ID             string
	SubscriptionID string
	CustomerID     string
}

// Subscription mirrors the provider's subscription object. Metadata carries
// the user attribution written at checkout time.
type Subscription struct {
	ID         string
	CustomerID string
	Metadata   map[string]string
}

// Gateway is the surface of the billing provider this service consumes:
// webhook signature verification, subscription retrieval, and subscription
// listing by customer.
type Gateway interface {
	// ConstructEvent verifies the signature against the raw payload before
	// any parsing and returns the decoded event. A bad or missing signature
	// is an error; no event content is trusted until it verifies.
	ConstructEvent(payload []byte, signature string) (*Event, error)
	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	ListActiveSubscriptions(ctx context.Context, customerID string) ([]*Subscription, error)
}
