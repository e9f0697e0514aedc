package model

// Plan tiers granted through billing reconciliation
const (
	PlanEssential = "essential"
)

// User represents a system user. The Stripe identifiers and plan are managed
// exclusively by the billing webhook: either both identifiers are set together
// with a plan, or all three are cleared.
type User struct {
	Base
	Email                string  `json:"email" db:"email"`
	Name                 string  `json:"name" db:"name"`
	Password             string  `json:"password,omitempty" db:"-"`
	PasswordHash         string  `json:"-" db:"password_hash"`
	StripeCustomerID     *string `json:"stripe_customer_id,omitempty" db:"stripe_customer_id"`
	StripeSubscriptionID *string `json:"stripe_subscription_id,omitempty" db:"stripe_subscription_id"`
	Plan                 *string `json:"plan,omitempty" db:"plan"`
}

// SubscriptionUpdate is an absolute assignment of a user's billing state.
// Applying the same update twice leaves the row unchanged.
type SubscriptionUpdate struct {
	StripeCustomerID     *string
	StripeSubscriptionID *string
	Plan                 *string
}

// HasActivePlan reports whether the billing identifiers are consistent with
// an active paid plan.
func (u *User) HasActivePlan() bool {
	return u.Plan != nil && u.StripeCustomerID != nil && u.StripeSubscriptionID != nil
}
