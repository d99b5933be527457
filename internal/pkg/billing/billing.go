// Package billing wraps the Stripe calls the service needs: customers,
// subscription checkout sessions and signed webhook events.
package billing

import (
	"context"
	"errors"
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

var (
	ErrNotConfigured    = errors.New("stripe is not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Gateway is the billing collaborator. StripeGateway is the production
// implementation.
type Gateway interface {
	CreateCustomer(ctx context.Context, email string, userID int64) (string, error)
	CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

type CheckoutRequest struct {
	UserID     int64
	Email      string
	Plan       string
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a verified webhook event reduced to the fields we act on.
// Exactly one of Checkout / Subscription is set for the handled types.
type Event struct {
	ID           string
	Type         string
	Checkout     *CheckoutCompleted
	Subscription *SubscriptionEnded
}

type CheckoutCompleted struct {
	SessionID      string
	Email          string
	Plan           string
	CustomerID     string
	SubscriptionID string
}

type SubscriptionEnded struct {
	SubscriptionID string
	CustomerID     string
}
