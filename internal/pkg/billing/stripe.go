package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

const (
	metaEmail  = "email"
	metaPlan   = "plan"
	metaUserID = "user_id"
)

type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway 创建 Stripe 客户端；backends 为 nil 时使用官方 API 地址
func NewStripeGateway(secretKey, webhookSecret string, backends *stripe.Backends) *StripeGateway {
	g := &StripeGateway{webhookSecret: webhookSecret}
	if secretKey != "" {
		g.api = client.New(secretKey, backends)
	}
	return g
}

// CreateCustomer 为邮箱创建 Stripe customer，返回 customer id
func (g *StripeGateway) CreateCustomer(ctx context.Context, email string, userID int64) (string, error) {
	if g.api == nil {
		return "", ErrNotConfigured
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.AddMetadata(metaUserID, strconv.FormatInt(userID, 10))

	c, err := g.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return c.ID, nil
}

// CreateCheckoutSession 创建订阅模式的 checkout session
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:          stripe.String(req.CustomerID),
		ClientReferenceID: stripe.String(strconv.FormatInt(req.UserID, 10)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			metaEmail:  req.Email,
			metaPlan:   req.Plan,
			metaUserID: strconv.FormatInt(req.UserID, 10),
		},
	}
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ParseWebhook 校验 Stripe-Signature 并解析事件
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if g.webhookSecret == "" {
		return nil, ErrNotConfigured
	}

	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return decodeEvent(ev)
}

func decodeEvent(ev stripe.Event) (*Event, error) {
	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Checkout = &CheckoutCompleted{
			SessionID: cs.ID,
			Email:     checkoutEmail(&cs),
			Plan:      cs.Metadata[metaPlan],
		}
		if cs.Customer != nil {
			out.Checkout.CustomerID = cs.Customer.ID
		}
		if cs.Subscription != nil {
			out.Checkout.SubscriptionID = cs.Subscription.ID
		}

	case EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		out.Subscription = &SubscriptionEnded{SubscriptionID: sub.ID}
		if sub.Customer != nil {
			out.Subscription.CustomerID = sub.Customer.ID
		}
	}

	return out, nil
}

// checkoutEmail 优先 metadata，其次 Stripe 收集的 customer_details
func checkoutEmail(cs *stripe.CheckoutSession) string {
	if e := cs.Metadata[metaEmail]; e != "" {
		return e
	}
	if cs.CustomerDetails != nil && cs.CustomerDetails.Email != "" {
		return cs.CustomerDetails.Email
	}
	return cs.CustomerEmail
}
