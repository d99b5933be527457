package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qs3c/lifedebt_server/internal/pkg/billing"
	"github.com/qs3c/lifedebt_server/internal/pkg/pubsub"
)

// fixedClock 返回固定时间
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*pubsub.StatusMessage
}

func (p *recordingPublisher) PublishStatus(_ context.Context, msg *pubsub.StatusMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) Messages() []*pubsub.StatusMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*pubsub.StatusMessage(nil), p.msgs...)
}

// fakeGateway 以 signature 作为事件 key，返回预置事件
type fakeGateway struct {
	customers int
	sessions  []*billing.CheckoutRequest
	events    map[string]*billing.Event
	err       error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{events: make(map[string]*billing.Event)}
}

func (g *fakeGateway) CreateCustomer(_ context.Context, email string, userID int64) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.customers++
	return fmt.Sprintf("cus_%d", userID), nil
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req *billing.CheckoutRequest) (*billing.CheckoutSession, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.sessions = append(g.sessions, req)
	id := fmt.Sprintf("cs_test_%d", len(g.sessions))
	return &billing.CheckoutSession{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*billing.Event, error) {
	ev, ok := g.events[signature]
	if !ok {
		return nil, billing.ErrInvalidSignature
	}
	return ev, nil
}
