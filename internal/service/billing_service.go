package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/lifedebt_server/config"
	"github.com/qs3c/lifedebt_server/internal/model"
	"github.com/qs3c/lifedebt_server/internal/model/dto"
	"github.com/qs3c/lifedebt_server/internal/pkg/billing"
	"github.com/qs3c/lifedebt_server/internal/pkg/dedup"
	"github.com/qs3c/lifedebt_server/internal/pkg/metrics"
	"github.com/qs3c/lifedebt_server/internal/repository"
)

var (
	ErrPlanNotPurchasable = errors.New("该套餐无需购买")
	ErrPriceNotConfigured = errors.New("套餐价格未配置")
)

const (
	OutcomeApplied   = "applied"
	OutcomeIgnored   = "ignored"
	OutcomeDuplicate = "duplicate"
)

type BillingService struct {
	userRepo  *repository.UserRepository
	subRepo   *repository.SubscriptionRepository
	gateway   billing.Gateway
	events    *dedup.Store
	publisher StatusPublisher
	metrics   *metrics.Metrics
	cfg       *config.Config
}

func NewBillingService(
	userRepo *repository.UserRepository,
	subRepo *repository.SubscriptionRepository,
	gateway billing.Gateway,
	events *dedup.Store,
	publisher StatusPublisher,
	m *metrics.Metrics,
	cfg *config.Config,
) *BillingService {
	return &BillingService{
		userRepo:  userRepo,
		subRepo:   subRepo,
		gateway:   gateway,
		events:    events,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
	}
}

// CreateCheckout 为付费套餐创建 Stripe 订阅支付会话
func (s *BillingService) CreateCheckout(ctx context.Context, userID int64, planName string) (*dto.CheckoutResponse, error) {
	plan, ok := model.ParsePlan(planName)
	if !ok {
		return nil, ErrInvalidPlan
	}
	if !plan.Paid() {
		return nil, ErrPlanNotPurchasable
	}

	priceID := s.cfg.Stripe.PriceID(string(plan))
	if priceID == "" {
		return nil, ErrPriceNotConfigured
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 复用已有的 Stripe customer
	customerID := ""
	if user.StripeCustomerID != nil {
		customerID = *user.StripeCustomerID
	}
	if customerID == "" {
		customerID, err = s.gateway.CreateCustomer(ctx, user.Email, user.ID)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.SetStripeCustomerID(user.ID, customerID); err != nil {
			return nil, err
		}
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, &billing.CheckoutRequest{
		UserID:     user.ID,
		Email:      user.Email,
		Plan:       string(plan),
		CustomerID: customerID,
		PriceID:    priceID,
		SuccessURL: s.cfg.Stripe.SuccessURL(),
		CancelURL:  s.cfg.Stripe.CancelURL(),
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("checkout session created",
		zap.Int64("user_id", user.ID),
		zap.String("plan", string(plan)),
		zap.String("session_id", sess.ID),
	)

	return &dto.CheckoutResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

// HandleWebhook 校验并处理 Stripe 回调
// 签名错误返回 billing.ErrInvalidSignature；处理失败时释放去重标记，由 Stripe 重试
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookResponse, error) {
	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.metrics.WebhookEvent("unknown", "rejected")
		return nil, err
	}

	resp := &dto.WebhookResponse{Received: true, EventID: ev.ID}

	claimed, err := s.events.Claim(ctx, ev.ID)
	if err != nil {
		// Redis 不可用时继续处理，写入本身是幂等的
		zap.L().Warn("webhook dedup unavailable", zap.String("event_id", ev.ID), zap.Error(err))
		claimed = true
	}
	if !claimed {
		s.metrics.WebhookEvent(ev.Type, OutcomeDuplicate)
		resp.Outcome = OutcomeDuplicate
		return resp, nil
	}

	switch ev.Type {
	case billing.EventCheckoutCompleted:
		resp.Outcome, err = s.applyCheckout(ev.Checkout)
	case billing.EventSubscriptionDeleted:
		resp.Outcome, err = s.applyCancellation(ev.Subscription)
	default:
		resp.Outcome = OutcomeIgnored
	}

	if err != nil {
		if relErr := s.events.Release(ctx, ev.ID); relErr != nil {
			zap.L().Warn("release webhook event failed", zap.String("event_id", ev.ID), zap.Error(relErr))
		}
		s.metrics.WebhookEvent(ev.Type, "error")
		return nil, fmt.Errorf("handle %s %s: %w", ev.Type, ev.ID, err)
	}

	s.metrics.WebhookEvent(ev.Type, resp.Outcome)
	zap.L().Info("webhook handled",
		zap.String("event_id", ev.ID),
		zap.String("type", ev.Type),
		zap.String("outcome", resp.Outcome),
	)
	return resp, nil
}

// applyCheckout 支付完成：按邮箱找到（或创建）用户并切换套餐
func (s *BillingService) applyCheckout(c *billing.CheckoutCompleted) (string, error) {
	if c == nil {
		return OutcomeIgnored, nil
	}

	plan, ok := model.ParsePlan(c.Plan)
	email := model.NormalizeEmail(c.Email)
	if !ok || email == "" {
		zap.L().Warn("checkout without plan or email",
			zap.String("session_id", c.SessionID),
			zap.String("plan", c.Plan),
		)
		return OutcomeIgnored, nil
	}

	user, err := s.userRepo.UpsertByEmail(email)
	if err != nil {
		return "", err
	}

	if user.Plan != plan {
		if err := s.userRepo.UpdatePlan(user.ID, plan); err != nil {
			return "", err
		}
		publishPlanChange(s.publisher, user.ID, user.Plan, plan)
	}

	if c.CustomerID != "" && user.StripeCustomerID == nil {
		if err := s.userRepo.SetStripeCustomerID(user.ID, c.CustomerID); err != nil {
			// customer 已绑定到其他用户时不影响套餐生效
			zap.L().Warn("bind stripe customer failed",
				zap.Int64("user_id", user.ID),
				zap.String("customer_id", c.CustomerID),
				zap.Error(err),
			)
		}
	}

	_, err = s.subRepo.CreateIfAbsent(&model.Subscription{
		UserID:               user.ID,
		Plan:                 plan,
		StripeSessionID:      c.SessionID,
		StripeCustomerID:     c.CustomerID,
		StripeSubscriptionID: c.SubscriptionID,
		Status:               model.SubscriptionActive,
	})
	if err != nil {
		return "", err
	}

	return OutcomeApplied, nil
}

// applyCancellation 订阅取消：没有其他有效订阅时降回 student
func (s *BillingService) applyCancellation(e *billing.SubscriptionEnded) (string, error) {
	if e == nil || e.CustomerID == "" {
		return OutcomeIgnored, nil
	}

	if e.SubscriptionID != "" {
		if _, err := s.subRepo.CancelBySubscriptionID(e.SubscriptionID); err != nil {
			return "", err
		}
	}

	user, err := s.userRepo.GetByStripeCustomerID(e.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OutcomeIgnored, nil
		}
		return "", err
	}

	active, err := s.subRepo.CountActiveByUserID(user.ID)
	if err != nil {
		return "", err
	}
	if active > 0 || user.Plan == model.PlanStudent {
		return OutcomeApplied, nil
	}

	if err := s.userRepo.UpdatePlan(user.ID, model.PlanStudent); err != nil {
		return "", err
	}
	publishPlanChange(s.publisher, user.ID, user.Plan, model.PlanStudent)
	return OutcomeApplied, nil
}
