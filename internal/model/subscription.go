package model

import (
	"time"
)

// Subscription 记录已完成的 Stripe checkout，一次 session 一条
type Subscription struct {
	ID                   int64     `gorm:"primaryKey" json:"id"`
	UserID               int64     `gorm:"not null;index" json:"user_id"`
	Plan                 Plan      `gorm:"size:20;not null" json:"plan"`
	StripeSessionID      string    `gorm:"size:100;uniqueIndex;not null" json:"stripe_session_id"`
	StripeCustomerID     string    `gorm:"size:100;index" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string    `gorm:"size:100;index" json:"stripe_subscription_id,omitempty"`
	Status               string    `gorm:"size:20;default:active;index" json:"status"` // active, canceled
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

const (
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
)

func (Subscription) TableName() string {
	return "subscriptions"
}
