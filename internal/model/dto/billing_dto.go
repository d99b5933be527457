package dto

// CheckoutRequest 发起 Stripe 支付
type CheckoutRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// CheckoutResponse 前端跳转到 URL 完成支付
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// WebhookResponse Stripe 回调处理结果
type WebhookResponse struct {
	Received bool   `json:"received"`
	EventID  string `json:"event_id,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
}
