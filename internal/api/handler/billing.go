package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/lifedebt_server/internal/api/middleware"
	"github.com/qs3c/lifedebt_server/internal/model/dto"
	"github.com/qs3c/lifedebt_server/internal/pkg/billing"
	"github.com/qs3c/lifedebt_server/internal/pkg/response"
	"github.com/qs3c/lifedebt_server/internal/service"
)

const maxWebhookBody = 64 << 10

type BillingHandler struct {
	billingService *service.BillingService
}

func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
	}
}

// Checkout 创建 Stripe 支付会话
// POST /api/v1/billing/checkout
func (h *BillingHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.billingService.CreateCheckout(c.Request.Context(), userID, req.Plan)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, resp)
}

// Webhook Stripe 回调
// POST /api/v1/billing/webhook
// 返回真实 HTTP 状态码：非 2xx 时 Stripe 会重试
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}

	resp, err := h.billingService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		case errors.Is(err, billing.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "billing not configured"})
		default:
			zap.L().Error("webhook failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook handling failed"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
