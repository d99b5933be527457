package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/lifedebt_server/config"
	"github.com/qs3c/lifedebt_server/internal/api/handler"
	"github.com/qs3c/lifedebt_server/internal/api/middleware"
	"github.com/qs3c/lifedebt_server/internal/pkg/metrics"
	"github.com/qs3c/lifedebt_server/internal/pkg/response"
)

type Router struct {
	authHandler       *handler.AuthHandler
	userHandler       *handler.UserHandler
	commitmentHandler *handler.CommitmentHandler
	billingHandler    *handler.BillingHandler
	websocketHandler  *handler.WebSocketHandler
	metrics           *metrics.Metrics
	logger            *zap.Logger
	cfg               *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	commitmentHandler *handler.CommitmentHandler,
	billingHandler *handler.BillingHandler,
	websocketHandler *handler.WebSocketHandler,
	m *metrics.Metrics,
	logger *zap.Logger,
	cfg *config.Config,
) *Router {
	if logger == nil {
		logger = zap.L()
	}
	return &Router{
		authHandler:       authHandler,
		userHandler:       userHandler,
		commitmentHandler: commitmentHandler,
		billingHandler:    billingHandler,
		websocketHandler:  websocketHandler,
		metrics:           m,
		logger:            logger,
		cfg:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(r.logger))
	engine.Use(middleware.Recovery(r.logger))
	engine.Use(middleware.Metrics(r.metrics))
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/healthz", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	api := engine.Group("/api/v1")
	{
		// WebSocket，token 走 query
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimit(middleware.NewIPRateLimiter(r.cfg.RateLimit.PerMinute)))
		{
			auth.POST("/login", r.authHandler.Login)
		}

		// Stripe 回调，靠签名校验
		api.POST("/billing/webhook", r.billingHandler.Webhook)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 用户
			user := authenticated.Group("/user")
			{
				user.GET("/me", r.userHandler.GetProfile)
				if r.cfg.Billing.AllowManualPlanChange {
					user.PUT("/plan", r.userHandler.ChangePlan)
				}
			}

			// 承诺与打卡
			commitments := authenticated.Group("/commitments")
			{
				commitments.POST("", r.commitmentHandler.Create)
				commitments.GET("", r.commitmentHandler.List)
				commitments.GET("/:id", r.commitmentHandler.Get)
				commitments.DELETE("/:id", r.commitmentHandler.Delete)
				commitments.POST("/:id/checkins", r.commitmentHandler.CheckIn)
				commitments.GET("/:id/checkins", r.commitmentHandler.ListCheckIns)
			}

			authenticated.POST("/billing/checkout", r.billingHandler.Checkout)
		}
	}

	return engine
}
