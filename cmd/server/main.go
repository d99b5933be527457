package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/lifedebt_server/config"
	"github.com/qs3c/lifedebt_server/internal/api"
	"github.com/qs3c/lifedebt_server/internal/api/handler"
	"github.com/qs3c/lifedebt_server/internal/database"
	"github.com/qs3c/lifedebt_server/internal/pkg/billing"
	"github.com/qs3c/lifedebt_server/internal/pkg/cron"
	"github.com/qs3c/lifedebt_server/internal/pkg/dedup"
	"github.com/qs3c/lifedebt_server/internal/pkg/logger"
	"github.com/qs3c/lifedebt_server/internal/pkg/metrics"
	"github.com/qs3c/lifedebt_server/internal/pkg/pubsub"
	"github.com/qs3c/lifedebt_server/internal/pkg/ws"
	"github.com/qs3c/lifedebt_server/internal/repository"
	"github.com/qs3c/lifedebt_server/internal/service"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	lg, err := logger.Init(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer lg.Sync()

	// 初始化数据库
	db, err := database.Open(&cfg.Database)
	if err != nil {
		lg.Fatal("failed to open database", zap.Error(err))
	}
	lg.Info("database connected", zap.String("driver", cfg.Database.Driver))

	// 初始化 Redis（可选）
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		lg.Fatal("failed to connect redis", zap.Error(err))
	}
	if rdb == nil {
		lg.Warn("redis not configured, webhook dedup and live updates disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// WebSocket Hub，状态变化经 Redis 转发
	wsHub := ws.NewHub()
	publisher := pubsub.NewPublisher(rdb)
	if rdb != nil {
		go func() {
			if err := wsHub.Relay(ctx, pubsub.NewSubscriber(rdb)); err != nil && !errors.Is(err, context.Canceled) {
				lg.Error("status relay stopped", zap.Error(err))
			}
		}()
	}

	m := metrics.New()
	events := dedup.NewStore(rdb, dedup.KeyPrefixStripeEvent, dedup.DefaultTTL)
	gateway := billing.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, nil)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	commitmentRepo := repository.NewCommitmentRepository(db)
	checkInRepo := repository.NewCheckInRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, cfg)
	commitmentService := service.NewCommitmentService(commitmentRepo, userRepo, publisher, m)
	userService := service.NewUserService(userRepo, commitmentService, subRepo, publisher, cfg)
	checkInService := service.NewCheckInService(checkInRepo, commitmentRepo, commitmentService, m)
	billingService := service.NewBillingService(userRepo, subRepo, gateway, events, publisher, m, cfg)

	// 初始化 Handler
	router := api.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewCommitmentHandler(commitmentService, checkInService),
		handler.NewBillingHandler(billingService),
		handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins),
		m,
		lg,
		cfg,
	)

	// 定时重算承诺状态
	if cfg.Sweep.Enabled {
		sweeper := cron.NewService(commitmentService, cfg.Sweep.IntervalHours)
		sweeper.Start()
		defer sweeper.Stop()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
