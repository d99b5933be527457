package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/lifedebt_server/config"
	"github.com/qs3c/lifedebt_server/internal/database"
	"github.com/qs3c/lifedebt_server/internal/pkg/logger"
	"github.com/qs3c/lifedebt_server/internal/pkg/pubsub"
	"github.com/qs3c/lifedebt_server/internal/repository"
	"github.com/qs3c/lifedebt_server/internal/service"
)

var (
	dryRun  = flag.Bool("dry-run", false, "Only report transitions, don't write them")
	timeout = flag.Duration("timeout", 10*time.Minute, "Abort the sweep after this long")
)

// 一次性重算所有未结束承诺的状态，可由外部 cron 调度
func main() {
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, err := logger.Init(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer lg.Sync()

	db, err := database.Open(&cfg.Database)
	if err != nil {
		lg.Fatal("failed to open database", zap.Error(err))
	}

	// 有 Redis 时照常推送状态变化
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		lg.Warn("redis unavailable, status changes will not be pushed", zap.Error(err))
		rdb = nil
	}

	commitments := service.NewCommitmentService(
		repository.NewCommitmentRepository(db),
		repository.NewUserRepository(db),
		pubsub.NewPublisher(rdb),
		nil,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	result, err := commitments.SweepStatuses(ctx, *dryRun)
	if err != nil {
		lg.Error("sweep aborted", zap.Error(err), zap.Int("scanned", result.Scanned))
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	os.Stdout.Write(append(out, '\n'))
}
