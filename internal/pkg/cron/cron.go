package cron

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/lifedebt_server/internal/service"
)

// Sweeper 由 CommitmentService 实现
type Sweeper interface {
	SweepStatuses(ctx context.Context, dryRun bool) (*service.SweepResult, error)
}

type Service struct {
	sweeper  Sweeper
	interval time.Duration
	now      func() time.Time

	// 串行执行，午夜与定时任务不重叠
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewService intervalHours <= 0 时只在 UTC 午夜执行
func NewService(sweeper Sweeper, intervalHours int) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		sweeper:  sweeper,
		interval: time.Duration(intervalHours) * time.Hour,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDailySweep()
	if s.interval > 0 {
		go s.runPeriodicSweep()
	}
	zap.L().Info("cron started", zap.Duration("interval", s.interval))
}

// Stop 停止定时任务，并取消进行中的重算
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		zap.L().Info("cron stopped")
	})
}

// untilMidnight 距下一个 UTC 零点的时长，日期翻转后漏打才会生效
func (s *Service) untilMidnight() time.Duration {
	now := s.now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	return next.Sub(now)
}

func (s *Service) runDailySweep() {
	timer := time.NewTimer(s.untilMidnight())
	defer timer.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
			s.sweep("midnight")
			timer.Reset(s.untilMidnight())
		}
	}
}

func (s *Service) runPeriodicSweep() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweep("interval")
		}
	}
}

func (s *Service) sweep(trigger string) {
	if _, err := s.RunNow(s.ctx); err != nil && s.ctx.Err() == nil {
		zap.L().Error("status sweep failed", zap.String("trigger", trigger), zap.Error(err))
	}
}

// RunNow 立即执行一次重算（用于测试或手动触发）
func (s *Service) RunNow(ctx context.Context) (*service.SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result, err := s.sweeper.SweepStatuses(ctx, false)
	if err != nil {
		return result, err
	}

	zap.L().Info("status sweep completed",
		zap.Int("scanned", result.Scanned),
		zap.Int("changed", result.Changed),
		zap.Any("transitions", result.Transitions),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}
