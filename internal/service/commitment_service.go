package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/lifedebt_server/internal/lifecycle"
	"github.com/qs3c/lifedebt_server/internal/model"
	"github.com/qs3c/lifedebt_server/internal/model/dto"
	"github.com/qs3c/lifedebt_server/internal/pkg/metrics"
	"github.com/qs3c/lifedebt_server/internal/pkg/pubsub"
	"github.com/qs3c/lifedebt_server/internal/policy"
	"github.com/qs3c/lifedebt_server/internal/repository"
)

var (
	ErrInvalidTaskType      = errors.New("无效的任务类型")
	ErrInvalidTarget        = errors.New("目标值必须大于 0")
	ErrInvalidDuration      = errors.New("持续天数必须大于 0")
	ErrInvalidStake         = errors.New("押金不能为负数")
	ErrActiveLimitReached   = errors.New("进行中的承诺数已达当前套餐上限")
	ErrStakeTooHigh         = errors.New("押金超过当前套餐上限")
	ErrTaskTypeLocked       = errors.New("当前套餐未解锁该任务类型")
	ErrCommitmentNotFound   = errors.New("承诺不存在")
	ErrCommitmentPermission = errors.New("无权操作该承诺")
)

const (
	defaultCategory = "sport"
	sweepBatchSize  = 200
)

type CommitmentService struct {
	commitmentRepo *repository.CommitmentRepository
	userRepo       *repository.UserRepository
	publisher      StatusPublisher
	metrics        *metrics.Metrics
	now            Clock
}

func NewCommitmentService(
	commitmentRepo *repository.CommitmentRepository,
	userRepo *repository.UserRepository,
	publisher StatusPublisher,
	m *metrics.Metrics,
) *CommitmentService {
	return &CommitmentService{
		commitmentRepo: commitmentRepo,
		userRepo:       userRepo,
		publisher:      publisher,
		metrics:        m,
		now:            time.Now,
	}
}

// SetClock 替换时间源
func (s *CommitmentService) SetClock(c Clock) {
	s.now = c
}

// Create 创建承诺
// 校验顺序：参数 -> 进行中数量 -> 押金 -> 任务类型
func (s *CommitmentService) Create(userID int64, req *dto.CreateCommitmentRequest) (*dto.CommitmentInfo, error) {
	taskType := model.TaskType(strings.TrimSpace(req.TaskType))
	if !taskType.Valid() {
		return nil, ErrInvalidTaskType
	}
	if req.TargetValue <= 0 {
		return nil, ErrInvalidTarget
	}
	if req.DurationDays <= 0 {
		return nil, ErrInvalidDuration
	}
	if req.StakeCents < 0 {
		return nil, ErrInvalidStake
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := s.now()
	openCount, err := s.countOpen(userID, now)
	if err != nil {
		return nil, err
	}

	limits := policy.For(user.Plan)
	if !limits.CanOpen(openCount) {
		s.metrics.PlanRejected(string(user.Plan), "active_limit")
		return nil, ErrActiveLimitReached
	}
	if !limits.AllowsStake(req.StakeCents) {
		s.metrics.PlanRejected(string(user.Plan), "stake")
		return nil, ErrStakeTooHigh
	}
	if !limits.AllowsTaskType(taskType) {
		s.metrics.PlanRejected(string(user.Plan), "task_type")
		return nil, ErrTaskTypeLocked
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = defaultCategory
	}

	start := now.UTC()
	c := &model.Commitment{
		UserID:       userID,
		Category:     category,
		TaskType:     taskType,
		TargetValue:  req.TargetValue,
		DurationDays: req.DurationDays,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, req.DurationDays),
		StakeCents:   req.StakeCents,
		Status:       model.StatusCreated,
	}
	if err := s.commitmentRepo.Create(c); err != nil {
		return nil, err
	}

	s.metrics.CommitmentCreated(string(taskType))
	zap.L().Info("commitment created",
		zap.Int64("user_id", userID),
		zap.Int64("commitment_id", c.ID),
		zap.String("task_type", string(taskType)),
		zap.Int64("stake_cents", c.StakeCents),
	)

	// 返回存储的 created，进度与之保持一致；下次读取时再推进为 active
	ev := lifecycle.Evaluate(lifecycle.FromModel(c), now, c.StakeCents)
	ev.Status = c.Status
	ev.InDanger = false
	ev.StakeOutcome = lifecycle.OutcomeOf(c.Status, c.StakeCents)
	return toCommitmentInfo(c, ev, false), nil
}

// CountOpen 刷新后统计用户未结束的承诺数，与创建时的名额判断一致
func (s *CommitmentService) CountOpen(userID int64) (int, error) {
	return s.countOpen(userID, s.now())
}

// countOpen 先刷新已过期的承诺，避免占用名额
func (s *CommitmentService) countOpen(userID int64, now time.Time) (int, error) {
	open, err := s.commitmentRepo.ListOpenByUserIDWithCheckIns(userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range open {
		if _, err := s.refresh(c, now); err != nil {
			return 0, err
		}
		if !c.Status.Terminal() {
			n++
		}
	}
	return n, nil
}

// List 用户全部承诺，读取时重新计算状态并写回
func (s *CommitmentService) List(userID int64) (*dto.CommitmentListResponse, error) {
	list, err := s.commitmentRepo.ListByUserIDWithCheckIns(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]*dto.CommitmentInfo, 0, len(list))
	for _, c := range list {
		ev, err := s.refresh(c, now)
		if err != nil {
			return nil, err
		}
		items = append(items, toCommitmentInfo(c, ev, false))
	}

	return &dto.CommitmentListResponse{
		Commitments: items,
		Total:       len(items),
	}, nil
}

// Get 承诺详情（含打卡记录）
func (s *CommitmentService) Get(userID, commitmentID int64) (*dto.CommitmentInfo, error) {
	c, err := s.commitmentRepo.GetByIDWithCheckIns(commitmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommitmentNotFound
		}
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrCommitmentPermission
	}

	ev, err := s.refresh(c, s.now())
	if err != nil {
		return nil, err
	}
	return toCommitmentInfo(c, ev, true), nil
}

// Delete 删除承诺及其打卡
func (s *CommitmentService) Delete(userID, commitmentID int64) error {
	c, err := s.commitmentRepo.GetByID(commitmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommitmentNotFound
		}
		return err
	}
	if c.UserID != userID {
		return ErrCommitmentPermission
	}

	if err := s.commitmentRepo.DeleteWithCheckIns(commitmentID); err != nil {
		return err
	}

	zap.L().Info("commitment deleted", zap.Int64("user_id", userID), zap.Int64("commitment_id", commitmentID))
	return nil
}

// SweepResult 一次批量重算的统计
type SweepResult struct {
	Scanned     int            `json:"scanned"`
	Changed     int            `json:"changed"`
	Transitions map[string]int `json:"transitions"` // "active->failed" -> n
}

// SweepStatuses 重新计算所有未结束的承诺；dryRun 时只统计不写库
func (s *CommitmentService) SweepStatuses(ctx context.Context, dryRun bool) (*SweepResult, error) {
	result := &SweepResult{Transitions: make(map[string]int)}
	now := s.now()

	var afterID int64
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := s.commitmentRepo.ListOpenWithCheckIns(afterID, sweepBatchSize)
		if err != nil {
			return result, fmt.Errorf("list open commitments: %w", err)
		}

		for _, c := range batch {
			afterID = c.ID
			result.Scanned++

			from := c.Status
			to := lifecycle.Compute(lifecycle.FromModel(c), now)
			if to == from {
				continue
			}

			if !dryRun {
				changed, err := s.commitmentRepo.UpdateStatusIf(c.ID, from, to)
				if err != nil {
					return result, fmt.Errorf("update commitment %d: %w", c.ID, err)
				}
				if !changed {
					continue
				}
				c.Status = to
				s.onTransition(c, from, to)
			}

			result.Changed++
			result.Transitions[string(from)+"->"+string(to)]++
		}

		if len(batch) < sweepBatchSize {
			break
		}
	}

	zap.L().Info("status sweep finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("scanned", result.Scanned),
		zap.Int("changed", result.Changed),
	)
	return result, nil
}

// refresh 重新计算状态，与存储不一致时条件写回
func (s *CommitmentService) refresh(c *model.Commitment, now time.Time) (lifecycle.Evaluation, error) {
	ev := lifecycle.Evaluate(lifecycle.FromModel(c), now, c.StakeCents)
	if ev.Status == c.Status {
		return ev, nil
	}

	from := c.Status
	changed, err := s.commitmentRepo.UpdateStatusIf(c.ID, from, ev.Status)
	if err != nil {
		return ev, err
	}
	c.Status = ev.Status
	// 并发刷新时只有一方真正完成转换
	if changed {
		s.onTransition(c, from, ev.Status)
	}
	return ev, nil
}

func (s *CommitmentService) onTransition(c *model.Commitment, from, to model.CommitmentStatus) {
	s.metrics.StatusTransition(string(from), string(to))
	zap.L().Info("commitment status changed",
		zap.Int64("commitment_id", c.ID),
		zap.Int64("user_id", c.UserID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishStatus(context.Background(), &pubsub.StatusMessage{
		Type:         pubsub.TypeStatusChanged,
		UserID:       c.UserID,
		CommitmentID: c.ID,
		From:         string(from),
		To:           string(to),
	})
	if err != nil {
		zap.L().Warn("publish status change failed", zap.Int64("commitment_id", c.ID), zap.Error(err))
	}
}

func toCommitmentInfo(c *model.Commitment, ev lifecycle.Evaluation, withCheckIns bool) *dto.CommitmentInfo {
	info := &dto.CommitmentInfo{
		ID:           c.ID,
		Category:     c.Category,
		TaskType:     string(c.TaskType),
		TargetValue:  c.TargetValue,
		DurationDays: c.DurationDays,
		StartDate:    c.StartDate.UTC().Format(dateLayout),
		EndDate:      c.EndDate.UTC().Format(dateLayout),
		StakeCents:   c.StakeCents,
		Status:       string(c.Status),
		Progress: &dto.ProgressInfo{
			Misses:         ev.Misses,
			AllowedMisses:  ev.AllowedMisses,
			MissesLeft:     ev.MissesLeft,
			CheckedInToday: ev.CheckedInToday,
			InDanger:       ev.InDanger,
			StakeOutcome:   string(ev.StakeOutcome),
		},
		CreatedAt: c.CreatedAt.UTC().Format(timeLayout),
	}

	if withCheckIns {
		info.CheckIns = make([]*dto.CheckInInfo, 0, len(c.CheckIns))
		for i := range c.CheckIns {
			info.CheckIns = append(info.CheckIns, toCheckInInfo(&c.CheckIns[i]))
		}
	}
	return info
}
