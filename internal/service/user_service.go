package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/lifedebt_server/config"
	"github.com/qs3c/lifedebt_server/internal/model"
	"github.com/qs3c/lifedebt_server/internal/model/dto"
	"github.com/qs3c/lifedebt_server/internal/pkg/pubsub"
	"github.com/qs3c/lifedebt_server/internal/policy"
	"github.com/qs3c/lifedebt_server/internal/repository"
)

var (
	ErrInvalidPlan        = errors.New("无效的套餐")
	ErrPlanChangeDisabled = errors.New("当前环境不允许直接修改套餐")
)

type UserService struct {
	userRepo       *repository.UserRepository
	commitments    *CommitmentService
	subRepo        *repository.SubscriptionRepository
	publisher      StatusPublisher
	cfg            *config.Config
}

func NewUserService(
	userRepo *repository.UserRepository,
	commitments *CommitmentService,
	subRepo *repository.SubscriptionRepository,
	publisher StatusPublisher,
	cfg *config.Config,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		commitments:    commitments,
		subRepo:        subRepo,
		publisher:      publisher,
		cfg:            cfg,
	}
}

// GetProfile 获取用户详情（套餐限制、进行中的承诺数、最近订阅）
func (s *UserService) GetProfile(userID int64) (*dto.UserProfile, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	open, err := s.commitments.CountOpen(userID)
	if err != nil {
		return nil, err
	}

	profile := &dto.UserProfile{
		User:            toUserInfo(user),
		Limits:          toPlanLimits(policy.For(user.Plan)),
		OpenCommitments: int64(open),
	}

	sub, err := s.subRepo.LatestByUserID(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if sub != nil {
		profile.Subscription = &dto.SubscriptionInfo{
			Plan:      string(sub.Plan),
			Status:    sub.Status,
			CreatedAt: sub.CreatedAt.UTC().Format(timeLayout),
		}
	}

	return profile, nil
}

// ChangePlan 直接修改套餐，仅在 billing.allow_manual_plan_change 开启时可用
func (s *UserService) ChangePlan(userID int64, planName string) (*dto.UserProfile, error) {
	if !s.cfg.Billing.AllowManualPlanChange {
		return nil, ErrPlanChangeDisabled
	}

	plan, ok := model.ParsePlan(planName)
	if !ok {
		return nil, ErrInvalidPlan
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.Plan != plan {
		if err := s.userRepo.UpdatePlan(userID, plan); err != nil {
			return nil, err
		}
		publishPlanChange(s.publisher, userID, user.Plan, plan)
	}

	return s.GetProfile(userID)
}

func toPlanLimits(l policy.Limits) *dto.PlanLimits {
	limits := &dto.PlanLimits{
		MaxActive:      l.MaxActive,
		MaxStakeCents:  l.MaxStakeCents,
		AllowDailyHard: l.AllowDailyHard,
	}
	for _, t := range model.TaskTypes {
		if l.AllowsTaskType(t) {
			limits.TaskTypes = append(limits.TaskTypes, string(t))
		}
	}
	return limits
}

func publishPlanChange(p StatusPublisher, userID int64, from, to model.Plan) {
	if p == nil {
		return
	}
	err := p.PublishStatus(context.Background(), &pubsub.StatusMessage{
		Type:   pubsub.TypePlanChanged,
		UserID: userID,
		From:   string(from),
		To:     string(to),
	})
	if err != nil {
		zap.L().Warn("publish plan change failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}
