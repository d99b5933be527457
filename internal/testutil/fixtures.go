package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/lifedebt_server/internal/model"
)

var seq int64

// Day 返回 UTC 零点
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	user := &model.User{
		Email: fmt.Sprintf("test_%d@example.com", atomic.AddInt64(&seq, 1)),
		Plan:  model.PlanStudent,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithPlan 设置套餐
func WithPlan(plan model.Plan) func(*model.User) {
	return func(u *model.User) {
		u.Plan = plan
	}
}

// WithStripeCustomer 设置 Stripe customer
func WithStripeCustomer(customerID string) func(*model.User) {
	return func(u *model.User) {
		u.StripeCustomerID = &customerID
	}
}

// TestCommitment 创建测试承诺，默认 steps_daily、7 天、从今天开始
func TestCommitment(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Commitment)) *model.Commitment {
	t.Helper()

	start := time.Now().UTC()
	c := &model.Commitment{
		UserID:       userID,
		Category:     "sport",
		TaskType:     model.TaskStepsDaily,
		TargetValue:  10000,
		DurationDays: 7,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 7),
		Status:       model.StatusCreated,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := db.Create(c).Error; err != nil {
		t.Fatalf("Failed to create test commitment: %v", err)
	}

	return c
}

// WithTaskType 设置任务类型
func WithTaskType(taskType model.TaskType) func(*model.Commitment) {
	return func(c *model.Commitment) {
		c.TaskType = taskType
	}
}

// WithStatus 设置状态
func WithStatus(status model.CommitmentStatus) func(*model.Commitment) {
	return func(c *model.Commitment) {
		c.Status = status
	}
}

// WithPeriod 设置起止日期，end = start + days
func WithPeriod(start time.Time, days int) func(*model.Commitment) {
	return func(c *model.Commitment) {
		c.StartDate = start
		c.DurationDays = days
		c.EndDate = start.AddDate(0, 0, days)
	}
}

// WithStake 设置押金（分）
func WithStake(cents int64) func(*model.Commitment) {
	return func(c *model.Commitment) {
		c.StakeCents = cents
	}
}

// TestCheckIn 创建测试打卡
func TestCheckIn(t *testing.T, db *gorm.DB, commitmentID int64, date time.Time, success bool) *model.CheckIn {
	t.Helper()

	ci := &model.CheckIn{
		CommitmentID: commitmentID,
		Date:         date,
		Success:      success,
	}

	if err := db.Create(ci).Error; err != nil {
		t.Fatalf("Failed to create test check-in: %v", err)
	}

	return ci
}
