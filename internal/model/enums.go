package model

import "strings"

// TaskType 承诺的任务类型
type TaskType string

const (
	TaskStepsDaily     TaskType = "steps_daily"
	TaskKmDaily        TaskType = "km_daily"
	TaskSessionsWeekly TaskType = "sessions_weekly"
	TaskDailyHard      TaskType = "daily_hard"
)

// TaskTypes lists every task type in display order.
var TaskTypes = []TaskType{TaskStepsDaily, TaskKmDaily, TaskSessionsWeekly, TaskDailyHard}

func (t TaskType) Valid() bool {
	switch t {
	case TaskStepsDaily, TaskKmDaily, TaskSessionsWeekly, TaskDailyHard:
		return true
	}
	return false
}

// CommitmentStatus 承诺状态
type CommitmentStatus string

const (
	StatusCreated   CommitmentStatus = "created"
	StatusActive    CommitmentStatus = "active"
	StatusFailed    CommitmentStatus = "failed"
	StatusCompleted CommitmentStatus = "completed"
)

// OpenStatuses are the statuses that occupy a plan slot.
var OpenStatuses = []CommitmentStatus{StatusCreated, StatusActive}

func (s CommitmentStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusActive, StatusFailed, StatusCompleted:
		return true
	}
	return false
}

// Terminal 终态（failed / completed）不再重新计算
func (s CommitmentStatus) Terminal() bool {
	return s == StatusFailed || s == StatusCompleted
}

// ParseStatus 未知值按 created 处理
func ParseStatus(s string) CommitmentStatus {
	st := CommitmentStatus(s)
	if !st.Valid() {
		return StatusCreated
	}
	return st
}

// Plan 订阅套餐
type Plan string

const (
	PlanStudent  Plan = "student"
	PlanBuilder  Plan = "builder"
	PlanHardcore Plan = "hardcore"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanStudent, PlanBuilder, PlanHardcore:
		return true
	}
	return false
}

// Paid reports whether the plan is sold through checkout.
func (p Plan) Paid() bool {
	return p == PlanBuilder || p == PlanHardcore
}

// ParsePlan 校验套餐标识，ok=false 表示不在枚举内
func ParsePlan(s string) (Plan, bool) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

// NormalizeEmail 邮箱统一小写去空格
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
