package dto

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Plan      string `json:"plan"`
	CreatedAt string `json:"created_at,omitempty"`
}

// PlanLimits 套餐限制，-1 表示不限
type PlanLimits struct {
	MaxActive      int      `json:"max_active"`
	MaxStakeCents  int64    `json:"max_stake_cents"`
	AllowDailyHard bool     `json:"allow_daily_hard"`
	TaskTypes      []string `json:"task_types"`
}

// SubscriptionInfo 最近一次订阅
type SubscriptionInfo struct {
	Plan      string `json:"plan"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// UserProfile 当前用户详情
type UserProfile struct {
	User            *UserInfo         `json:"user"`
	Limits          *PlanLimits       `json:"limits"`
	OpenCommitments int64             `json:"open_commitments"`
	Subscription    *SubscriptionInfo `json:"subscription,omitempty"`
}

// ChangePlanRequest 直接修改套餐（开发环境）
type ChangePlanRequest struct {
	Plan string `json:"plan" binding:"required"`
}
