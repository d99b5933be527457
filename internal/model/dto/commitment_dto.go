package dto

// CreateCommitmentRequest 创建承诺请求
type CreateCommitmentRequest struct {
	Category     string `json:"category" binding:"omitempty,max=50"`
	TaskType     string `json:"task_type" binding:"required"`
	TargetValue  int    `json:"target_value" binding:"required,gt=0"`
	DurationDays int    `json:"duration_days" binding:"required,gt=0,lte=365"`
	StakeCents   int64  `json:"stake_cents" binding:"gte=0"`
}

// CommitmentInfo 承诺信息
type CommitmentInfo struct {
	ID           int64          `json:"id"`
	Category     string         `json:"category"`
	TaskType     string         `json:"task_type"`
	TargetValue  int            `json:"target_value"`
	DurationDays int            `json:"duration_days"`
	StartDate    string         `json:"start_date"`
	EndDate      string         `json:"end_date"`
	StakeCents   int64          `json:"stake_cents"`
	Status       string         `json:"status"`
	Progress     *ProgressInfo  `json:"progress"`
	CheckIns     []*CheckInInfo `json:"check_ins,omitempty"`
	CreatedAt    string         `json:"created_at"`
}

// ProgressInfo 漏打统计与押金结果
type ProgressInfo struct {
	Misses         int    `json:"misses"`
	AllowedMisses  int    `json:"allowed_misses"`
	MissesLeft     int    `json:"misses_left"`
	CheckedInToday bool   `json:"checked_in_today"`
	InDanger       bool   `json:"in_danger"`
	StakeOutcome   string `json:"stake_outcome"`
}

// CommitmentListResponse 承诺列表
type CommitmentListResponse struct {
	Commitments []*CommitmentInfo `json:"commitments"`
	Total       int               `json:"total"`
}
