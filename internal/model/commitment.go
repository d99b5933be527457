package model

import (
	"time"
)

type Commitment struct {
	ID           int64            `gorm:"primaryKey" json:"id"`
	UserID       int64            `gorm:"not null;index" json:"user_id"`
	Category     string           `gorm:"size:50;not null;default:sport" json:"category"`
	TaskType     TaskType         `gorm:"size:30;not null" json:"task_type"`
	TargetValue  int              `gorm:"not null" json:"target_value"`
	DurationDays int              `gorm:"not null" json:"duration_days"`
	StartDate    time.Time        `gorm:"not null" json:"start_date"`
	EndDate      time.Time        `gorm:"not null" json:"end_date"`
	StakeCents   int64            `gorm:"not null;default:0" json:"stake_cents"`
	Status       CommitmentStatus `gorm:"size:20;not null;default:created;index" json:"status"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	// 关联
	CheckIns []CheckIn `gorm:"foreignKey:CommitmentID" json:"check_ins,omitempty"`
}

func (Commitment) TableName() string {
	return "commitments"
}

// CheckIn 每日打卡，(commitment_id, date) 唯一
type CheckIn struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	CommitmentID int64     `gorm:"not null;uniqueIndex:idx_check_ins_commitment_date,priority:1" json:"commitment_id"`
	Date         time.Time `gorm:"not null;uniqueIndex:idx_check_ins_commitment_date,priority:2" json:"date"`
	Success      bool      `gorm:"not null" json:"success"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (CheckIn) TableName() string {
	return "check_ins"
}
