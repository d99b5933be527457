package model

import (
	"time"
)

type User struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	Email            string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Plan             Plan      `gorm:"size:20;not null;default:student" json:"plan"`
	StripeCustomerID *string   `gorm:"size:100;uniqueIndex" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
