package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/lifedebt_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// CreateIfAbsent 按 stripe_session_id 幂等写入，返回是否新建
func (r *SubscriptionRepository) CreateIfAbsent(sub *model.Subscription) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_session_id"}},
		DoNothing: true,
	}).Create(sub)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// LatestByUserID 用户最近一次订阅记录
func (r *SubscriptionRepository) LatestByUserID(userID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CancelBySubscriptionID 标记 Stripe 订阅已取消，返回受影响行数
func (r *SubscriptionRepository) CancelBySubscriptionID(subscriptionID string) (int64, error) {
	result := r.db.Model(&model.Subscription{}).
		Where("stripe_subscription_id = ? AND status = ?", subscriptionID, model.SubscriptionActive).
		Update("status", model.SubscriptionCanceled)
	return result.RowsAffected, result.Error
}

// CountActiveByUserID 用户仍有效的订阅数
func (r *SubscriptionRepository) CountActiveByUserID(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).
		Where("user_id = ? AND status = ?", userID, model.SubscriptionActive).
		Count(&count).Error
	return count, err
}
