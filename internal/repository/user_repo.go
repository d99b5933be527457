package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/lifedebt_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByStripeCustomerID(customerID string) (*model.User, error) {
	var user model.User
	err := r.db.Where("stripe_customer_id = ?", customerID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertByEmail 按邮箱查找用户，不存在则以 student 套餐创建；并发创建时以唯一索引兜底
func (r *UserRepository) UpsertByEmail(email string) (*model.User, error) {
	user := &model.User{Email: email, Plan: model.PlanStudent}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(user).Error
	if err != nil {
		return nil, err
	}
	return r.GetByEmail(email)
}

func (r *UserRepository) UpdatePlan(id int64, plan model.Plan) error {
	return r.UpdateFields(id, map[string]interface{}{"plan": plan})
}

func (r *UserRepository) SetStripeCustomerID(id int64, customerID string) error {
	return r.UpdateFields(id, map[string]interface{}{"stripe_customer_id": customerID})
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}
