package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/lifedebt_server/internal/model"
)

type CommitmentRepository struct {
	db *gorm.DB
}

func NewCommitmentRepository(db *gorm.DB) *CommitmentRepository {
	return &CommitmentRepository{db: db}
}

func preloadCheckIns(db *gorm.DB) *gorm.DB {
	return db.Order("check_ins.date ASC")
}

func (r *CommitmentRepository) Create(c *model.Commitment) error {
	return r.db.Create(c).Error
}

func (r *CommitmentRepository) GetByID(id int64) (*model.Commitment, error) {
	var c model.Commitment
	err := r.db.Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByIDWithCheckIns 带打卡记录（按日期升序）
func (r *CommitmentRepository) GetByIDWithCheckIns(id int64) (*model.Commitment, error) {
	var c model.Commitment
	err := r.db.Preload("CheckIns", preloadCheckIns).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByUserIDWithCheckIns 用户全部承诺，最新的在前
func (r *CommitmentRepository) ListByUserIDWithCheckIns(userID int64) ([]*model.Commitment, error) {
	var list []*model.Commitment
	err := r.db.Preload("CheckIns", preloadCheckIns).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// ListOpenByUserIDWithCheckIns 用户未结束（created/active）的承诺
func (r *CommitmentRepository) ListOpenByUserIDWithCheckIns(userID int64) ([]*model.Commitment, error) {
	var list []*model.Commitment
	err := r.db.Preload("CheckIns", preloadCheckIns).
		Where("user_id = ? AND status IN ?", userID, model.OpenStatuses).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

// ListOpenWithCheckIns 按 id 游标分批扫描所有未结束的承诺
func (r *CommitmentRepository) ListOpenWithCheckIns(afterID int64, limit int) ([]*model.Commitment, error) {
	var list []*model.Commitment
	err := r.db.Preload("CheckIns", preloadCheckIns).
		Where("id > ? AND status IN ?", afterID, model.OpenStatuses).
		Order("id ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// UpdateStatusIf 仅当当前状态仍为 from 时写入 to，返回是否由本次调用完成转换
func (r *CommitmentRepository) UpdateStatusIf(id int64, from, to model.CommitmentStatus) (bool, error) {
	result := r.db.Model(&model.Commitment{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteWithCheckIns 删除承诺及其打卡记录
func (r *CommitmentRepository) DeleteWithCheckIns(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("commitment_id = ?", id).Delete(&model.CheckIn{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Commitment{}).Error
	})
}
