package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/lifedebt_server/internal/model"
)

type CheckInRepository struct {
	db *gorm.DB
}

func NewCheckInRepository(db *gorm.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// Upsert 同一承诺同一天只保留一条，重复打卡覆盖 success
func (r *CheckInRepository) Upsert(ci *model.CheckIn) (*model.CheckIn, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "commitment_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"success", "updated_at"}),
	}).Create(ci).Error
	if err != nil {
		return nil, err
	}
	// 冲突更新时各驱动回填的 id 不一致，重新读取
	return r.GetByCommitmentAndDate(ci.CommitmentID, ci.Date)
}

func (r *CheckInRepository) GetByCommitmentAndDate(commitmentID int64, date time.Time) (*model.CheckIn, error) {
	var ci model.CheckIn
	err := r.db.Where("commitment_id = ? AND date = ?", commitmentID, date).First(&ci).Error
	if err != nil {
		return nil, err
	}
	return &ci, nil
}

func (r *CheckInRepository) ListByCommitmentID(commitmentID int64) ([]*model.CheckIn, error) {
	var list []*model.CheckIn
	err := r.db.Where("commitment_id = ?", commitmentID).Order("date ASC").Find(&list).Error
	return list, err
}
