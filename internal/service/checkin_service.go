package service

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/lifedebt_server/internal/lifecycle"
	"github.com/qs3c/lifedebt_server/internal/model"
	"github.com/qs3c/lifedebt_server/internal/model/dto"
	"github.com/qs3c/lifedebt_server/internal/pkg/metrics"
	"github.com/qs3c/lifedebt_server/internal/repository"
)

type CheckInService struct {
	checkInRepo       *repository.CheckInRepository
	commitmentRepo    *repository.CommitmentRepository
	commitmentService *CommitmentService
	metrics           *metrics.Metrics
}

func NewCheckInService(
	checkInRepo *repository.CheckInRepository,
	commitmentRepo *repository.CommitmentRepository,
	commitmentService *CommitmentService,
	m *metrics.Metrics,
) *CheckInService {
	return &CheckInService{
		checkInRepo:       checkInRepo,
		commitmentRepo:    commitmentRepo,
		commitmentService: commitmentService,
		metrics:           m,
	}
}

// CheckIn 记录今天（UTC）的打卡，同一天重复打卡覆盖结果
// 与 CommitmentService 共用时间源
func (s *CheckInService) CheckIn(userID, commitmentID int64, success *bool) (*dto.CheckInResponse, error) {
	if _, err := s.owned(userID, commitmentID); err != nil {
		return nil, err
	}

	ok := true
	if success != nil {
		ok = *success
	}

	ci, err := s.checkInRepo.Upsert(&model.CheckIn{
		CommitmentID: commitmentID,
		Date:         lifecycle.Day(s.commitmentService.now()),
		Success:      ok,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CheckInRecorded(ok)
	zap.L().Info("check-in recorded",
		zap.Int64("user_id", userID),
		zap.Int64("commitment_id", commitmentID),
		zap.String("date", ci.Date.UTC().Format(dateLayout)),
		zap.Bool("success", ok),
	)

	// 打卡后状态可能变化（例如 created -> active）
	commitment, err := s.commitmentService.Get(userID, commitmentID)
	if err != nil {
		return nil, err
	}

	return &dto.CheckInResponse{
		CheckIn:    toCheckInInfo(ci),
		Commitment: commitment,
	}, nil
}

// List 承诺的全部打卡，按日期升序
func (s *CheckInService) List(userID, commitmentID int64) ([]*dto.CheckInInfo, error) {
	if _, err := s.owned(userID, commitmentID); err != nil {
		return nil, err
	}

	list, err := s.checkInRepo.ListByCommitmentID(commitmentID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.CheckInInfo, 0, len(list))
	for _, ci := range list {
		items = append(items, toCheckInInfo(ci))
	}
	return items, nil
}

func (s *CheckInService) owned(userID, commitmentID int64) (*model.Commitment, error) {
	c, err := s.commitmentRepo.GetByID(commitmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommitmentNotFound
		}
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrCommitmentPermission
	}
	return c, nil
}

func toCheckInInfo(ci *model.CheckIn) *dto.CheckInInfo {
	return &dto.CheckInInfo{
		ID:      ci.ID,
		Date:    ci.Date.UTC().Format(dateLayout),
		Success: ci.Success,
	}
}
