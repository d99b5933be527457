package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/lifedebt_server/internal/pkg/response"
	"github.com/qs3c/lifedebt_server/internal/service"
)

// respondError 将 service 错误映射为响应码，未识别的错误记录日志后返回 5000
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPlan),
		errors.Is(err, service.ErrPlanNotPurchasable),
		errors.Is(err, service.ErrInvalidTaskType),
		errors.Is(err, service.ErrInvalidTarget),
		errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrInvalidStake):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrActiveLimitReached),
		errors.Is(err, service.ErrStakeTooHigh),
		errors.Is(err, service.ErrTaskTypeLocked):
		response.PlanLimitError(c, err.Error())
	case errors.Is(err, service.ErrCommitmentPermission),
		errors.Is(err, service.ErrPlanChangeDisabled):
		response.PermissionError(c, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCommitmentNotFound):
		response.NotFoundError(c, err.Error())
	default:
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.ServerError(c, "")
	}
}

// parseID 解析路径参数 :id
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "无效的ID")
		return 0, false
	}
	return id, true
}
