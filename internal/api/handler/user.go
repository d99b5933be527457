package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/lifedebt_server/internal/api/middleware"
	"github.com/qs3c/lifedebt_server/internal/model/dto"
	"github.com/qs3c/lifedebt_server/internal/pkg/response"
	"github.com/qs3c/lifedebt_server/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile 获取当前用户信息与套餐限制
// GET /api/v1/user/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, profile)
}

// ChangePlan 直接修改套餐（开发环境）
// PUT /api/v1/user/plan
func (h *UserHandler) ChangePlan(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	profile, err := h.userService.ChangePlan(userID, req.Plan)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "套餐已更新", profile)
}
