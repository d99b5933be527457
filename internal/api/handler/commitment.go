package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/lifedebt_server/internal/api/middleware"
	"github.com/qs3c/lifedebt_server/internal/model/dto"
	"github.com/qs3c/lifedebt_server/internal/pkg/response"
	"github.com/qs3c/lifedebt_server/internal/service"
)

type CommitmentHandler struct {
	commitmentService *service.CommitmentService
	checkInService    *service.CheckInService
}

func NewCommitmentHandler(commitmentService *service.CommitmentService, checkInService *service.CheckInService) *CommitmentHandler {
	return &CommitmentHandler{
		commitmentService: commitmentService,
		checkInService:    checkInService,
	}
}

// Create 创建承诺
// POST /api/v1/commitments
func (h *CommitmentHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateCommitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.commitmentService.Create(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", info)
}

// List 获取承诺列表
// GET /api/v1/commitments
func (h *CommitmentHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.commitmentService.List(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, resp)
}

// Get 获取承诺详情
// GET /api/v1/commitments/:id
func (h *CommitmentHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	info, err := h.commitmentService.Get(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, info)
}

// Delete 删除承诺
// DELETE /api/v1/commitments/:id
func (h *CommitmentHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.commitmentService.Delete(userID, id); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// CheckIn 今日打卡
// POST /api/v1/commitments/:id/checkins
func (h *CommitmentHandler) CheckIn(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	// 空 body 视为成功打卡
	var req dto.CheckInRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ParamError(c, err.Error())
			return
		}
	}

	resp, err := h.checkInService.CheckIn(userID, id, req.Success)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "打卡成功", resp)
}

// ListCheckIns 获取打卡记录
// GET /api/v1/commitments/:id/checkins
func (h *CommitmentHandler) ListCheckIns(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	list, err := h.checkInService.List(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, list)
}
