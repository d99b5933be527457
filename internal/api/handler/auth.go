package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/lifedebt_server/internal/model/dto"
	"github.com/qs3c/lifedebt_server/internal/pkg/response"
	"github.com/qs3c/lifedebt_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login 邮箱登录，首次登录自动创建账号
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}
