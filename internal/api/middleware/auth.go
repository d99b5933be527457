package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/lifedebt_server/internal/pkg/jwt"
	"github.com/qs3c/lifedebt_server/internal/pkg/response"
)

const UserIDKey = "userID"

var (
	errNoCredentials = errors.New("请提供认证信息")
	errBadScheme     = errors.New("认证格式错误")
)

// Auth 校验 Bearer token，把用户 ID 放进上下文
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Abort(c, response.CodeAuthFailed, err.Error())
			return
		}

		claims, err := jwt.ParseToken(token, jwtSecret)
		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			response.Abort(c, response.CodeAuthFailed, "登录已过期，请重新登录")
			return
		case err != nil:
			response.Abort(c, response.CodeAuthFailed, "认证失败")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// bearerToken 解析 "Bearer <token>"，scheme 不区分大小写
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errNoCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errBadScheme
	}
	return token, nil
}

// GetUserID 仅在 Auth 之后的 handler 中有值
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
