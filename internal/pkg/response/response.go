package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 业务码，HTTP 状态统一为 200
const (
	CodeSuccess          = 0
	CodeParamError       = 1000
	CodeAuthFailed       = 1001
	CodePermissionDenied = 1002
	CodeResourceNotFound = 1003
	CodePlanLimit        = 1004
	CodeServerError      = 5000
)

// requestIDKey 与 middleware.RequestIDKey 相同
const requestIDKey = "requestID"

var codeMessages = map[int]string{
	CodeSuccess:          "success",
	CodeParamError:       "参数错误",
	CodeAuthFailed:       "认证失败",
	CodePermissionDenied: "权限不足",
	CodeResourceNotFound: "资源不存在",
	CodePlanLimit:        "超出当前套餐限制",
	CodeServerError:      "服务器内部错误",
}

type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// MessageFor 业务码的默认文案，未知码按服务器错误处理
func MessageFor(code int) string {
	if msg, ok := codeMessages[code]; ok {
		return msg
	}
	return codeMessages[CodeServerError]
}

func write(c *gin.Context, code int, message string, data interface{}) {
	if message == "" {
		message = MessageFor(code)
	}
	c.JSON(http.StatusOK, Response{
		Code:      code,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(requestIDKey),
	})
}

func Success(c *gin.Context, data interface{}) {
	write(c, CodeSuccess, "", data)
}

func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	write(c, CodeSuccess, message, data)
}

// Error message 为空时使用默认文案
func Error(c *gin.Context, code int, message string) {
	write(c, code, message, nil)
}

// Abort 写入错误并终止后续 handler，供中间件使用
func Abort(c *gin.Context, code int, message string) {
	Error(c, code, message)
	c.Abort()
}

func ParamError(c *gin.Context, message string)      { Error(c, CodeParamError, message) }
func AuthError(c *gin.Context, message string)       { Error(c, CodeAuthFailed, message) }
func PermissionError(c *gin.Context, message string) { Error(c, CodePermissionDenied, message) }
func NotFoundError(c *gin.Context, message string)   { Error(c, CodeResourceNotFound, message) }
func PlanLimitError(c *gin.Context, message string)  { Error(c, CodePlanLimit, message) }
func ServerError(c *gin.Context, message string)     { Error(c, CodeServerError, message) }
