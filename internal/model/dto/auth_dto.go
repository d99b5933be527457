package dto

// LoginRequest 邮箱登录请求，首次登录自动注册
type LoginRequest struct {
	Email string `json:"email" binding:"required,email,max=100"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int       `json:"expires_in"` // 秒
	User      *UserInfo `json:"user"`
	IsNewUser bool      `json:"is_new_user"`
}
