package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/qs3c/lifedebt_server/config"
	"github.com/qs3c/lifedebt_server/internal/model"
	"github.com/qs3c/lifedebt_server/internal/model/dto"
	"github.com/qs3c/lifedebt_server/internal/pkg/jwt"
	"github.com/qs3c/lifedebt_server/internal/repository"
)

var (
	ErrInvalidEmail = errors.New("邮箱格式不正确")
	ErrUserNotFound = errors.New("用户不存在")
)

type AuthService struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// Login 邮箱登录；用户不存在时以 student 套餐创建
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	email := model.NormalizeEmail(req.Email)
	if email == "" {
		return nil, ErrInvalidEmail
	}

	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.UpsertByEmail(email)
	if err != nil {
		return nil, err
	}
	if !exists {
		zap.L().Info("user registered", zap.Int64("user_id", user.ID))
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	zap.L().Info("user login", zap.Int64("user_id", user.ID), zap.String("plan", string(user.Plan)))

	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: s.cfg.JWT.ExpireHours * 3600,
		User:      toUserInfo(user),
		IsNewUser: !exists,
	}, nil
}

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:        user.ID,
		Email:     user.Email,
		Plan:      string(user.Plan),
		CreatedAt: user.CreatedAt.UTC().Format(timeLayout),
	}
}
