package service

import (
	"errors"
	"strings"

	"engage-go/internal/api/dto"
	"engage-go/internal/config"
	"engage-go/internal/model"
	"engage-go/internal/repository"
	"engage-go/pkg/utils"

	"gorm.io/gorm"
)

// AuthService 账号注册与登录，身份只用于评论作者与点赞人
type AuthService struct {
	userRepo *repository.UserRepository
}

func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Register 用户注册，新用户一律为普通角色
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.UserInfo, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, ErrInvalidCredential
	}

	taken, err := s.userRepo.UsernameTaken(username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameExists
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{UserName: username, Password: hashed, UserRole: model.RoleUser}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

// Login 校验密码后签发 token；已注销账号在密码正确时返回 ErrUserDeleted
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.TokenData, error) {
	user, err := s.userRepo.FindByUsername(strings.TrimSpace(req.Username), true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}

	if !utils.VerifyPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredential
	}
	if user.IsDelete != 0 {
		return nil, ErrUserDeleted
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	jwtCfg := config.GetJWT()
	return &dto.TokenData{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int(jwtCfg.ExpireDuration().Seconds()),
		User:      *toUserInfo(user),
	}, nil
}

// GetCurrentUser token 对应的用户；注销后的 token 视为用户不存在
func (s *AuthService) GetCurrentUser(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:        user.ID,
		Username:  user.UserName,
		UserRole:  user.UserRole,
		CreatedAt: user.CreatedAt,
	}
}
