package handler

import (
	"errors"

	"engage-go/internal/api/dto"
	"engage-go/internal/api/middleware"
	"engage-go/internal/api/response"
	"engage-go/internal/service"
	"engage-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// handleAuthError 认证相关错误统一映射；凭证类错误一律 401
func handleAuthError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameExists):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredential),
		errors.Is(err, service.ErrUserDeleted),
		errors.Is(err, service.ErrUserNotFound):
		response.Unauthorized(c, err.Error())
	default:
		logger.Error(op+" failed",
			zap.String("request_id", c.GetString(middleware.ContextKeyRequestID)),
			zap.Error(err),
		)
		response.InternalError(c, "操作失败，请稍后重试")
	}
}

// Register 用户注册
// @Summary 用户注册
// @Description 注册普通用户账号
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "注册信息"
// @Success 201 {object} response.Response{data=dto.UserInfo} "注册成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 409 {object} response.ErrorResponse "用户名已存在"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	userInfo, err := h.authService.Register(&req)
	if err != nil {
		handleAuthError(c, "Register", err)
		return
	}
	response.Created(c, "注册成功", userInfo)
}

// Login 用户登录
// @Summary 用户登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录信息"
// @Success 200 {object} response.Response{data=dto.TokenData} "登录成功"
// @Failure 401 {object} response.ErrorResponse "用户名或密码错误"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	tokenData, err := h.authService.Login(&req)
	if err != nil {
		handleAuthError(c, "Login", err)
		return
	}
	response.OK(c, "登录成功", tokenData)
}

// Me 当前登录用户
// @Summary 获取当前用户信息
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dto.UserInfo} "获取成功"
// @Failure 401 {object} response.ErrorResponse "未授权"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "无法获取用户信息")
		return
	}

	userInfo, err := h.authService.GetCurrentUser(userID)
	if err != nil {
		handleAuthError(c, "Get current user", err)
		return
	}
	response.OK(c, "获取成功", userInfo)
}
