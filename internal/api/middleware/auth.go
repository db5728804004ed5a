package middleware

import (
	"errors"
	"strings"

	"engage-go/internal/api/response"
	"engage-go/internal/model"
	"engage-go/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextKeyUserID   = "currentUserID"
	ContextKeyUserRole = "currentUserRole"
)

var errNoToken = errors.New("missing bearer token")

// authenticate 解析 Authorization 头，成功时把用户 ID 写入上下文
func authenticate(c *gin.Context) error {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		return errNoToken
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		return err
	}
	c.Set(ContextKeyUserID, claims.UserID)
	return nil
}

// AuthRequired 必须携带有效 Token
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := authenticate(c); {
		case err == nil:
			c.Next()
			return
		case errors.Is(err, errNoToken):
			response.Unauthorized(c, "缺少认证令牌")
		case errors.Is(err, utils.ErrExpiredToken):
			response.Unauthorized(c, "认证令牌已过期")
		default:
			response.Unauthorized(c, "无效的认证令牌")
		}
		c.Abort()
	}
}

// OptionalAuth 匿名可访问；Token 无效时同样按匿名处理，不拒绝请求
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = authenticate(c)
		c.Next()
	}
}

// GetCurrentUserID 当前登录用户 ID，匿名请求返回 false
func GetCurrentUserID(c *gin.Context) (int64, bool) {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	userID, ok := val.(int64)
	return userID, ok
}

// ViewerID 匿名时为 0，供评论列表/点赞状态标注使用
func ViewerID(c *gin.Context) int64 {
	id, _ := GetCurrentUserID(c)
	return id
}

// UserRoleFetcher 按用户 ID 查角色
type UserRoleFetcher func(userID int64) (string, error)

// AdminRequired 管理员权限，须挂在 AuthRequired 之后；角色每次从库里查，降权即时生效
func AdminRequired(roleFetcher UserRoleFetcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetCurrentUserID(c)
		if !ok {
			response.Unauthorized(c, "缺少认证信息")
			c.Abort()
			return
		}

		role, err := roleFetcher(userID)
		if err != nil {
			response.Unauthorized(c, "用户不存在")
			c.Abort()
			return
		}
		if role != model.RoleAdmin {
			response.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}

		c.Set(ContextKeyUserRole, role)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
