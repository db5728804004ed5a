package handler

import (
	"errors"
	"strconv"

	"engage-go/internal/api/middleware"
	"engage-go/internal/api/response"
	"engage-go/internal/service"
	"engage-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func parseIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

// handleEngagementError 业务错误映射为统一错误响应；未知错误只返回通用提示
func handleEngagementError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrContentNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrParentNotFound),
		errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrCommentNoPermission):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrInvalidContentKind),
		errors.Is(err, service.ErrInvalidRoot),
		errors.Is(err, service.ErrParentRootMismatch),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrContentTooLong):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotATombstone),
		errors.Is(err, service.ErrReconcileBusy):
		response.Conflict(c, err.Error())
	default:
		logger.Error(op+" failed",
			zap.String("request_id", c.GetString(middleware.ContextKeyRequestID)),
			zap.Error(err),
		)
		response.InternalError(c, "操作失败，请稍后重试")
	}
}
