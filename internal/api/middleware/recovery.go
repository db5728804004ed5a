package middleware

import (
	"engage-go/internal/api/response"
	"engage-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery 捕获 handler 中的 panic，记录堆栈后返回 500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error("Panic recovered",
				zap.Any("panic", rec),
				zap.String("request_id", c.GetString(ContextKeyRequestID)),
				zap.String("method", c.Request.Method),
				zap.String("route", c.FullPath()),
				zap.Stack("stack"),
			)

			// 响应已经开始写出时只能中断
			if !c.Writer.Written() {
				response.InternalError(c, "服务器内部错误")
			}
			c.Abort()
		}()

		c.Next()
	}
}
