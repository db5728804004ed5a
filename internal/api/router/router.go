package router

import (
	"engage-go/internal/api/handler"
	"engage-go/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// Setup 注册所有业务路由
func Setup(
	r *gin.Engine,
	authHandler *handler.AuthHandler,
	commentHandler *handler.CommentHandler,
	likeHandler *handler.LikeHandler,
	adminHandler *handler.AdminHandler,
	adminMiddleware gin.HandlerFunc,
) {
	v1 := r.Group("/api/v1")

	// --- 认证模块 ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
	}

	// --- 评论模块 ---
	comments := v1.Group("/comments")
	{
		// 匿名可读
		public := comments.Group("", middleware.OptionalAuth())
		{
			public.GET("/article/:id", commentHandler.ListByArticle)
			public.GET("/review/:id", commentHandler.ListByReview)
		}

		commentsAuth := comments.Group("", middleware.AuthRequired())
		{
			commentsAuth.POST("", commentHandler.Create)
			commentsAuth.DELETE("/:id", commentHandler.Delete)
			commentsAuth.DELETE("/:id/force", commentHandler.ForceDelete)
		}
	}

	// --- 点赞模块 ---
	likes := v1.Group("/likes")
	{
		likes.GET("/:kind/:id", middleware.OptionalAuth(), likeHandler.Status)
		likes.POST("/:kind/:id", middleware.AuthRequired(), likeHandler.Toggle)
	}

	// --- 管理员接口 ---
	admin := v1.Group("/admin", middleware.AuthRequired(), adminMiddleware)
	{
		adminLikes := admin.Group("/likes")
		{
			adminLikes.GET("/stats", adminHandler.Stats)
			adminLikes.GET("/diagnostic", adminHandler.Diagnose)
			adminLikes.POST("/sync-counters", adminHandler.SyncCounters)
			adminLikes.POST("/cleanup-orphaned", adminHandler.CleanupOrphaned)
			adminLikes.GET("/:kind/:id", adminHandler.ListLikers)
		}

		admin.POST("/contents/:kind", adminHandler.CreateContent)
		admin.DELETE("/contents/:kind/:id", adminHandler.DeleteContent)

		admin.DELETE("/users/:id", adminHandler.PurgeUser)

		admin.GET("/audit", adminHandler.SearchAudit)
		admin.DELETE("/audit", adminHandler.PurgeAudit)
	}
}
