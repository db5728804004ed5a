package handler

import (
	"engage-go/internal/api/dto"
	"engage-go/internal/api/middleware"
	"engage-go/internal/api/response"
	"engage-go/internal/model"
	"engage-go/internal/service"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	likeService *service.LikeService
}

func NewLikeHandler(likeService *service.LikeService) *LikeHandler {
	return &LikeHandler{likeService: likeService}
}

// Toggle 点赞/取消点赞
// @Summary 切换点赞
// @Description 已点赞则取消，未点赞则点赞
// @Tags 点赞
// @Produce json
// @Security BearerAuth
// @Param kind path string true "内容类型" Enums(article, review, comment)
// @Param id path int true "内容ID"
// @Success 200 {object} response.Response{data=dto.LikeStatus} "操作成功"
// @Failure 404 {object} response.ErrorResponse "内容不存在"
// @Router /likes/{kind}/{id} [post]
func (h *LikeHandler) Toggle(c *gin.Context) {
	var uri dto.ContentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.InvalidParams(c, err)
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	status, err := h.likeService.Toggle(c.Request.Context(), userID, model.ContentKind(uri.Kind), uri.ID)
	if err != nil {
		handleEngagementError(c, "Toggle like", err)
		return
	}

	msg := "取消点赞成功"
	if status.Liked {
		msg = "点赞成功"
	}
	response.OK(c, msg, status)
}

// Status 获取点赞状态
// @Summary 点赞状态
// @Description 点赞数从点赞记录实时统计；匿名访问时 liked 恒为 false
// @Tags 点赞
// @Produce json
// @Param kind path string true "内容类型" Enums(article, review, comment)
// @Param id path int true "内容ID"
// @Success 200 {object} response.Response{data=dto.LikeStatus} "获取成功"
// @Failure 404 {object} response.ErrorResponse "内容不存在"
// @Router /likes/{kind}/{id} [get]
func (h *LikeHandler) Status(c *gin.Context) {
	var uri dto.ContentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.InvalidParams(c, err)
		return
	}

	viewerID := middleware.ViewerID(c)

	status, err := h.likeService.Status(viewerID, model.ContentKind(uri.Kind), uri.ID)
	if err != nil {
		handleEngagementError(c, "Get like status", err)
		return
	}

	response.OK(c, "获取成功", status)
}
