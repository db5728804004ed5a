package handler

import (
	"engage-go/internal/api/dto"
	"engage-go/internal/api/middleware"
	"engage-go/internal/api/response"
	"engage-go/internal/model"
	"engage-go/internal/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService *service.CommentService
	feedService    *service.FeedService
}

func NewCommentHandler(commentService *service.CommentService, feedService *service.FeedService) *CommentHandler {
	return &CommentHandler{commentService: commentService, feedService: feedService}
}

// ListByArticle 获取文章评论列表
// @Summary 文章评论列表
// @Description 主评论与回复统一分页；页外仍有回复的已删除评论会被补入结果
// @Tags 评论
// @Produce json
// @Param id path int true "文章ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(5)
// @Param sort query string false "排序" Enums(recent, likes)
// @Param view query string false "返回形式" Enums(flat, tree)
// @Success 200 {object} response.Response{data=dto.FeedData} "获取成功"
// @Failure 404 {object} response.ErrorResponse "文章不存在"
// @Router /comments/article/{id} [get]
func (h *CommentHandler) ListByArticle(c *gin.Context) {
	h.feed(c, model.KindArticle)
}

// ListByReview 获取测评评论列表
// @Summary 测评评论列表
// @Tags 评论
// @Produce json
// @Param id path int true "测评ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(5)
// @Param sort query string false "排序" Enums(recent, likes)
// @Param view query string false "返回形式" Enums(flat, tree)
// @Success 200 {object} response.Response{data=dto.FeedData} "获取成功"
// @Failure 404 {object} response.ErrorResponse "测评不存在"
// @Router /comments/review/{id} [get]
func (h *CommentHandler) ListByReview(c *gin.Context) {
	h.feed(c, model.KindReview)
}

func (h *CommentHandler) feed(c *gin.Context, kind model.ContentKind) {
	rootID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的内容ID")
		return
	}

	var q dto.FeedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.InvalidParams(c, err)
		return
	}

	viewerID := middleware.ViewerID(c)

	data, err := h.feedService.Page(&service.FeedRequest{
		Kind:     kind,
		RootID:   rootID,
		Page:     q.Page,
		PageSize: q.PageSize,
		Sort:     model.FeedSort(q.Sort),
		ViewerID: viewerID,
		Tree:     q.View == "tree",
	})
	if err != nil {
		handleEngagementError(c, "List comments", err)
		return
	}

	response.OK(c, "获取评论列表成功", data)
}

// Create 发表评论
// @Summary 发表评论
// @Description article_id 与 review_id 必须且只能给一个；parent_comment_id 必须属于同一根内容
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CommentCreateRequest true "评论内容"
// @Success 201 {object} response.Response{data=dto.CommentInfo} "发表成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 404 {object} response.ErrorResponse "内容或父评论不存在"
// @Router /comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	var req dto.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)
	kind, rootID := req.Root()

	info, err := h.commentService.Create(c.Request.Context(), userID, kind, rootID, req.Content, req.ParentCommentID)
	if err != nil {
		handleEngagementError(c, "Create comment", err)
		return
	}

	response.Created(c, "发表评论成功", info)
}

// Delete 删除评论
// @Summary 删除评论
// @Description 没有回复时物理删除，有回复时保留为已删除状态
// @Tags 评论
// @Produce json
// @Security BearerAuth
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response{data=dto.CommentDeleteResult} "删除成功"
// @Failure 403 {object} response.ErrorResponse "没有权限"
// @Failure 404 {object} response.ErrorResponse "评论不存在"
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	result, err := h.commentService.Delete(c.Request.Context(), commentID, userID)
	if err != nil {
		handleEngagementError(c, "Delete comment", err)
		return
	}

	response.OK(c, "删除评论成功", result)
}

// ForceDelete 彻底删除已删除的评论
// @Summary 彻底删除评论
// @Description 仅对已删除（保留结构）的评论生效，其回复保留
// @Tags 评论
// @Produce json
// @Security BearerAuth
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response{data=dto.CommentDeleteResult} "删除成功"
// @Failure 403 {object} response.ErrorResponse "没有权限"
// @Failure 404 {object} response.ErrorResponse "评论不存在"
// @Failure 409 {object} response.ErrorResponse "评论未被删除"
// @Router /comments/{id}/force [delete]
func (h *CommentHandler) ForceDelete(c *gin.Context) {
	commentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	result, err := h.commentService.ForceDelete(c.Request.Context(), commentID, userID)
	if err != nil {
		handleEngagementError(c, "Force delete comment", err)
		return
	}

	response.OK(c, "彻底删除评论成功", result)
}
