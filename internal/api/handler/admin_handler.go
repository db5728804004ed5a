package handler

import (
	"engage-go/internal/api/dto"
	"engage-go/internal/api/middleware"
	"engage-go/internal/api/response"
	"engage-go/internal/model"
	"engage-go/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler 管理员接口：点赞对账、内容与账号管理、审计日志
type AdminHandler struct {
	likeService      *service.LikeService
	reconcileService *service.ReconcileService
	contentService   *service.ContentService
	userService      *service.UserService
	auditService     *service.AuditService
}

func NewAdminHandler(
	likeService *service.LikeService,
	reconcileService *service.ReconcileService,
	contentService *service.ContentService,
	userService *service.UserService,
	auditService *service.AuditService,
) *AdminHandler {
	return &AdminHandler{
		likeService:      likeService,
		reconcileService: reconcileService,
		contentService:   contentService,
		userService:      userService,
		auditService:     auditService,
	}
}

// ListLikers 查看点赞人
// @Summary 点赞人列表
// @Tags 管理员
// @Produce json
// @Security BearerAuth
// @Param kind path string true "内容类型" Enums(article, review, comment)
// @Param id path int true "内容ID"
// @Success 200 {object} response.Response{data=dto.LikersData} "获取成功"
// @Router /admin/likes/{kind}/{id} [get]
func (h *AdminHandler) ListLikers(c *gin.Context) {
	var uri dto.ContentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.InvalidParams(c, err)
		return
	}

	data, err := h.likeService.ListLikers(model.ContentKind(uri.Kind), uri.ID)
	if err != nil {
		handleEngagementError(c, "List likers", err)
		return
	}

	response.OK(c, "获取点赞列表成功", data)
}

// Stats 点赞统计
// @Summary 点赞统计
// @Tags 管理员
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dto.LikeStats} "获取成功"
// @Router /admin/likes/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.likeService.Stats()
	if err != nil {
		handleEngagementError(c, "Like stats", err)
		return
	}
	response.OK(c, "获取点赞统计成功", stats)
}

// Diagnose 对账诊断
// @Summary 点赞计数诊断
// @Description 比对缓存计数与点赞记录，统计孤儿点赞和指向已删除内容的点赞
// @Tags 管理员
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dto.DiagnosticReport} "诊断完成"
// @Failure 409 {object} response.ErrorResponse "对账任务正在执行"
// @Router /admin/likes/diagnostic [get]
func (h *AdminHandler) Diagnose(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	report, err := h.reconcileService.Diagnose(c.Request.Context(), userID)
	if err != nil {
		handleEngagementError(c, "Diagnose likes", err)
		return
	}
	response.OK(c, "诊断完成", report)
}

// SyncCounters 同步计数
// @Summary 同步点赞计数
// @Tags 管理员
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dto.SyncReport} "同步完成"
// @Failure 409 {object} response.ErrorResponse "对账任务正在执行"
// @Router /admin/likes/sync-counters [post]
func (h *AdminHandler) SyncCounters(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	report, err := h.reconcileService.Sync(c.Request.Context(), userID)
	if err != nil {
		handleEngagementError(c, "Sync like counters", err)
		return
	}
	response.OK(c, "计数同步完成", report)
}

// CleanupOrphaned 清理孤儿点赞
// @Summary 清理孤儿点赞
// @Tags 管理员
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dto.CleanupReport} "清理完成"
// @Failure 409 {object} response.ErrorResponse "对账任务正在执行"
// @Router /admin/likes/cleanup-orphaned [post]
func (h *AdminHandler) CleanupOrphaned(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	report, err := h.reconcileService.CleanupOrphaned(c.Request.Context(), userID)
	if err != nil {
		handleEngagementError(c, "Cleanup orphaned likes", err)
		return
	}
	response.OK(c, "清理完成", report)
}

// CreateContent 创建文章/测评
// @Summary 创建文章或测评
// @Tags 管理员
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "内容类型" Enums(article, review)
// @Param request body dto.ContentCreateRequest true "内容信息"
// @Success 201 {object} response.Response{data=dto.ContentInfo} "创建成功"
// @Router /admin/contents/{kind} [post]
func (h *AdminHandler) CreateContent(c *gin.Context) {
	var uri dto.RootKindURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.InvalidParams(c, err)
		return
	}

	var req dto.ContentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	info, err := h.contentService.Create(userID, model.ContentKind(uri.Kind), &req)
	if err != nil {
		handleEngagementError(c, "Create content", err)
		return
	}
	response.Created(c, "创建成功", info)
}

// DeleteContent 删除文章/测评
// @Summary 删除文章或测评
// @Description 软删除内容并清空其点赞记录
// @Tags 管理员
// @Produce json
// @Security BearerAuth
// @Param kind path string true "内容类型" Enums(article, review)
// @Param id path int true "内容ID"
// @Success 200 {object} response.Response{data=dto.ContentDeleteResult} "删除成功"
// @Failure 404 {object} response.ErrorResponse "内容不存在"
// @Router /admin/contents/{kind}/{id} [delete]
func (h *AdminHandler) DeleteContent(c *gin.Context) {
	var uri dto.RootURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.InvalidParams(c, err)
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	result, err := h.contentService.Delete(c.Request.Context(), userID, model.ContentKind(uri.Kind), uri.ID)
	if err != nil {
		handleEngagementError(c, "Delete content", err)
		return
	}
	response.OK(c, "删除成功", result)
}

// PurgeUser 注销账号
// @Summary 注销用户
// @Description 撤销其全部点赞，删除其评论（有回复的保留结构），最后软删除用户
// @Tags 管理员
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=dto.UserPurgeResult} "注销成功"
// @Failure 404 {object} response.ErrorResponse "用户不存在"
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) PurgeUser(c *gin.Context) {
	targetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	result, err := h.userService.Purge(c.Request.Context(), userID, targetID)
	if err != nil {
		handleEngagementError(c, "Purge user", err)
		return
	}
	response.OK(c, "注销成功", result)
}

// SearchAudit 检索审计日志
// @Summary 审计日志
// @Description 优先使用 Elasticsearch，不可用时降级到数据库
// @Tags 管理员
// @Produce json
// @Security BearerAuth
// @Param q query string false "关键字"
// @Param action query string false "操作类型"
// @Param level query string false "级别"
// @Param date query string false "日期 YYYY-MM-DD"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=dto.AuditListData} "获取成功"
// @Router /admin/audit [get]
func (h *AdminHandler) SearchAudit(c *gin.Context) {
	var q dto.AuditSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.InvalidParams(c, err)
		return
	}

	data, err := h.auditService.Search(c.Request.Context(), &q)
	if err != nil {
		handleEngagementError(c, "Search audit logs", err)
		return
	}
	response.OK(c, "获取审计日志成功", data)
}

// PurgeAudit 清理审计日志
// @Summary 清理旧审计日志
// @Tags 管理员
// @Produce json
// @Security BearerAuth
// @Param days query int false "保留天数" default(30)
// @Success 200 {object} response.Response{data=dto.AuditPurgeResult} "清理成功"
// @Router /admin/audit [delete]
func (h *AdminHandler) PurgeAudit(c *gin.Context) {
	var q dto.AuditPurgeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.InvalidParams(c, err)
		return
	}

	result, err := h.auditService.Purge(c.Request.Context(), q.Days)
	if err != nil {
		handleEngagementError(c, "Purge audit logs", err)
		return
	}
	response.OK(c, "清理成功", result)
}
