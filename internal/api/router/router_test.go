package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"engage-go/internal/api/dto"
	"engage-go/internal/api/handler"
	"engage-go/internal/api/middleware"
	"engage-go/internal/config"
	"engage-go/internal/model"
	"engage-go/internal/repository"
	"engage-go/internal/service"
	"engage-go/internal/testutil"
	"engage-go/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Type      string `json:"type"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB

	alice, bob, admin *model.User
	article           *model.Article
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.Set(&config.Config{
		App: config.AppConfig{Name: "engage-go"},
		JWT: config.JWTConfig{Secret: "router-test", ExpireHours: 1},
	})
	require.NoError(t, dto.RegisterValidators())

	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	contentRepo := repository.NewContentRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	gate, err := service.NewContentGate(contentRepo, commentRepo, 16, time.Minute)
	require.NoError(t, err)
	commentService := service.NewCommentService(commentRepo, userRepo, gate, nil, service.CommentOptions{
		MaxLength:        200,
		TombstoneContent: "该评论已删除",
	})
	feedService := service.NewFeedService(commentRepo, likeRepo, userRepo, gate, service.FeedOptions{DefaultPageSize: 5, MaxPageSize: 100})
	likeService := service.NewLikeService(likeRepo, contentRepo, commentRepo, gate, nil)
	reconcileService := service.NewReconcileService(likeRepo, nil, nil, nil, time.Minute)
	contentService := service.NewContentService(contentRepo, gate, nil)
	userService := service.NewUserService(userRepo, likeRepo, commentService, nil)
	auditService := service.NewAuditService(auditRepo, nil, 30)

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestID())
	Setup(r,
		handler.NewAuthHandler(service.NewAuthService(userRepo)),
		handler.NewCommentHandler(commentService, feedService),
		handler.NewLikeHandler(likeService),
		handler.NewAdminHandler(likeService, reconcileService, contentService, userService, auditService),
		middleware.AdminRequired(userService.GetRole),
	)

	s := &testServer{t: t, engine: r, db: db}
	s.alice = testutil.User(t, db, "alice", model.RoleUser)
	s.bob = testutil.User(t, db, "bob", model.RoleUser)
	s.admin = testutil.User(t, db, "root", model.RoleAdmin)
	s.article = testutil.Article(t, db, s.admin.ID, "Patch notes")
	return s
}

// do 发起请求；user 为 nil 表示匿名
func (s *testServer) do(method, path string, user *model.User, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		token, err := utils.GenerateToken(user.ID)
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (s *testServer) postComment(user *model.User, body map[string]interface{}) dto.CommentInfo {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/v1/comments", user, body)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.CommentInfo](s.t, env.Data)
}

func TestCommentFlow(t *testing.T) {
	s := newTestServer(t)

	parent := s.postComment(s.alice, map[string]interface{}{"article_id": s.article.ID, "content": "first!"})
	s.postComment(s.bob, map[string]interface{}{"article_id": s.article.ID, "content": "reply", "parent_comment_id": parent.ID})

	w, env := s.do(http.MethodGet, fmt.Sprintf("/api/v1/comments/article/%d?view=tree", s.article.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
	feed := decode[dto.FeedData](t, env.Data)
	assert.Equal(t, int64(2), feed.Pagination.TotalComments)
	require.Len(t, feed.Tree, 1)
	assert.Len(t, feed.Tree[0].Replies, 1)

	// 有回复的评论删除后保留为墓碑
	w, env = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/comments/%d", parent.ID), s.alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[dto.CommentDeleteResult](t, env.Data).HardDeleted)

	w, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/comments/article/%d", s.article.ID), s.alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed = decode[dto.FeedData](t, env.Data)
	require.Len(t, feed.Comments, 2)
	assert.True(t, feed.Comments[1].IsDeleted)

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/comments/%d/force", parent.ID), s.bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/comments/%d/force", parent.ID), s.admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateCommentValidation(t *testing.T) {
	s := newTestServer(t)
	rv := testutil.Review(t, s.db, s.admin.ID, "Review")

	w, _ := s.do(http.MethodPost, "/api/v1/comments", nil, map[string]interface{}{"article_id": s.article.ID, "content": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/comments", s.alice, map[string]interface{}{"content": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/comments", s.alice, map[string]interface{}{"article_id": s.article.ID, "review_id": rv.ID, "content": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/comments", s.alice, map[string]interface{}{"article_id": s.article.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.do(http.MethodPost, "/api/v1/comments", s.alice, map[string]interface{}{"article_id": 999, "content": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, service.ErrContentNotFound.Error(), env.Error.Message)

	onReview := s.postComment(s.alice, map[string]interface{}{"review_id": rv.ID, "content": "on review"})
	w, _ = s.do(http.MethodPost, "/api/v1/comments", s.alice, map[string]interface{}{"article_id": s.article.ID, "content": "hi", "parent_comment_id": onReview.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedRequestErrors(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(http.MethodGet, "/api/v1/comments/article/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(http.MethodGet, "/api/v1/comments/article/404", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodGet, fmt.Sprintf("/api/v1/comments/article/%d?sort=hot", s.article.ID), nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(http.MethodGet, fmt.Sprintf("/api/v1/comments/review/%d", s.article.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestForceDeleteLiveCommentConflicts(t *testing.T) {
	s := newTestServer(t)
	c := s.postComment(s.alice, map[string]interface{}{"article_id": s.article.ID, "content": "keep me"})

	w, env := s.do(http.MethodDelete, fmt.Sprintf("/api/v1/comments/%d/force", c.ID), s.alice, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Conflict", env.Error.Type)
	assert.Equal(t, w.Header().Get(middleware.HeaderRequestID), env.Error.RequestID)

	var count int64
	require.NoError(t, s.db.Model(&model.Comment{}).Where("id = ?", c.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLikeEndpoints(t *testing.T) {
	s := newTestServer(t)
	path := fmt.Sprintf("/api/v1/likes/article/%d", s.article.ID)

	w, _ := s.do(http.MethodPost, path, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/likes/video/1", s.alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.do(http.MethodPost, path, s.alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.LikeStatus{Liked: true, LikeCount: 1}, decode[dto.LikeStatus](t, env.Data))

	w, env = s.do(http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.LikeStatus{Liked: false, LikeCount: 1}, decode[dto.LikeStatus](t, env.Data))

	w, env = s.do(http.MethodGet, path, s.alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.LikeStatus](t, env.Data).Liked)

	w, env = s.do(http.MethodPost, path, s.alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.LikeStatus{Liked: false, LikeCount: 0}, decode[dto.LikeStatus](t, env.Data))

	w, _ = s.do(http.MethodGet, "/api/v1/likes/comment/777", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRequiresAdminRole(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(http.MethodGet, "/api/v1/admin/likes/stats", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodGet, "/api/v1/admin/likes/stats", s.alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodGet, "/api/v1/admin/likes/stats", s.admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminReconcile(t *testing.T) {
	s := newTestServer(t)
	testutil.Like(t, s.db, s.alice.ID, model.KindArticle, s.article.ID)
	testutil.Like(t, s.db, s.alice.ID, model.KindReview, 4040)

	w, env := s.do(http.MethodGet, "/api/v1/admin/likes/diagnostic", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[dto.DiagnosticReport](t, env.Data)
	assert.Equal(t, 1, report.TotalMismatches)
	assert.Equal(t, int64(1), report.OrphanedLikes)

	w, env = s.do(http.MethodPost, "/api/v1/admin/likes/sync-counters", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.SyncReport](t, env.Data).TotalFixed)

	w, env = s.do(http.MethodPost, "/api/v1/admin/likes/cleanup-orphaned", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[dto.CleanupReport](t, env.Data).TotalRemoved)

	w, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/admin/likes/article/%d", s.article.ID), s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	likers := decode[dto.LikersData](t, env.Data)
	require.Len(t, likers.Likers, 1)
	assert.Equal(t, "alice", likers.Likers[0].UserName)
}

func TestAdminContentAndUsers(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodPost, "/api/v1/admin/contents/review", s.admin, map[string]string{"title": "Hades II", "game_title": "Hades II"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[dto.ContentInfo](t, env.Data)

	w, _ = s.do(http.MethodPost, "/api/v1/admin/contents/comment", s.admin, map[string]string{"title": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/admin/contents/review/%d", created.ID), s.admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/admin/contents/review/%d", created.ID), s.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	s.postComment(s.bob, map[string]interface{}{"article_id": s.article.ID, "content": "bye"})
	w, env = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/admin/users/%d", s.bob.ID), s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.UserPurgeResult](t, env.Data).HardDeletedComments)

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/admin/users/%d", s.bob.ID), s.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminAudit(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/api/v1/admin/audit?level=warn", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "database", decode[dto.AuditListData](t, env.Data).Source)

	w, _ = s.do(http.MethodGet, "/api/v1/admin/audit?date=yesterday", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodDelete, "/api/v1/admin/audit?days=7", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, decode[dto.AuditPurgeResult](t, env.Data).Days)
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(http.MethodPost, "/api/v1/auth/register", nil, map[string]string{"username": "carol", "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = s.do(http.MethodPost, "/api/v1/auth/register", nil, map[string]string{"username": "carol", "password": "other123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env := s.do(http.MethodPost, "/api/v1/auth/login", nil, map[string]string{"username": "carol", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[dto.TokenData](t, env.Data)
	assert.Equal(t, "carol", token.User.Username)
	assert.Equal(t, model.RoleUser, token.User.UserRole)

	w, _ = s.do(http.MethodGet, "/api/v1/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodGet, "/api/v1/auth/me", s.alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 注销后旧 token 失效
	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/admin/users/%d", s.alice.ID), s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/api/v1/auth/me", s.alice, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
