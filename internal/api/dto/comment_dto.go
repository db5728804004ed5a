package dto

import (
	"time"

	"engage-go/internal/model"
)

// CommentCreateRequest 发表评论请求，article_id 与 review_id 必须且只能给一个
type CommentCreateRequest struct {
	Content         string `json:"content" binding:"required"`
	ArticleID       *int64 `json:"article_id" binding:"required_without=ReviewID,excluded_with=ReviewID,omitempty,gt=0"`
	ReviewID        *int64 `json:"review_id" binding:"required_without=ArticleID,excluded_with=ArticleID,omitempty,gt=0"`
	ParentCommentID *int64 `json:"parent_comment_id" binding:"omitempty,gt=0"`
}

// Root 返回评论所属的根内容
func (r *CommentCreateRequest) Root() (model.ContentKind, int64) {
	if r.ArticleID != nil {
		return model.KindArticle, *r.ArticleID
	}
	if r.ReviewID != nil {
		return model.KindReview, *r.ReviewID
	}
	return "", 0
}

// FeedQuery 评论列表查询参数
type FeedQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1"`
	Sort     string `form:"sort" binding:"omitempty,oneof=recent likes"`
	View     string `form:"view" binding:"omitempty,oneof=flat tree"`
}

// CommentInfo 评论信息
type CommentInfo struct {
	ID              int64              `json:"id"`
	Content         string             `json:"content"`
	AuthorID        int64              `json:"author_id"`
	AuthorName      string             `json:"author_name"`
	RootKind        model.ContentKind  `json:"root_kind"`
	RootID          int64              `json:"root_id"`
	ParentCommentID *int64             `json:"parent_comment_id"`
	State           model.CommentState `json:"state"`
	IsDeleted       bool               `json:"is_deleted"`
	LikesCount      int64              `json:"likes_count"`
	IsLiked         bool               `json:"is_liked"`
	CanDelete       bool               `json:"can_delete"`
	ReplyDepth      int                `json:"reply_depth"`
	ParentLoaded    bool               `json:"parent_loaded"`
	Backfilled      bool               `json:"backfilled"`
	CreatedAt       time.Time          `json:"created_at"`
}

// CommentNode 树形视图中的节点
type CommentNode struct {
	CommentInfo
	Replies []*CommentNode `json:"replies"`
}

// Pagination 分页信息
type Pagination struct {
	CurrentPage   int   `json:"current_page"`
	PageSize      int   `json:"page_size"`
	TotalPages    int64 `json:"total_pages"`
	HasNextPage   bool  `json:"has_next_page"`
	TotalComments int64 `json:"total_comments"`
}

// FeedData 评论列表数据，view=tree 时返回 Tree
type FeedData struct {
	Comments   []CommentInfo  `json:"comments"`
	Tree       []*CommentNode `json:"tree,omitempty"`
	Pagination Pagination     `json:"pagination"`
}

// CommentDeleteResult 删除评论结果
type CommentDeleteResult struct {
	CommentID   int64 `json:"comment_id"`
	Deleted     bool  `json:"deleted"`
	HardDeleted bool  `json:"hard_deleted"`
}
