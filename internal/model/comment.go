package model

import "time"

// CommentState 评论状态；墓碑保留行以维持回复链
type CommentState string

const (
	CommentLive       CommentState = "live"
	CommentTombstoned CommentState = "tombstoned"
)

// Comment 评论模型，RootKind + RootID 唯一确定所属评论树
type Comment struct {
	ID         int64        `gorm:"primaryKey;autoIncrement;comment:评论ID" json:"id"`
	AuthorID   int64        `gorm:"not null;index:idx_comments_author_id;comment:评论用户ID" json:"author_id"`
	RootKind   ContentKind  `gorm:"size:16;not null;index:idx_comments_root,priority:1;comment:根内容类型" json:"root_kind"`
	RootID     int64        `gorm:"not null;index:idx_comments_root,priority:2;comment:根内容ID" json:"root_id"`
	ParentID   *int64       `gorm:"index:idx_comments_parent_id;comment:父评论ID" json:"parent_comment_id"`
	Content    string       `gorm:"type:text;not null;comment:评论内容" json:"content"`
	State      CommentState `gorm:"size:16;not null;default:'live';index:idx_comments_state;comment:评论状态" json:"state"`
	// LikesCount 仅在 CommentLive 时有意义；墓碑的期望值恒为 0，Tombstone 时清零，偏差由对账修正
	LikesCount int64        `gorm:"not null;default:0;comment:点赞数（缓存）" json:"likes_count"`
	CreatedAt  time.Time    `gorm:"autoCreateTime;index:idx_comments_created_at;comment:评论时间" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsTombstone 是否已软删除
func (c *Comment) IsTombstone() bool {
	return c.State == CommentTombstoned
}

// Tombstone 转为墓碑状态：内容替换为占位文本，点赞缓存清零
func (c *Comment) Tombstone(placeholder string) {
	c.State = CommentTombstoned
	c.Content = placeholder
	c.LikesCount = 0
}

// SameRoot 两条评论是否挂在同一个根内容下
func (c *Comment) SameRoot(kind ContentKind, rootID int64) bool {
	return c.RootKind == kind && c.RootID == rootID
}

// FeedSort 评论列表排序方式
type FeedSort string

const (
	SortRecent FeedSort = "recent" // createdAt 倒序
	SortLikes  FeedSort = "likes"  // 实时点赞数倒序，createdAt 倒序兜底
)
