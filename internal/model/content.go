package model

import "time"

const (
	ContentPublished = "published"
	ContentDeleted   = "deleted"
)

// Article 新闻文章（评论树的根之一）
type Article struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:文章ID" json:"id"`
	AuthorID  int64     `gorm:"not null;index:idx_articles_author_id;comment:作者ID" json:"author_id"`
	Title     string    `gorm:"size:200;not null;comment:标题" json:"title"`
	Status    string    `gorm:"size:20;not null;default:'published';index:idx_articles_status;comment:状态" json:"status"`
	LikeCount int64     `gorm:"not null;default:0;comment:点赞数（缓存）" json:"like_count"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`
}

func (Article) TableName() string {
	return "articles"
}

// Review 游戏测评（评论树的根之一）
type Review struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:测评ID" json:"id"`
	AuthorID  int64     `gorm:"not null;index:idx_reviews_author_id;comment:作者ID" json:"author_id"`
	Title     string    `gorm:"size:200;not null;comment:标题" json:"title"`
	GameTitle string    `gorm:"size:200;comment:游戏名" json:"game_title"`
	Status    string    `gorm:"size:20;not null;default:'published';index:idx_reviews_status;comment:状态" json:"status"`
	LikeCount int64     `gorm:"not null;default:0;comment:点赞数（缓存）" json:"like_count"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}
