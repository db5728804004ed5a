package model

import "time"

// Like 点赞流水：同一用户对同一内容最多一条
type Like struct {
	ID          int64       `gorm:"primaryKey;autoIncrement;comment:点赞记录ID" json:"id"`
	UserID      int64       `gorm:"not null;uniqueIndex:uq_likes_user_content,priority:1;index:idx_likes_user_id;comment:点赞用户ID" json:"user_id"`
	ContentKind ContentKind `gorm:"size:16;not null;uniqueIndex:uq_likes_user_content,priority:2;index:idx_likes_content,priority:1;comment:内容类型" json:"content_kind"`
	ContentID   int64       `gorm:"not null;uniqueIndex:uq_likes_user_content,priority:3;index:idx_likes_content,priority:2;comment:内容ID" json:"content_id"`
	CreatedAt   time.Time   `gorm:"autoCreateTime;index:idx_likes_created_at;comment:点赞时间" json:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}
