package dto

import "time"

// RootKindURI 根内容类型路由参数
type RootKindURI struct {
	Kind string `uri:"kind" binding:"required,rootkind"`
}

// RootURI 根内容路由参数
type RootURI struct {
	Kind string `uri:"kind" binding:"required,rootkind"`
	ID   int64  `uri:"id" binding:"required,gt=0"`
}

// ContentCreateRequest 创建文章/测评请求
type ContentCreateRequest struct {
	Title     string `json:"title" binding:"required,min=1,max=200"`
	GameTitle string `json:"game_title" binding:"omitempty,max=200"`
}

// ContentInfo 文章/测评信息
type ContentInfo struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Title     string    `json:"title"`
	GameTitle string    `json:"game_title,omitempty"`
	Status    string    `json:"status"`
	LikeCount int64     `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentDeleteResult 删除文章/测评结果
type ContentDeleteResult struct {
	Kind        string `json:"kind"`
	ID          int64  `json:"id"`
	PurgedLikes int64  `json:"purged_likes"`
}
