package dto

import "time"

// ContentURI 点赞目标路由参数
type ContentURI struct {
	Kind string `uri:"kind" binding:"required,contentkind"`
	ID   int64  `uri:"id" binding:"required,gt=0"`
}

// LikeStatus 点赞状态
type LikeStatus struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// LikerInfo 点赞人
type LikerInfo struct {
	UserID   int64     `json:"user_id"`
	UserName string    `json:"user_name"`
	LikedAt  time.Time `json:"liked_at"`
}

// LikersData 内容的点赞人列表
type LikersData struct {
	ContentKind string      `json:"content_kind"`
	ContentID   int64       `json:"content_id"`
	Total       int         `json:"total"`
	Likers      []LikerInfo `json:"likers"`
}

// TopContent 点赞排行中的内容
type TopContent struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	LikeCount int64  `json:"like_count"`
}

// TopLiker 点赞最多的用户
type TopLiker struct {
	UserID     int64  `json:"user_id"`
	UserName   string `json:"user_name"`
	LikesCount int64  `json:"likes_count"`
}

// LikeStats 点赞统计
type LikeStats struct {
	TotalLikes  int64            `json:"total_likes"`
	ByKind      map[string]int64 `json:"by_kind"`
	TopArticles []TopContent     `json:"top_articles"`
	TopReviews  []TopContent     `json:"top_reviews"`
	TopComments []TopContent     `json:"top_comments"`
	TopLikers   []TopLiker       `json:"top_likers"`
}
