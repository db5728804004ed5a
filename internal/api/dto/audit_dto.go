package dto

import "time"

// AuditSearchQuery 审计日志检索参数
type AuditSearchQuery struct {
	Q           string `form:"q" binding:"omitempty,max=100"`
	Action      string `form:"action" binding:"omitempty,max=64"`
	Level       string `form:"level" binding:"omitempty,oneof=INFO WARN ERROR info warn error"`
	ActorID     int64  `form:"actor_id" binding:"omitempty,gt=0"`
	ContentKind string `form:"content_kind" binding:"omitempty,contentkind"`
	ContentID   int64  `form:"content_id" binding:"omitempty,gt=0"`
	Date        string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	DateFrom    string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo      string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AuditPurgeQuery 清理审计日志参数
type AuditPurgeQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=3650"`
}

// AuditEntry 审计日志条目
type AuditEntry struct {
	EventID      string    `json:"event_id"`
	Level        string    `json:"level"`
	Action       string    `json:"action"`
	ActorID      int64     `json:"actor_id"`
	ContentKind  string    `json:"content_kind,omitempty"`
	ContentID    int64     `json:"content_id,omitempty"`
	ContentTitle string    `json:"content_title,omitempty"`
	Data         string    `json:"data,omitempty"`
	Date         string    `json:"date"`
	Hour         string    `json:"hour"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// AuditListData 审计日志列表
type AuditListData struct {
	Logs       []AuditEntry `json:"logs"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int64        `json:"total_pages"`
	Source     string       `json:"source"`
}

// AuditPurgeResult 清理结果
type AuditPurgeResult struct {
	Days         int    `json:"days"`
	Cutoff       string `json:"cutoff"`
	DBRemoved    int64  `json:"db_removed"`
	IndexRemoved int64  `json:"index_removed"`
}
