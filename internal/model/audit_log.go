package model

import "time"

// AuditLog 互动审计日志，由 worker 从 Kafka 事件落库
type AuditLog struct {
	ID           int64       `gorm:"primaryKey;autoIncrement;comment:日志ID" json:"id"`
	EventID      string      `gorm:"size:64;not null;uniqueIndex;comment:事件ID" json:"event_id"`
	Level        string      `gorm:"size:16;not null;index:idx_audit_level;comment:日志级别" json:"level"`
	Action       string      `gorm:"size:64;not null;index:idx_audit_action;comment:操作类型" json:"action"`
	ActorID      int64       `gorm:"index:idx_audit_actor;comment:操作人ID" json:"actor_id"`
	ContentKind  ContentKind `gorm:"size:16;comment:内容类型" json:"content_kind"`
	ContentID    int64       `gorm:"comment:内容ID" json:"content_id"`
	ContentTitle string      `gorm:"size:200;comment:内容标题" json:"content_title"`
	Data         string      `gorm:"type:text;comment:附加数据(JSON)" json:"data"`
	Date         string      `gorm:"size:10;not null;index:idx_audit_date;comment:日期 YYYY-MM-DD" json:"date"`
	Hour         string      `gorm:"size:2;not null;comment:小时 HH" json:"hour"`
	OccurredAt   time.Time   `gorm:"not null;index:idx_audit_occurred_at;comment:发生时间" json:"occurred_at"`
	CreatedAt    time.Time   `gorm:"autoCreateTime;comment:入库时间" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditQuery 审计日志检索条件，零值字段不参与过滤
type AuditQuery struct {
	Action      string
	Level       string
	ActorID     int64
	ContentKind ContentKind
	ContentID   int64
	Keyword     string
	DateFrom    string // YYYY-MM-DD
	DateTo      string // YYYY-MM-DD
	Page        int
	PageSize    int
}

// Offset 分页偏移量
func (q *AuditQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}
