package model

import "time"

// 互动事件类型
const (
	ActionCommentCreated     = "comment.created"
	ActionCommentDeleted     = "comment.deleted"
	ActionCommentTombstoned  = "comment.tombstoned"
	ActionCommentForceDelete = "comment.force_deleted"
	ActionLikeAdded          = "like.added"
	ActionLikeRemoved        = "like.removed"
	ActionContentDeleted     = "content.deleted"
	ActionUserPurged         = "user.purged"
	ActionReconcileDiagnose  = "reconcile.diagnose"
	ActionReconcileSync      = "reconcile.sync"
	ActionReconcileCleanup   = "reconcile.cleanup"
)

const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// EngagementEvent 发布到 Kafka 的互动事件消息体
type EngagementEvent struct {
	EventID      string                 `json:"event_id"`
	Action       string                 `json:"action"`
	Level        string                 `json:"level"`
	ActorID      int64                  `json:"actor_id"`
	ContentKind  ContentKind            `json:"content_kind,omitempty"`
	ContentID    int64                  `json:"content_id,omitempty"`
	ContentTitle string                 `json:"content_title,omitempty"`
	Data         map[string]interface{} `json:"data,omitempty"`
	OccurredAt   time.Time              `json:"occurred_at"`
}
