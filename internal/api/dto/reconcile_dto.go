package dto

import "time"

// CounterMismatch 缓存计数与流水不一致的条目
type CounterMismatch struct {
	ID     int64  `json:"id"`
	Label  string `json:"label"`
	Stored int64  `json:"stored"`
	Real   int64  `json:"real"`
}

// KindDiagnosis 单个内容类型的诊断结果
type KindDiagnosis struct {
	Kind          string            `json:"kind"`
	Mismatches    []CounterMismatch `json:"mismatches"`
	OrphanedLikes int64             `json:"orphaned_likes"`
	StaleLikes    int64             `json:"stale_likes"`
}

// DiagnosticReport 对账诊断报告
type DiagnosticReport struct {
	Kinds           []KindDiagnosis `json:"kinds"`
	TotalMismatches int             `json:"total_mismatches"`
	OrphanedLikes   int64           `json:"orphaned_likes"`
	StaleLikes      int64           `json:"stale_likes"`
	NeedsSync       bool            `json:"needs_sync"`
	NeedsCleanup    bool            `json:"needs_cleanup"`
	GeneratedAt     time.Time       `json:"generated_at"`
	ReportURL       string          `json:"report_url,omitempty"`
}

// SyncReport 计数同步结果
type SyncReport struct {
	FixedByKind map[string]int `json:"fixed_by_kind"`
	TotalFixed  int            `json:"total_fixed"`
	GeneratedAt time.Time      `json:"generated_at"`
	ReportURL   string         `json:"report_url,omitempty"`
}

// CleanupReport 清理孤儿点赞结果
type CleanupReport struct {
	OrphanedByKind map[string]int64 `json:"orphaned_by_kind"`
	StaleByKind    map[string]int64 `json:"stale_by_kind"`
	TotalRemoved   int64            `json:"total_removed"`
	GeneratedAt    time.Time        `json:"generated_at"`
	ReportURL      string           `json:"report_url,omitempty"`
}
