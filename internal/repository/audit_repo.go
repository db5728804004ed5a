package repository

import (
	"strings"

	"engage-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create 写入审计日志，event_id 重复时忽略（消息可能被重复投递）
func (r *AuditRepository) Create(log *model.AuditLog) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(log)
	return result.RowsAffected > 0, result.Error
}

// Search 数据库检索，ES 不可用时的降级路径
func (r *AuditRepository) Search(q *model.AuditQuery) ([]model.AuditLog, int64, error) {
	db := r.db.Model(&model.AuditLog{})

	if q.Action != "" {
		db = db.Where("action = ?", q.Action)
	}
	if q.Level != "" {
		db = db.Where("level = ?", strings.ToUpper(q.Level))
	}
	if q.ActorID > 0 {
		db = db.Where("actor_id = ?", q.ActorID)
	}
	if q.ContentKind != "" {
		db = db.Where("content_kind = ?", q.ContentKind)
	}
	if q.ContentID > 0 {
		db = db.Where("content_id = ?", q.ContentID)
	}
	if q.DateFrom != "" {
		db = db.Where("date >= ?", q.DateFrom)
	}
	if q.DateTo != "" {
		db = db.Where("date <= ?", q.DateTo)
	}
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		db = db.Where("(LOWER(content_title) LIKE ? OR LOWER(data) LIKE ?)", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.AuditLog
	err := db.Order("occurred_at DESC, id DESC").
		Offset(q.Offset()).Limit(q.PageSize).
		Find(&logs).Error
	return logs, total, err
}

// PurgeBefore 删除 date 早于 cutoff（YYYY-MM-DD）的日志
func (r *AuditRepository) PurgeBefore(cutoff string) (int64, error) {
	result := r.db.Where("date < ?", cutoff).Delete(&model.AuditLog{})
	return result.RowsAffected, result.Error
}
