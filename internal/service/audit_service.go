package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"engage-go/internal/api/dto"
	"engage-go/internal/model"
	"engage-go/internal/repository"
	"engage-go/pkg/logger"

	"go.uber.org/zap"
)

const (
	auditSourceES = "elasticsearch"
	auditSourceDB = "database"

	auditDefaultPageSize = 20
	auditSearchTimeout   = 10 * time.Second
)

// AuditIndexer 审计日志的全文索引（生产环境为 Elasticsearch）
type AuditIndexer interface {
	IndexLog(ctx context.Context, l *model.AuditLog) error
	SearchLogs(ctx context.Context, q *model.AuditQuery) ([]model.AuditLog, int64, error)
	PurgeBefore(ctx context.Context, cutoff string) (int64, error)
}

type AuditService struct {
	auditRepo     *repository.AuditRepository
	indexer       AuditIndexer
	retentionDays int
}

// NewAuditService indexer 为 nil 时检索与清理只走数据库
func NewAuditService(auditRepo *repository.AuditRepository, indexer AuditIndexer, retentionDays int) *AuditService {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &AuditService{auditRepo: auditRepo, indexer: indexer, retentionDays: retentionDays}
}

// Record 落库并索引一条互动事件；重复投递的事件直接跳过
func (s *AuditService) Record(ctx context.Context, event *model.EngagementEvent) error {
	entry := EventToAuditLog(event)

	created, err := s.auditRepo.Create(entry)
	if err != nil {
		return err
	}
	if !created {
		logger.Debug("Duplicate engagement event skipped", zap.String("event_id", event.EventID))
		return nil
	}

	if s.indexer != nil {
		if err := s.indexer.IndexLog(ctx, entry); err != nil {
			logger.Warn("Index audit log failed",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// EventToAuditLog 事件转为审计日志行，date/hour 取事件发生时间
func EventToAuditLog(event *model.EngagementEvent) *model.AuditLog {
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}

	data := ""
	if len(event.Data) > 0 {
		if b, err := json.Marshal(event.Data); err == nil {
			data = string(b)
		}
	}

	level := strings.ToUpper(event.Level)
	if level == "" {
		level = model.LevelInfo
	}

	return &model.AuditLog{
		EventID:      event.EventID,
		Level:        level,
		Action:       event.Action,
		ActorID:      event.ActorID,
		ContentKind:  event.ContentKind,
		ContentID:    event.ContentID,
		ContentTitle: event.ContentTitle,
		Data:         data,
		Date:         occurred.Format("2006-01-02"),
		Hour:         occurred.Format("15"),
		OccurredAt:   occurred,
	}
}

// Search 检索审计日志（ES 优先，失败则降级到 DB）
func (s *AuditService) Search(ctx context.Context, req *dto.AuditSearchQuery) (*dto.AuditListData, error) {
	q := toAuditQuery(req)

	if s.indexer != nil {
		esCtx, cancel := context.WithTimeout(ctx, auditSearchTimeout)
		logs, total, err := s.indexer.SearchLogs(esCtx, q)
		cancel()
		if err == nil {
			return buildAuditList(logs, total, q, auditSourceES), nil
		}
		logger.Warn("ES audit search failed, fallback to DB", zap.Error(err))
	}

	logs, total, err := s.auditRepo.Search(q)
	if err != nil {
		return nil, err
	}
	return buildAuditList(logs, total, q, auditSourceDB), nil
}

// Purge 删除 days 天之前的审计日志；days<=0 时使用配置的保留天数
func (s *AuditService) Purge(ctx context.Context, days int) (*dto.AuditPurgeResult, error) {
	if days <= 0 {
		days = s.retentionDays
	}
	cutoff := time.Now().AddDate(0, 0, -days).Format("2006-01-02")

	removed, err := s.auditRepo.PurgeBefore(cutoff)
	if err != nil {
		return nil, err
	}

	result := &dto.AuditPurgeResult{Days: days, Cutoff: cutoff, DBRemoved: removed}
	if s.indexer != nil {
		n, err := s.indexer.PurgeBefore(ctx, cutoff)
		if err != nil {
			logger.Warn("Purge ES audit logs failed", zap.String("cutoff", cutoff), zap.Error(err))
		}
		result.IndexRemoved = n
	}

	logger.Info("Audit logs purged",
		zap.String("cutoff", cutoff),
		zap.Int64("db_removed", result.DBRemoved),
		zap.Int64("index_removed", result.IndexRemoved),
	)
	return result, nil
}

func toAuditQuery(req *dto.AuditSearchQuery) *model.AuditQuery {
	q := &model.AuditQuery{
		Action:      req.Action,
		Level:       req.Level,
		ActorID:     req.ActorID,
		ContentKind: model.ContentKind(req.ContentKind),
		ContentID:   req.ContentID,
		Keyword:     req.Q,
		DateFrom:    req.DateFrom,
		DateTo:      req.DateTo,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}
	if req.Date != "" {
		q.DateFrom, q.DateTo = req.Date, req.Date
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = auditDefaultPageSize
	}
	return q
}

func buildAuditList(logs []model.AuditLog, total int64, q *model.AuditQuery, source string) *dto.AuditListData {
	entries := make([]dto.AuditEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, dto.AuditEntry{
			EventID:      l.EventID,
			Level:        l.Level,
			Action:       l.Action,
			ActorID:      l.ActorID,
			ContentKind:  string(l.ContentKind),
			ContentID:    l.ContentID,
			ContentTitle: l.ContentTitle,
			Data:         l.Data,
			Date:         l.Date,
			Hour:         l.Hour,
			OccurredAt:   l.OccurredAt,
		})
	}

	totalPages := (total + int64(q.PageSize) - 1) / int64(q.PageSize)
	return &dto.AuditListData{
		Logs:       entries,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
		Source:     source,
	}
}
