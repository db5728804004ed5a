package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"engage-go/internal/model"
	"engage-go/pkg/logger"

	"go.uber.org/zap"
)

// AuditDoc ES 审计文档结构
type AuditDoc struct {
	EventID      string `json:"event_id"`
	Level        string `json:"level"`
	Action       string `json:"action"`
	ActorID      int64  `json:"actor_id"`
	ContentKind  string `json:"content_kind,omitempty"`
	ContentID    int64  `json:"content_id,omitempty"`
	ContentTitle string `json:"content_title,omitempty"`
	Data         string `json:"data,omitempty"`
	Date         string `json:"date"`
	Hour         string `json:"hour"`
	OccurredAt   string `json:"occurred_at"`
}

func auditToDoc(l *model.AuditLog) *AuditDoc {
	return &AuditDoc{
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
		OccurredAt:   l.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}

func docToAudit(d *AuditDoc) model.AuditLog {
	occurred, _ := time.Parse(time.RFC3339Nano, d.OccurredAt)
	return model.AuditLog{
		EventID:      d.EventID,
		Level:        d.Level,
		Action:       d.Action,
		ActorID:      d.ActorID,
		ContentKind:  model.ContentKind(d.ContentKind),
		ContentID:    d.ContentID,
		ContentTitle: d.ContentTitle,
		Data:         d.Data,
		Date:         d.Date,
		Hour:         d.Hour,
		OccurredAt:   occurred,
	}
}

// AuditIndex 审计日志在 ES 中的读写
type AuditIndex struct {
	index string
}

func NewAuditIndex(index string) *AuditIndex {
	return &AuditIndex{index: index}
}

// IndexLog 写入单条审计日志，文档 ID 使用 event_id 保证重复消费幂等
func (a *AuditIndex) IndexLog(ctx context.Context, l *model.AuditLog) error {
	body, err := json.Marshal(auditToDoc(l))
	if err != nil {
		return err
	}

	es, err := ready()
	if err != nil {
		return err
	}
	resp, err := es.Index(a.index, bytes.NewReader(body),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(l.EventID),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := responseError("index", resp); err != nil {
		return err
	}

	logger.Debug("Audit log indexed", zap.String("event_id", l.EventID))
	return nil
}

// BuildAuditQuery 构造 ES bool 查询
func BuildAuditQuery(q *model.AuditQuery) map[string]interface{} {
	filters := []interface{}{}
	term := func(field string, value interface{}) {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{field: value}})
	}

	if q.Action != "" {
		term("action", q.Action)
	}
	if q.Level != "" {
		term("level", strings.ToUpper(q.Level))
	}
	if q.ActorID > 0 {
		term("actor_id", q.ActorID)
	}
	if q.ContentKind != "" {
		term("content_kind", string(q.ContentKind))
	}
	if q.ContentID > 0 {
		term("content_id", q.ContentID)
	}
	if q.DateFrom != "" || q.DateTo != "" {
		rng := map[string]interface{}{}
		if q.DateFrom != "" {
			rng["gte"] = q.DateFrom
		}
		if q.DateTo != "" {
			rng["lte"] = q.DateTo
		}
		filters = append(filters, map[string]interface{}{"range": map[string]interface{}{"date": rng}})
	}

	boolQ := map[string]interface{}{"filter": filters}
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		boolQ["must"] = []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  kw,
					"fields": []string{"content_title^2", "data"},
				},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQ},
		"sort": []interface{}{
			map[string]interface{}{"occurred_at": map[string]interface{}{"order": "desc"}},
		},
		"from": q.Offset(),
		"size": q.PageSize,
	}
}

// SearchLogs 按条件检索审计日志
func (a *AuditIndex) SearchLogs(ctx context.Context, q *model.AuditQuery) ([]model.AuditLog, int64, error) {
	queryJSON, err := json.Marshal(BuildAuditQuery(q))
	if err != nil {
		return nil, 0, err
	}

	es, err := ready()
	if err != nil {
		return nil, 0, err
	}
	resp, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(a.index),
		es.Search.WithBody(bytes.NewReader(queryJSON)),
		es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if err := responseError("search", resp); err != nil {
		return nil, 0, err
	}

	var esResp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source AuditDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&esResp); err != nil {
		return nil, 0, err
	}

	logs := make([]model.AuditLog, 0, len(esResp.Hits.Hits))
	for i := range esResp.Hits.Hits {
		logs = append(logs, docToAudit(&esResp.Hits.Hits[i].Source))
	}
	return logs, esResp.Hits.Total.Value, nil
}

// PurgeBefore 删除 date 早于 cutoff（YYYY-MM-DD）的审计文档
func (a *AuditIndex) PurgeBefore(ctx context.Context, cutoff string) (int64, error) {
	body, err := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"range": map[string]interface{}{"date": map[string]interface{}{"lt": cutoff}},
		},
	})
	if err != nil {
		return 0, err
	}

	es, err := ready()
	if err != nil {
		return 0, err
	}
	resp, err := es.DeleteByQuery([]string{a.index}, bytes.NewReader(body),
		es.DeleteByQuery.WithContext(ctx),
		es.DeleteByQuery.WithConflicts("proceed"),
	)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := responseError("delete_by_query", resp); err != nil {
		return 0, err
	}

	var result struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, err
	}
	return result.Deleted, nil
}
