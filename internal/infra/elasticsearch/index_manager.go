package elasticsearch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"engage-go/pkg/logger"

	"go.uber.org/zap"
)

// AuditIndexMapping 返回审计日志索引的 mapping
func AuditIndexMapping() string {
	return `{
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0
		},
		"mappings": {
			"properties": {
				"event_id": {"type": "keyword"},
				"level": {"type": "keyword"},
				"action": {"type": "keyword"},
				"actor_id": {"type": "long"},
				"content_kind": {"type": "keyword"},
				"content_id": {"type": "long"},
				"content_title": {
					"type": "text",
					"fields": {"keyword": {"type": "keyword", "ignore_above": 200}}
				},
				"data": {"type": "text"},
				"date": {"type": "keyword"},
				"hour": {"type": "keyword"},
				"occurred_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"}
			}
		}
	}`
}

// EnsureIndex 确保索引存在，不存在则按 mapping 创建
func EnsureIndex(ctx context.Context, indexName, mapping string) error {
	es, err := ready()
	if err != nil {
		return err
	}

	exists, err := es.Indices.Exists([]string{indexName}, es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		logger.Info("Elasticsearch index already exists", zap.String("index", indexName))
		return nil
	}

	resp, err := es.Indices.Create(indexName,
		es.Indices.Create.WithContext(ctx),
		es.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer resp.Body.Close()

	if err := responseError("create index", resp); err != nil {
		return err
	}

	logger.Info("Elasticsearch index created", zap.String("index", indexName))
	return nil
}

// InitIndexes 初始化审计索引（启动时调用）
func InitIndexes(auditIndex string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return EnsureIndex(ctx, auditIndex, AuditIndexMapping())
}
