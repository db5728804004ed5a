package elasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"engage-go/internal/config"
	"engage-go/pkg/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

var client *elasticsearch.Client

var errNotInitialized = errors.New("elasticsearch client not initialized")

// Init 初始化 Elasticsearch 客户端并 ping 一次
func Init(cfg *config.ElasticsearchConfig) error {
	hosts := normalizeHosts(cfg.Hosts)
	if len(hosts) == 0 {
		return fmt.Errorf("elasticsearch hosts is empty")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     hosts,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    3,
		RetryBackoff:  func(i int) time.Duration { return time.Duration(i) * 500 * time.Millisecond },
	})
	if err != nil {
		return fmt.Errorf("create elasticsearch client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := es.Ping(es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping elasticsearch: %w", err)
	}
	defer resp.Body.Close()
	if err := responseError("ping", resp); err != nil {
		return err
	}

	client = es
	logger.Info("Elasticsearch connected", zap.Strings("hosts", hosts))
	return nil
}

// normalizeHosts 去掉空项，缺少协议的地址补 http://
func normalizeHosts(raw []string) []string {
	hosts := make([]string, 0, len(raw))
	for _, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if !strings.HasPrefix(h, "http://") && !strings.HasPrefix(h, "https://") {
			h = "http://" + h
		}
		hosts = append(hosts, h)
	}
	return hosts
}

// Ready 客户端是否可用
func Ready() bool {
	return client != nil
}

func ready() (*elasticsearch.Client, error) {
	if client == nil {
		return nil, errNotInitialized
	}
	return client, nil
}

// responseError 非 2xx 响应转成 error，尽量带上 ES 返回的 error.type 与 reason
func responseError(op string, resp *esapi.Response) error {
	if !resp.IsError() {
		return nil
	}
	var body struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error.Type == "" {
		return fmt.Errorf("elasticsearch %s failed: status %d", op, resp.StatusCode)
	}
	return fmt.Errorf("elasticsearch %s failed: status %d: %s: %s", op, resp.StatusCode, body.Error.Type, body.Error.Reason)
}

// Close 释放客户端（go-elasticsearch 无需显式关闭连接）
func Close() error {
	client = nil
	logger.Info("Elasticsearch client closed")
	return nil
}
