package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"engage-go/internal/config"
	"engage-go/internal/infra/database"
	infraES "engage-go/internal/infra/elasticsearch"
	infraKafka "engage-go/internal/infra/kafka"
	"engage-go/internal/model"
	"engage-go/internal/repository"
	"engage-go/internal/service"
	"engage-go/pkg/logger"

	"go.uber.org/zap"
)

// 审计 worker：消费互动事件，落库 audit_logs 并写入 ES，定期清理过期日志
func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if err := database.Init(&cfg.Database, cfg.App.Mode); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	if err := database.AutoMigrate(database.Get()); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	var indexer service.AuditIndexer
	auditIndex := cfg.Elasticsearch.IndexName("audit")
	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Warn("Elasticsearch init failed, audit logs stored in DB only", zap.Error(err))
	} else {
		defer infraES.Close()
		if err := infraES.InitIndexes(auditIndex); err != nil {
			logger.Warn("Elasticsearch index init failed", zap.Error(err))
		}
		indexer = infraES.NewAuditIndex(auditIndex)
	}

	auditService := service.NewAuditService(
		repository.NewAuditRepository(database.Get()),
		indexer,
		cfg.Engagement.AuditRetentionDays,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	go runRetention(ctx, auditService)

	topic := cfg.Kafka.Topic("engagement_events")
	logger.Info("Audit worker started",
		zap.String("topic", topic),
		zap.String("group", cfg.Kafka.GroupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
	)

	infraKafka.StartEngagementConsumer(ctx, cfg.Kafka.Brokers, topic, cfg.Kafka.GroupID,
		func(ctx context.Context, event *model.EngagementEvent) error {
			return auditService.Record(ctx, event)
		},
	)
	logger.Info("Audit worker stopped")
}

// runRetention 每天按保留天数清理一次审计日志
func runRetention(ctx context.Context, auditService *service.AuditService) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := auditService.Purge(ctx, 0); err != nil {
				logger.Error("Audit retention purge failed", zap.Error(err))
			}
		}
	}
}
