package service

import (
	"context"
	"time"

	"engage-go/internal/model"
	"engage-go/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher 互动事件的投递端（生产环境为 Kafka）
type EventPublisher interface {
	Publish(ctx context.Context, event *model.EngagementEvent) error
}

// ReportArchiver 对账报告归档（生产环境为 MinIO），返回可下载地址
type ReportArchiver interface {
	Archive(ctx context.Context, name string, payload []byte) (string, error)
}

// Locker 跨进程互斥锁（生产环境为 Redis）
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, *model.EngagementEvent) error { return nil }

type noopArchiver struct{}

func (noopArchiver) Archive(context.Context, string, []byte) (string, error) { return "", nil }

type noopLocker struct{}

func (noopLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}

const publishTimeout = 3 * time.Second

// emitter 负责组装并投递事件，投递失败只记日志
type emitter struct {
	pub EventPublisher
}

func newEmitter(pub EventPublisher) *emitter {
	if pub == nil {
		pub = noopPublisher{}
	}
	return &emitter{pub: pub}
}

func (e *emitter) emit(ctx context.Context, event *model.EngagementEvent) {
	event.EventID = uuid.NewString()
	event.OccurredAt = time.Now()
	if event.Level == "" {
		event.Level = model.LevelInfo
	}

	// 业务写入已提交，请求取消不应影响事件投递
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := e.pub.Publish(pubCtx, event); err != nil {
		logger.Warn("Publish engagement event failed",
			zap.String("action", event.Action),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
}
