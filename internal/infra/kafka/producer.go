package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"engage-go/internal/config"
	"engage-go/internal/model"
	"engage-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者
func InitProducer(cfg *config.KafkaConfig) error {
	producer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
	)

	return nil
}

// EventKey 同一内容的事件落到同一分区，保证消费顺序
func EventKey(event *model.EngagementEvent) string {
	if event.ContentKind != "" {
		return fmt.Sprintf("%s-%d", event.ContentKind, event.ContentID)
	}
	return fmt.Sprintf("user-%d", event.ActorID)
}

// SendEngagementEvent 发送互动事件到 Kafka
func SendEngagementEvent(ctx context.Context, topic string, event *model.EngagementEvent) error {
	if producer == nil {
		return fmt.Errorf("kafka producer not initialized")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal engagement event: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(EventKey(event)),
		Value: payload,
	}

	if err := producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send engagement event: %w", err)
	}

	logger.Debug("Engagement event sent",
		zap.String("event_id", event.EventID),
		zap.String("action", event.Action),
		zap.String("topic", topic),
	)

	return nil
}

// Publisher 将事件写入固定 topic，供 service 层注入
type Publisher struct {
	topic string
}

func NewPublisher(topic string) *Publisher {
	return &Publisher{topic: topic}
}

func (p *Publisher) Publish(ctx context.Context, event *model.EngagementEvent) error {
	return SendEngagementEvent(ctx, p.topic, event)
}

// CloseProducer 关闭生产者
func CloseProducer() error {
	if producer == nil {
		return nil
	}
	logger.Info("Kafka producer closed")
	return producer.Close()
}
