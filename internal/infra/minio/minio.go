package minio

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"engage-go/internal/config"
	"engage-go/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var client *minio.Client

// Init 初始化 MinIO 客户端并确保所有 Bucket 存在
func Init(cfg *config.MinIOConfig) error {
	var err error
	client, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, bucket := range cfg.Buckets {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
			logger.Info("MinIO bucket created", zap.String("bucket", bucket))
		}
	}

	logger.Info("MinIO connected",
		zap.String("endpoint", cfg.Endpoint),
		zap.Int("buckets", len(cfg.Buckets)),
	)

	return nil
}

// Get 获取 MinIO 客户端实例
func Get() *minio.Client {
	return client
}

// UploadBytes 上传内存中的对象到指定 Bucket
func UploadBytes(ctx context.Context, bucket, objectName string, data []byte, contentType string) error {
	if client == nil {
		return fmt.Errorf("minio client not initialized")
	}
	_, err := client.PutObject(ctx, bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to minio: %w", err)
	}
	return nil
}

// GetPresignedURL 生成预签名下载 URL（有效期可配置）
func GetPresignedURL(ctx context.Context, bucket, objectName string, expiry time.Duration) (string, error) {
	if client == nil {
		return "", fmt.Errorf("minio client not initialized")
	}
	presignedURL, err := client.PresignedGetObject(ctx, bucket, objectName, expiry, make(url.Values))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned url: %w", err)
	}
	return presignedURL.String(), nil
}

// ReportArchiver 将对账报告以 JSON 形式归档到固定 Bucket
type ReportArchiver struct {
	bucket string
	expiry time.Duration
}

func NewReportArchiver(bucket string) *ReportArchiver {
	return &ReportArchiver{bucket: bucket, expiry: 24 * time.Hour}
}

// Archive 上传报告并返回一个可下载的预签名地址
func (a *ReportArchiver) Archive(ctx context.Context, name string, payload []byte) (string, error) {
	if err := UploadBytes(ctx, a.bucket, name, payload, "application/json"); err != nil {
		return "", err
	}
	return GetPresignedURL(ctx, a.bucket, name, a.expiry)
}
