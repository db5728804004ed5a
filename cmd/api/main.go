package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"engage-go/internal/api/dto"
	"engage-go/internal/api/handler"
	"engage-go/internal/api/middleware"
	"engage-go/internal/api/router"
	"engage-go/internal/config"
	"engage-go/internal/infra/database"
	infraES "engage-go/internal/infra/elasticsearch"
	infraKafka "engage-go/internal/infra/kafka"
	infraMinio "engage-go/internal/infra/minio"
	infraRedis "engage-go/internal/infra/redis"
	"engage-go/internal/repository"
	"engage-go/internal/service"
	"engage-go/pkg/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Engage-Go API
// @version 1.0
// @description 评论与点赞一致性服务 API
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 输入格式: Bearer {token}

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(
		cfg.Log.Level,
		cfg.Log.Format,
		cfg.Log.Output,
		cfg.Log.FilePath,
	); err != nil {
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

	// Redis 仅用于对账互斥锁，不可用时退化为无锁
	var locker service.Locker
	if rdb, err := infraRedis.Connect(context.Background(), &cfg.Redis); err != nil {
		logger.Warn("Redis init failed, reconcile lock disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		locker = infraRedis.NewLocker(rdb)
	}

	var archiver service.ReportArchiver
	if err := infraMinio.Init(&cfg.MinIO); err != nil {
		logger.Warn("MinIO init failed, reconcile reports will not be archived", zap.Error(err))
	} else {
		archiver = infraMinio.NewReportArchiver(cfg.Engagement.ReportsBucket)
	}

	if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
		logger.Fatal("Failed to init kafka producer", zap.Error(err))
	}
	defer infraKafka.CloseProducer()
	publisher := infraKafka.NewPublisher(cfg.Kafka.Topic("engagement_events"))

	// Elasticsearch 可选，失败则审计检索降级到 DB
	var indexer service.AuditIndexer
	auditIndex := cfg.Elasticsearch.IndexName("audit")
	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Warn("Elasticsearch init failed, audit search will fallback to DB", zap.Error(err))
	} else {
		defer infraES.Close()
		if err := infraES.InitIndexes(auditIndex); err != nil {
			logger.Warn("Elasticsearch index init failed", zap.Error(err))
		}
		indexer = infraES.NewAuditIndex(auditIndex)
	}

	if err := dto.RegisterValidators(); err != nil {
		logger.Fatal("Failed to register validators", zap.Error(err))
	}

	gin.SetMode(cfg.App.Mode)

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// 初始化依赖（Repository -> Service -> Handler）
	db := database.Get()
	eng := cfg.Engagement

	userRepo := repository.NewUserRepository(db)
	contentRepo := repository.NewContentRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	gate, err := service.NewContentGate(contentRepo, commentRepo, eng.TitleCacheSize, eng.TitleCacheDuration())
	if err != nil {
		logger.Fatal("Failed to init content gate", zap.Error(err))
	}

	authService := service.NewAuthService(userRepo)
	commentService := service.NewCommentService(commentRepo, userRepo, gate, publisher, service.CommentOptions{
		MaxLength:        eng.CommentMaxLength,
		TombstoneContent: eng.TombstoneContent,
	})
	feedService := service.NewFeedService(commentRepo, likeRepo, userRepo, gate, service.FeedOptions{
		DefaultPageSize: eng.DefaultPageSize,
		MaxPageSize:     eng.MaxPageSize,
	})
	likeService := service.NewLikeService(likeRepo, contentRepo, commentRepo, gate, publisher)
	reconcileService := service.NewReconcileService(likeRepo, locker, archiver, publisher, eng.ReconcileLockDuration())
	contentService := service.NewContentService(contentRepo, gate, publisher)
	userService := service.NewUserService(userRepo, likeRepo, commentService, publisher)
	auditService := service.NewAuditService(auditRepo, indexer, eng.AuditRetentionDays)

	authHandler := handler.NewAuthHandler(authService)
	commentHandler := handler.NewCommentHandler(commentService, feedService)
	likeHandler := handler.NewLikeHandler(likeService)
	adminHandler := handler.NewAdminHandler(likeService, reconcileService, contentService, userService, auditService)

	// 管理员中间件（需要查数据库获取角色）
	adminMiddleware := middleware.AdminRequired(userService.GetRole)

	r.GET("/healthz", healthCheckHandler)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.Setup(r, authHandler, commentHandler, likeHandler, adminHandler, adminMiddleware)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("addr", addr),
	)
	logger.Info("Configuration loaded",
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)),
		zap.String("redis", cfg.Redis.Addr()),
		zap.String("minio", cfg.MinIO.Endpoint),
		zap.Strings("kafka", cfg.Kafka.Brokers),
	)

	if err := r.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// healthCheckHandler 健康检查接口
func healthCheckHandler(c *gin.Context) {
	cfg := config.Get()

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Service is healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   cfg.App.Name,
		"version":   cfg.App.Version,
		"mode":      cfg.App.Mode,
	})
}
