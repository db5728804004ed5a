package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	Engagement    EngagementConfig    `mapstructure:"engagement"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Mode    string `mapstructure:"mode"`
	Port    int    `mapstructure:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
}

// DSN 返回PostgreSQL连接字符串
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr 返回Redis地址
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint  string   `mapstructure:"endpoint"`
	AccessKey string   `mapstructure:"access_key"`
	SecretKey string   `mapstructure:"secret_key"`
	UseSSL    bool     `mapstructure:"use_ssl"`
	Buckets   []string `mapstructure:"buckets"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers []string          `mapstructure:"brokers"`
	Topics  map[string]string `mapstructure:"topics"`
	GroupID string            `mapstructure:"group_id"`
}

// Topic 返回逻辑名对应的 topic，未配置时使用逻辑名本身
func (k *KafkaConfig) Topic(name string) string {
	if t, ok := k.Topics[name]; ok && t != "" {
		return t
	}
	return name
}

// ElasticsearchConfig Elasticsearch配置
type ElasticsearchConfig struct {
	Hosts []string          `mapstructure:"hosts"`
	Index map[string]string `mapstructure:"index"`
}

// IndexName 返回逻辑名对应的索引名
func (e *ElasticsearchConfig) IndexName(name string) string {
	if idx, ok := e.Index[name]; ok && idx != "" {
		return idx
	}
	return name
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// ExpireDuration 返回过期时间
func (j *JWTConfig) ExpireDuration() time.Duration {
	return time.Duration(j.ExpireHours) * time.Hour
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// EngagementConfig 评论与点赞相关配置
type EngagementConfig struct {
	CommentMaxLength   int    `mapstructure:"comment_max_length"`
	DefaultPageSize    int    `mapstructure:"default_page_size"`
	MaxPageSize        int    `mapstructure:"max_page_size"`
	TombstoneContent   string `mapstructure:"tombstone_content"`
	TitleCacheSize     int    `mapstructure:"title_cache_size"`
	TitleCacheTTL      int    `mapstructure:"title_cache_ttl"`      // 秒
	ReconcileLockTTL   int    `mapstructure:"reconcile_lock_ttl"`   // 秒
	ReportsBucket      string `mapstructure:"reports_bucket"`
	AuditRetentionDays int    `mapstructure:"audit_retention_days"`
}

// TitleCacheDuration 返回标题缓存有效期
func (e *EngagementConfig) TitleCacheDuration() time.Duration {
	return time.Duration(e.TitleCacheTTL) * time.Second
}

// ReconcileLockDuration 返回对账锁的持有时间
func (e *EngagementConfig) ReconcileLockDuration() time.Duration {
	return time.Duration(e.ReconcileLockTTL) * time.Second
}

// DefaultEngagement 返回未配置时使用的默认值
func DefaultEngagement() EngagementConfig {
	return EngagementConfig{
		CommentMaxLength:   1000,
		DefaultPageSize:    5,
		MaxPageSize:        100,
		TombstoneContent:   "该评论已删除",
		TitleCacheSize:     500,
		TitleCacheTTL:      300,
		ReconcileLockTTL:   600,
		ReportsBucket:      "reconcile-reports",
		AuditRetentionDays: 30,
	}
}

// 全局配置实例
var globalConfig *Config

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	// .env 文件可选，不存在时直接使用系统环境变量
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 环境变量覆盖，如 DATABASE_HOST 覆盖 database.host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	globalConfig = &cfg

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultEngagement()
	v.SetDefault("engagement.comment_max_length", d.CommentMaxLength)
	v.SetDefault("engagement.default_page_size", d.DefaultPageSize)
	v.SetDefault("engagement.max_page_size", d.MaxPageSize)
	v.SetDefault("engagement.tombstone_content", d.TombstoneContent)
	v.SetDefault("engagement.title_cache_size", d.TitleCacheSize)
	v.SetDefault("engagement.title_cache_ttl", d.TitleCacheTTL)
	v.SetDefault("engagement.reconcile_lock_ttl", d.ReconcileLockTTL)
	v.SetDefault("engagement.reports_bucket", d.ReportsBucket)
	v.SetDefault("engagement.audit_retention_days", d.AuditRetentionDays)
	v.SetDefault("kafka.group_id", "engage-go-audit")
}

// Set 直接设置全局配置（测试用）
func Set(cfg *Config) {
	globalConfig = cfg
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded, please call Load() first")
	}
	return globalConfig
}

// GetApp 获取应用配置
func GetApp() *AppConfig {
	return &Get().App
}

// GetDatabase 获取数据库配置
func GetDatabase() *DatabaseConfig {
	return &Get().Database
}

// GetRedis 获取Redis配置
func GetRedis() *RedisConfig {
	return &Get().Redis
}

// GetMinIO 获取MinIO配置
func GetMinIO() *MinIOConfig {
	return &Get().MinIO
}

// GetKafka 获取Kafka配置
func GetKafka() *KafkaConfig {
	return &Get().Kafka
}

// GetElasticsearch 获取Elasticsearch配置
func GetElasticsearch() *ElasticsearchConfig {
	return &Get().Elasticsearch
}

// GetJWT 获取JWT配置
func GetJWT() *JWTConfig {
	return &Get().JWT
}

// GetLog 获取日志配置
func GetLog() *LogConfig {
	return &Get().Log
}

// GetEngagement 获取评论点赞配置
func GetEngagement() *EngagementConfig {
	return &Get().Engagement
}
