package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	OSS        OSSConfig        `mapstructure:"oss"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Chat       ChatConfig       `mapstructure:"chat"`
	Alerts     AlertsConfig     `mapstructure:"alerts"`
	Import     ImportConfig     `mapstructure:"import"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type QueueConfig struct {
	ReviewQueue string `mapstructure:"review_queue"`
	MaxWorkers  int    `mapstructure:"max_workers"`
}

// ClassifierConfig 分类器配置
// provider: keyword（本地关键词分析，免费）或 openai（OpenAI 兼容接口）
type ClassifierConfig struct {
	Provider       string `mapstructure:"provider"`
	Endpoint       string `mapstructure:"endpoint"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// PipelineConfig 批量处理管道配置
type PipelineConfig struct {
	DefaultBatchSize   int `mapstructure:"default_batch_size"`
	MinBatchSize       int `mapstructure:"min_batch_size"`
	MaxBatchSize       int `mapstructure:"max_batch_size"`
	DefaultConcurrency int `mapstructure:"default_concurrency"`
	MaxConcurrency     int `mapstructure:"max_concurrency"`
	ChunkSize          int `mapstructure:"chunk_size"`
	LogCapacity        int `mapstructure:"log_capacity"`
	MaxWindowRetries   int `mapstructure:"max_window_retries"`
	RetryBackoffMs     int `mapstructure:"retry_backoff_ms"`
}

type ChatConfig struct {
	WebhookURL     string `mapstructure:"webhook_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type AlertsConfig struct {
	ScanIntervalMinutes int     `mapstructure:"scan_interval_minutes"`
	SpikeThreshold      int     `mapstructure:"spike_threshold"`
	NegativeRatio       float64 `mapstructure:"negative_ratio"`
	StaleProcessingMins int     `mapstructure:"stale_processing_mins"`
}

type ImportConfig struct {
	MaxSize int64 `mapstructure:"max_size"` // 最大文件大小（字节）
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	// 检查 config.local.yaml 是否存在
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyPipelineDefaults(&cfg.Pipeline)

	return &cfg, nil
}

// applyPipelineDefaults 填充管道参数默认值（参考部署取值）
func applyPipelineDefaults(p *PipelineConfig) {
	if p.DefaultBatchSize <= 0 {
		p.DefaultBatchSize = 10000
	}
	if p.MinBatchSize <= 0 {
		p.MinBatchSize = 50
	}
	if p.MaxBatchSize <= 0 {
		p.MaxBatchSize = 10000
	}
	if p.DefaultConcurrency <= 0 {
		p.DefaultConcurrency = 3
	}
	if p.MaxConcurrency <= 0 {
		p.MaxConcurrency = 10
	}
	if p.ChunkSize <= 0 {
		p.ChunkSize = 50
	}
	if p.LogCapacity <= 0 {
		p.LogCapacity = 100
	}
	if p.MaxWindowRetries <= 0 {
		p.MaxWindowRetries = 3
	}
	if p.RetryBackoffMs <= 0 {
		p.RetryBackoffMs = 1000
	}
}
