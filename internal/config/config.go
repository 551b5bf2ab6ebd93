package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvLocal      = "local"
	EnvProduction = "production"

	// localJWTSecret 仅在 APP_ENV=local 时允许使用
	localJWTSecret = "local-dev-secret-change-me"
)

// Config 从环境变量读取的全部配置
type Config struct {
	Env      string `envconfig:"APP_ENV" default:"local"`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"local-dev-secret-change-me"`

	S3Endpoint  string        `envconfig:"S3_ENDPOINT" default:"http://localhost:9000"`
	S3Region    string        `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey string        `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string        `envconfig:"S3_SECRET_KEY"`
	S3Bucket    string        `envconfig:"S3_BUCKET" default:"showcase"`
	UploadTTL   time.Duration `envconfig:"UPLOAD_URL_TTL" default:"10m"`

	FeaturedLimit    int           `envconfig:"FEATURED_LIMIT" default:"3"`
	FeaturedCacheTTL time.Duration `envconfig:"FEATURED_CACHE_TTL" default:"1m"`

	NotificationRetention time.Duration `envconfig:"NOTIFICATION_RETENTION" default:"2160h"`
	PruneSchedule         string        `envconfig:"PRUNE_SCHEDULE" default:"0 3 * * *"`
	FeaturedSchedule      string        `envconfig:"FEATURED_SCHEDULE" default:"@every 5m"`

	OTelEndpoint string `envconfig:"OTEL_ENDPOINT"`
}

func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal
}

// Validate 拒绝只适用于本地开发的配置
func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal:
		if c.S3AccessKey == "" {
			c.S3AccessKey = "minioadmin"
		}
		if c.S3SecretKey == "" {
			c.S3SecretKey = "minioadmin"
		}
		return nil
	case EnvProduction:
	default:
		return errors.New("APP_ENV must be local or production")
	}

	var errs []error
	if c.JWTSecret == "" || c.JWTSecret == localJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.S3AccessKey == "" || c.S3SecretKey == "" {
		errs = append(errs, errors.New("S3_ACCESS_KEY and S3_SECRET_KEY must be set in production"))
	}
	if c.FeaturedLimit <= 0 {
		errs = append(errs, errors.New("FEATURED_LIMIT must be positive"))
	}
	return errors.Join(errs...)
}

// Load 先加载可选的 .env 文件，再读取进程环境变量
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
