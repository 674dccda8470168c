// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // app config cache ttl
}

type RazorpayConfig struct {
	KeyID         string        `yaml:"key_id"`
	KeySecret     string        `yaml:"key_secret"`     // signs client confirmations
	WebhookSecret string        `yaml:"webhook_secret"` // signs webhook bodies; never falls back to key_secret
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
}

type PaymentConfig struct {
	Razorpay RazorpayConfig `yaml:"razorpay"`
	// OrdersPerMinute limits order creation per user; 0 disables the limit.
	OrdersPerMinute int `yaml:"orders_per_minute"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"` // HS256 secret of the auth provider
}

type StorageConfig struct {
	Endpoint     string        `yaml:"endpoint"` // S3-compatible endpoint, e.g. https://<project>.supabase.co/storage/v1/s3
	Region       string        `yaml:"region"`
	AccessKey    string        `yaml:"access_key"`
	SecretKey    string        `yaml:"secret_key"`
	Bucket       string        `yaml:"bucket"` // used when a stored reference carries no bucket
	UsePathStyle bool          `yaml:"use_path_style"`
	SignedURLTTL time.Duration `yaml:"signed_url_ttl"`
}

type SubscriptionConfig struct {
	DurationYears int `yaml:"duration_years"`
}

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Payment      PaymentConfig      `yaml:"payment"`
	Auth         AuthConfig         `yaml:"auth"`
	Storage      StorageConfig      `yaml:"storage"`
	Subscription SubscriptionConfig `yaml:"subscription"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the yaml file at path (a missing file is allowed), loads a
// .env file when present, applies environment overrides for secrets, and
// fills defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only deployment
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	_ = godotenv.Load()
	applyEnv(&cfg)
	applyDefaults(&cfg)

	// Minimal validation. Payment and storage secrets are checked by the
	// endpoints that need them so a misconfiguration fails there, loudly.
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	str := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	str(&cfg.Database.URL, "DATABASE_URL")
	str(&cfg.Redis.URL, "REDIS_URL")
	str(&cfg.Redis.Password, "REDIS_PASSWORD")
	str(&cfg.Payment.Razorpay.KeyID, "RAZORPAY_KEY_ID")
	str(&cfg.Payment.Razorpay.KeySecret, "RAZORPAY_KEY_SECRET")
	str(&cfg.Payment.Razorpay.WebhookSecret, "RAZORPAY_WEBHOOK_SECRET")
	str(&cfg.Auth.JWTSecret, "SUPABASE_JWT_SECRET")
	str(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")
	str(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	str(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")
	str(&cfg.Storage.Bucket, "STORAGE_BUCKET")
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Payment.Razorpay.BaseURL == "" {
		cfg.Payment.Razorpay.BaseURL = "https://api.razorpay.com"
	}
	if cfg.Payment.Razorpay.Timeout <= 0 {
		cfg.Payment.Razorpay.Timeout = 15 * time.Second
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "auto"
	}
	if cfg.Storage.SignedURLTTL <= 0 {
		cfg.Storage.SignedURLTTL = 60 * time.Second
	}
	if cfg.Subscription.DurationYears <= 0 {
		cfg.Subscription.DurationYears = 1
	}
}

// normalizeTTL keeps the price cache short so an admin change is visible quickly
// even on replicas that missed the invalidation.
func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}
