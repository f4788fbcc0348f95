package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"stayhub/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Backup     BackupConfig     `yaml:"backup"`
	Redis      RedisConfig      `yaml:"redis"`
	Session    SessionConfig    `yaml:"session"`
	Auth       AuthConfig       `yaml:"auth"`
	Payment    PaymentConfig    `yaml:"payment"`
	Storage    StorageConfig    `yaml:"storage"`
	Events     EventsConfig     `yaml:"events"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Listings   []models.Listing `yaml:"listings"`
	Faqs       []models.Faq     `yaml:"faqs"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port              int      `yaml:"port"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
	ReadHeaderTimeout int      `yaml:"read_header_timeout"`
	WriteTimeout      int      `yaml:"write_timeout"`
	MaxUploadMB       int      `yaml:"max_upload_mb"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type BackupConfig struct {
	Enabled bool `yaml:"enabled"`
	// Interval is a Go duration string, e.g. "24h"
	Interval      string `yaml:"interval"`
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type SessionConfig struct {
	CookieName string `yaml:"cookie_name"`
	// TTL in seconds
	TTL    int  `yaml:"ttl"`
	Secure bool `yaml:"secure"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	// TokenTTL in hours
	TokenTTL int `yaml:"token_ttl"`
}

type PaymentConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	SuccessURL    string `yaml:"success_url"`
	CancelURL     string `yaml:"cancel_url"`
	Currency      string `yaml:"currency"`
	MaxRetries    int    `yaml:"max_retries"`
}

type StorageConfig struct {
	Driver    string `yaml:"driver"` // local | s3
	LocalDir  string `yaml:"local_dir"`
	PublicURL string `yaml:"public_url"`
	S3Bucket  string `yaml:"s3_bucket"`
	S3Region  string `yaml:"s3_region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type EventsConfig struct {
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
	// BookingAttempts per BookingWindow seconds, per session
	BookingAttempts int `yaml:"booking_attempts"`
	BookingWindow   int `yaml:"booking_window"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional in every environment
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth jwt_secret is required")
	}

	if c.Payment.SecretKey == "" || c.Payment.WebhookSecret == "" {
		return errors.New("payment secret_key and webhook_secret are required")
	}

	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return errors.New("storage s3_bucket is required for s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if err := ValidateListings(c.Listings); err != nil {
		return err
	}
	return ValidateFaqs(c.Faqs)
}

// ValidateListings checks seed listings loaded from config.
func ValidateListings(listings []models.Listing) error {
	ids := make(map[int64]bool)
	for _, l := range listings {
		if l.ID == 0 {
			return fmt.Errorf("listing '%s' has invalid ID 0", l.Name)
		}
		if ids[l.ID] {
			return fmt.Errorf("duplicate listing ID found: %d", l.ID)
		}
		if l.Price <= 0 || l.Capacity <= 0 {
			return fmt.Errorf("listing %d must have positive price and capacity", l.ID)
		}
		ids[l.ID] = true
	}
	return nil
}

// ValidateFaqs checks seed FAQ entries loaded from config.
func ValidateFaqs(faqs []models.Faq) error {
	ids := make(map[int64]bool)
	for _, f := range faqs {
		if f.ID == 0 {
			return fmt.Errorf("faq '%s' has invalid ID 0", f.Question)
		}
		if ids[f.ID] {
			return fmt.Errorf("duplicate faq ID found: %d", f.ID)
		}
		if strings.TrimSpace(f.Question) == "" || strings.TrimSpace(f.Answer) == "" {
			return fmt.Errorf("faq %d must have a question and an answer", f.ID)
		}
		ids[f.ID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadHeaderTimeout == 0 {
		c.HTTP.ReadHeaderTimeout = 5
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 15
	}
	if c.HTTP.MaxUploadMB == 0 {
		c.HTTP.MaxUploadMB = 10
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Backup.Enabled && c.Backup.Dir == "" {
		c.Backup.Dir = "data/backups"
	}

	if c.Session.CookieName == "" {
		c.Session.CookieName = "STAYHUB_SESSION"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = models.DefaultSessionTTL
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24
	}

	if c.Payment.Currency == "" {
		c.Payment.Currency = "jpy"
	}
	c.Payment.Currency = strings.ToLower(c.Payment.Currency)
	if c.Payment.MaxRetries == 0 {
		c.Payment.MaxRetries = 2
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.Driver == "local" && c.Storage.LocalDir == "" {
		c.Storage.LocalDir = "data/storage"
	}
	if c.Events.KafkaTopic == "" {
		c.Events.KafkaTopic = "stayhub.reservations"
	}

	if c.RateLimit.BookingAttempts == 0 {
		c.RateLimit.BookingAttempts = models.BookingAttemptsPerWindow
	}
	if c.RateLimit.BookingWindow == 0 {
		c.RateLimit.BookingWindow = models.BookingAttemptsWindow
	}
}
