// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrInvalidPort is returned when PORT is outside 1..65535.
	ErrInvalidPort = errors.New("config: PORT must be between 1 and 65535")
	// ErrInvalidMaxConcurrentJobs is returned when MAX_CONCURRENT_JOBS is negative.
	ErrInvalidMaxConcurrentJobs = errors.New("config: MAX_CONCURRENT_JOBS must not be negative")
	// ErrS3RegionRequired is returned when S3_BUCKET is set without S3_REGION.
	ErrS3RegionRequired = errors.New("config: S3_REGION is required when S3_BUCKET is set")
	// ErrSupabaseKeyRequired is returned when SUPABASE_URL is set without a service key.
	ErrSupabaseKeyRequired = errors.New("config: SUPABASE_SERVICE_ROLE_KEY is required when SUPABASE_URL is set")
	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("config: timeouts must be positive")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port        int    `env:"PORT, default=8000" json:"port"`
	Environment string `env:"ENVIRONMENT, default=development" json:"environment"`

	// Processing settings
	TempDir              string `env:"TEMP_DIR" json:"temp_dir,omitempty"`
	FFmpegPath           string `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path"`
	FFprobePath          string `env:"FFPROBE_PATH, default=ffprobe" json:"ffprobe_path"`
	DefaultWatermarkPath string `env:"DEFAULT_WATERMARK_PATH" json:"default_watermark_path,omitempty"`
	DefaultWatermarkText string `env:"DEFAULT_WATERMARK_TEXT, default=imgMotionMagic" json:"default_watermark_text"`
	MaxConcurrentJobs    int    `env:"MAX_CONCURRENT_JOBS, default=0" json:"max_concurrent_jobs"` // 0 = unbounded

	// Outbound timeouts
	DownloadTimeout time.Duration `env:"DOWNLOAD_TIMEOUT, default=60s" json:"download_timeout"`
	UploadTimeout   time.Duration `env:"UPLOAD_TIMEOUT, default=120s" json:"upload_timeout"`
	WebhookTimeout  time.Duration `env:"WEBHOOK_TIMEOUT, default=30s" json:"webhook_timeout"`

	// Supabase settings
	SupabaseURL            string `env:"SUPABASE_URL" json:"supabase_url,omitempty"`
	SupabaseServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY" json:"-"` // Masked in JSON
	SupabaseAnonKey        string `env:"SUPABASE_ANON_KEY" json:"-"`         // Masked in JSON
	SupabaseBucket         string `env:"SUPABASE_BUCKET, default=user-files" json:"supabase_bucket"`
	SupabaseTable          string `env:"SUPABASE_TABLE, default=ai_generations" json:"supabase_table"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Optional direct database access
	DatabaseURL string `env:"DATABASE_URL" json:"-"` // Masked in JSON

	// Optional job event stream
	KafkaBrokers []string `env:"KAFKA_BROKERS" json:"kafka_brokers,omitempty"`
	KafkaTopic   string   `env:"KAFKA_TOPIC, default=ffmpeg-jobs" json:"kafka_topic"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// SupabaseEnabled returns true if Supabase storage and functions can be used.
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceRoleKey != ""
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// DatabaseEnabled returns true if a direct database connection is configured.
func (c *Config) DatabaseEnabled() bool {
	return c.DatabaseURL != ""
}

// KafkaEnabled returns true if job events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaTopic != ""
}

// Load reads configuration from environment variables using go-envconfig
// and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is consistent.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}
	if c.MaxConcurrentJobs < 0 {
		return ErrInvalidMaxConcurrentJobs
	}
	if c.DownloadTimeout <= 0 || c.UploadTimeout <= 0 || c.WebhookTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.S3Bucket != "" && c.S3Region == "" {
		return ErrS3RegionRequired
	}
	if c.SupabaseURL != "" && c.SupabaseServiceRoleKey == "" {
		return ErrSupabaseKeyRequired
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs coloured human-readable logs.
func (c *Config) NewLogger() *slog.Logger {
	return c.newLogger(os.Stdout)
}

func (c *Config) newLogger(w io.Writer) *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
			NoColor:    w != os.Stdout,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, Environment: %s, TempDir: %s, MaxConcurrentJobs: %d, SupabaseURL: %s, SupabaseKey: %s, SupabaseBucket: %s, S3Bucket: %s, S3Region: %s, DatabaseURL: %s, KafkaBrokers: %v, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.Environment,
		c.TempDir,
		c.MaxConcurrentJobs,
		c.SupabaseURL,
		mask(c.SupabaseServiceRoleKey),
		c.SupabaseBucket,
		c.S3Bucket,
		c.S3Region,
		mask(c.DatabaseURL),
		c.KafkaBrokers,
		c.LogFormat,
		c.LogLevel,
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
