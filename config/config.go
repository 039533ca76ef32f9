package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/vetdesk/clinic-api/internal/accesscode"
	"github.com/vetdesk/clinic-api/internal/email"
	"github.com/vetdesk/clinic-api/internal/repository/postgres"
	"github.com/vetdesk/clinic-api/pkg/auth"
)

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type SessionConfig struct {
	// Backend selects where editing-session state (access codes, the
	// diagnosis lock) lives: "memory" or "redis".
	Backend string `mapstructure:"backend"`
}

type AuditConfig struct {
	RetentionDays   int           `mapstructure:"retention_days"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type Config struct {
	Server     ServerConfig            `mapstructure:"server"`
	Database   postgres.DatabaseConfig `mapstructure:"database"`
	Redis      RedisConfig             `mapstructure:"redis"`
	Session    SessionConfig           `mapstructure:"session"`
	JWT        auth.JWTConfig          `mapstructure:"jwt"`
	SMTP       email.SMTPConfig        `mapstructure:"smtp"`
	AccessCode accesscode.Config       `mapstructure:"access_code"`
	Audit      AuditConfig             `mapstructure:"audit"`
	RateLimit  RateLimitConfig         `mapstructure:"rate_limit"`
	LogLevel   string                  `mapstructure:"log_level"`
	LogPretty  bool                    `mapstructure:"log_pretty"`
}

// Secrets are never written to config files; they arrive through the
// environment and override whatever the file says.
type secrets struct {
	DBPassword    string `envconfig:"DB_PASSWORD"`
	JWTSecret     string `envconfig:"JWT_SECRET"`
	RefreshSecret string `envconfig:"JWT_REFRESH_SECRET"`
	SMTPPassword  string `envconfig:"SMTP_PASSWORD"`
	RedisURL      string `envconfig:"REDIS_URL"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/app/config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("server.max_header_bytes", 1<<20)
	viper.SetDefault("session.backend", "memory")
	viper.SetDefault("access_code.ttl", accesscode.DefaultTTL)
	viper.SetDefault("audit.retention_days", 365)
	viper.SetDefault("audit.cleanup_interval", 24*time.Hour)
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests_per_second", 50.0)
	viper.SetDefault("rate_limit.burst", 100)
	viper.SetDefault("log_level", "info")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var sec secrets
	if err := envconfig.Process("", &sec); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if sec.DBPassword != "" {
		cfg.Database.Password = sec.DBPassword
	}
	if sec.JWTSecret != "" {
		cfg.JWT.Secret = sec.JWTSecret
	}
	if sec.RefreshSecret != "" {
		cfg.JWT.RefreshSecret = sec.RefreshSecret
	}
	if sec.SMTPPassword != "" {
		cfg.SMTP.Password = sec.SMTPPassword
	}
	if sec.RedisURL != "" {
		cfg.Redis.URL = sec.RedisURL
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" || c.JWT.RefreshSecret == "" {
		return fmt.Errorf("jwt secrets must be configured")
	}
	if c.AccessCode.ApproverEmail == "" {
		return fmt.Errorf("access_code.approver_email must be configured")
	}
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.Session.Backend == "redis" && c.Redis.URL == "" {
		return fmt.Errorf("redis session backend requires redis.url")
	}
	return nil
}
