// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string `yaml:"token"`
	Mode     string `yaml:"mode" validate:"omitempty,oneof=polling"`
	Username string `yaml:"username"`
	Workers  int    `yaml:"workers" validate:"min=1,max=256"` // update handling workers
	Timezone string `yaml:"timezone"`                         // IANA name used for "today"
	Currency string `yaml:"currency"`                         // display suffix for prices
	Locale   string `yaml:"locale"`
}

type LogConfig struct {
	Level    string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format   string `yaml:"format" validate:"omitempty,oneof=json console"`
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port      int    `yaml:"port" validate:"min=1,max=65535"`
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url" validate:"required"`
	MaxConns int32  `yaml:"max_conns" validate:"min=1"`
}

type RedisConfig struct {
	URL      string        `yaml:"url" validate:"required"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"min=0"`
	TTL      time.Duration `yaml:"ttl"` // lifetime of dialogue keys
}

type SessionConfig struct {
	LockTTL  time.Duration `yaml:"lock_ttl"`
	PageSize int           `yaml:"page_size" validate:"min=1,max=50"`
}

type RateLimitConfig struct {
	MessagesPerMinute  int `yaml:"messages_per_minute" validate:"min=0"`
	CallbacksPerMinute int `yaml:"callbacks_per_minute" validate:"min=0"`
}

type JobConfig struct {
	Interval time.Duration `yaml:"interval"`
	Workers  int           `yaml:"workers" validate:"min=0"` // send fan-out; reminder job only
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Reminder  JobConfig       `yaml:"reminder"`
	Rollover  JobConfig       `yaml:"rollover"`

	Runtime RuntimeConfig `yaml:"-"`
}

// Environment variables that take precedence over the YAML file.
const (
	EnvBotToken       = "BOT_TOKEN"
	EnvDatabaseURL    = "DATABASE_URL"
	EnvRedisURL       = "REDIS_URL"
	EnvRedisPassword  = "REDIS_PASSWORD"
	EnvAdminJWTSecret = "ADMIN_JWT_SECRET"
)

// LoadConfig reads the YAML file at path, applies an optional .env file and
// process environment overrides, fills defaults and validates the result.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	// .env is optional; a missing file is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse(b, dev, os.Getenv)
}

func parse(b []byte, dev bool, getenv func(string) string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg, getenv)
	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Bot.Token == "" && !dev {
		return nil, errors.New("bot.token is required outside dev mode")
	}
	if _, err := time.LoadLocation(cfg.Bot.Timezone); err != nil {
		return nil, fmt.Errorf("bot.timezone: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Bot.Token, EnvBotToken)
	set(&cfg.Database.URL, EnvDatabaseURL)
	set(&cfg.Redis.URL, EnvRedisURL)
	set(&cfg.Redis.Password, EnvRedisPassword)
	set(&cfg.Admin.JWTSecret, EnvAdminJWTSecret)
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Timezone == "" {
		cfg.Bot.Timezone = "UTC"
	}
	if cfg.Bot.Locale == "" {
		cfg.Bot.Locale = "en"
	}
	if cfg.Bot.Currency == "" {
		cfg.Bot.Currency = "RUB"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8081
	}
	if cfg.Admin.JWTIssuer == "" {
		cfg.Admin.JWTIssuer = "subscription-tracker"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeDuration(cfg.Redis.TTL, time.Hour)
	cfg.Session.LockTTL = normalizeDuration(cfg.Session.LockTTL, 10*time.Second)
	if cfg.Session.PageSize <= 0 {
		cfg.Session.PageSize = 5
	}
	if cfg.RateLimit.MessagesPerMinute == 0 {
		cfg.RateLimit.MessagesPerMinute = 20
	}
	if cfg.RateLimit.CallbacksPerMinute == 0 {
		cfg.RateLimit.CallbacksPerMinute = 30
	}
	cfg.Reminder.Interval = normalizeDuration(cfg.Reminder.Interval, 24*time.Hour)
	cfg.Rollover.Interval = normalizeDuration(cfg.Rollover.Interval, 24*time.Hour)
	if cfg.Reminder.Workers <= 0 {
		cfg.Reminder.Workers = 4
	}
}

func normalizeDuration(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Location returns the configured time zone; parse has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Bot.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
