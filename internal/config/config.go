package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	HTTPPort    int
	CORSOrigins []string

	DBDriver    string
	DatabaseURL string

	RedisURL string
	CacheTTL time.Duration

	RabbitMQURL string

	Mail       MailConfig
	AlertEmail string

	CurrencySymbol string

	LogLevel  string
	LogFormat string

	OverdueSweepSchedule string
	CacheWarmSchedule    string
}

type MailConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Enabled: sem host o envio de e-mail fica desligado.
func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_port", 8080)
	v.SetDefault("cors_origins", "http://localhost:5173,*")
	v.SetDefault("db_driver", DriverSQLite)
	v.SetDefault("database_url", "file:crm.db?_foreign_keys=on&_busy_timeout=5000")
	v.SetDefault("redis_url", "")
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("rabbitmq_url", "")
	v.SetDefault("mail_host", "")
	v.SetDefault("mail_port", 587)
	v.SetDefault("mail_user", "")
	v.SetDefault("mail_pass", "")
	v.SetDefault("mail_from", "crm@localhost")
	v.SetDefault("alert_email", "")
	v.SetDefault("currency_symbol", "$")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("overdue_sweep_schedule", "@every 15m")
	v.SetDefault("cache_warm_schedule", "@every 5m")
}

// Load lê o .env (se existir) e depois as variáveis de ambiente.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		HTTPPort:    v.GetInt("http_port"),
		CORSOrigins: splitList(v.GetString("cors_origins")),
		DBDriver:    strings.ToLower(v.GetString("db_driver")),
		DatabaseURL: v.GetString("database_url"),
		RedisURL:    v.GetString("redis_url"),
		CacheTTL:    v.GetDuration("cache_ttl"),
		RabbitMQURL: v.GetString("rabbitmq_url"),
		Mail: MailConfig{
			Host: v.GetString("mail_host"),
			Port: v.GetInt("mail_port"),
			User: v.GetString("mail_user"),
			Pass: v.GetString("mail_pass"),
			From: v.GetString("mail_from"),
		},
		AlertEmail:           v.GetString("alert_email"),
		CurrencySymbol:       v.GetString("currency_symbol"),
		LogLevel:             v.GetString("log_level"),
		LogFormat:            v.GetString("log_format"),
		OverdueSweepSchedule: v.GetString("overdue_sweep_schedule"),
		CacheWarmSchedule:    v.GetString("cache_warm_schedule"),
	}

	if cfg.DBDriver == "postgresql" {
		cfg.DBDriver = DriverPostgres
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}
	if c.DBDriver != DriverPostgres && c.DBDriver != DriverSQLite {
		return fmt.Errorf("invalid DB_DRIVER: %s, must be 'postgres' or 'sqlite3'", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("invalid CACHE_TTL: %s", c.CacheTTL)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("invalid LOG_FORMAT: %s, must be 'json' or 'text'", c.LogFormat)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
