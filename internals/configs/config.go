package configs

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// =======================
// CONFIG
// =======================
type Config struct {
	AppEnv   string
	LogLevel string
	Port     string

	CORSAllowOrigins []string

	DB DBConfig

	// Request-level budget for one scoring/exclusion/settings operation,
	// separate from DB.ConnectTimeout.
	OperationTimeout time.Duration

	RedisURL          string
	ThresholdCacheTTL time.Duration
}

type DBConfig struct {
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
	// statement_timeout sent to postgres, in milliseconds
	StatementTimeoutMS int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", "3000")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "foodaudit")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", "60s")
	v.SetDefault("DB_CONN_MAX_LIFETIME", "10m")
	v.SetDefault("DB_CONNECT_TIMEOUT", "5s")
	v.SetDefault("DB_STATEMENT_TIMEOUT_MS", 8000)

	v.SetDefault("AUDIT_OPERATION_TIMEOUT", "10s")
	v.SetDefault("THRESHOLD_CACHE_TTL", "10m")
}

// =======================
// ENV LOADER
// =======================

// LoadEnv reads .env (when present) into the process environment. On
// Railway the platform env is authoritative and .env is skipped.
func LoadEnv(files ...string) (loaded bool) {
	if strings.TrimSpace(os.Getenv("RAILWAY_ENVIRONMENT")) != "" {
		return false
	}
	return godotenv.Load(files...) == nil
}

// Load builds the config from env (after LoadEnv) with defaults applied.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppEnv:            v.GetString("APP_ENV"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		Port:              v.GetString("PORT"),
		CORSAllowOrigins:  splitList(v.GetString("CORS_ALLOW_ORIGINS")),
		OperationTimeout:  v.GetDuration("AUDIT_OPERATION_TIMEOUT"),
		RedisURL:          strings.TrimSpace(v.GetString("REDIS_URL")),
		ThresholdCacheTTL: v.GetDuration("THRESHOLD_CACHE_TTL"),
		DB: DBConfig{
			DSN:                strings.TrimSpace(v.GetString("DB_DSN")),
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetString("DB_PORT"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			Name:               v.GetString("DB_NAME"),
			SSLMode:            v.GetString("DB_SSLMODE"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxIdleTime:    v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
			ConnMaxLifetime:    v.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnectTimeout:     v.GetDuration("DB_CONNECT_TIMEOUT"),
			StatementTimeoutMS: v.GetInt("DB_STATEMENT_TIMEOUT_MS"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DB.DSN == "" && (c.DB.User == "" || c.DB.Host == "") {
		return fmt.Errorf("database not configured: set DB_DSN or DB_USER/DB_HOST")
	}
	if c.DB.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.DB.MaxOpenConns)
	}
	if c.OperationTimeout <= 0 {
		return fmt.Errorf("AUDIT_OPERATION_TIMEOUT must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// PostgresDSN builds the connection string. DB_DSN wins when set.
func (d DBConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	connectSecs := int(d.ConnectTimeout / time.Second)
	if connectSecs <= 0 {
		connectSecs = 5
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=foodaudit&connect_timeout=%d&options=-c%%20statement_timeout%%3D%d",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode, connectSecs, d.StatementTimeoutMS,
	)
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
