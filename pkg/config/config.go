// Package config loads service configuration from the environment and an
// optional .env/config file through viper. Environment variables win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config groups the service configuration.
type Config struct {
	App    AppConfig
	HTTP   HTTPConfig
	DB     DBConfig
	JWT    JWTConfig
	Worker WorkerConfig
	Notify NotifyConfig
}

// AppConfig holds general settings.
type AppConfig struct {
	Env      string // development, staging, production
	LogLevel string
	// StorageDriver is "postgres" or "memory".
	StorageDriver string
}

// IsDevelopment reports whether the service runs in development mode.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// HTTPConfig holds the listener settings.
type HTTPConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// Addr returns host:port.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DBConfig holds PostgreSQL settings. DatabaseURL, when set, wins over the parts.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string

	MaxConns         int32
	MinConns         int32
	StatementTimeout time.Duration
}

// ConnectionString returns DatabaseURL or a DSN built from the parts.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// JWTConfig holds token settings. Auth is off unless Enabled.
type JWTConfig struct {
	Enabled bool
	Secret  string
	Issuer  string
	TTL     time.Duration
}

// WorkerConfig holds the background worker schedule.
type WorkerConfig struct {
	Interval time.Duration
}

// NotifyConfig holds the notification channel settings.
// An empty WebhookURL leaves only the log channel.
type NotifyConfig struct {
	WebhookURL       string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Load reads configuration from the environment and, when present,
// .env or config.env in the working directory.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigType("env")
	for _, name := range []string{".env", "config.env"} {
		v.SetConfigFile(name)
		if err := v.MergeInConfig(); err != nil && !isMissingFile(err) {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:           v.GetString("APP_ENV"),
			LogLevel:      v.GetString("LOG_LEVEL"),
			StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		},
		HTTP: HTTPConfig{
			Host:            v.GetString("HTTP_HOST"),
			Port:            v.GetInt("HTTP_PORT"),
			ShutdownTimeout: v.GetDuration("HTTP_SHUTDOWN_TIMEOUT"),
		},
		DB: DBConfig{
			DatabaseURL:      v.GetString("DATABASE_URL"),
			Host:             v.GetString("DB_HOST"),
			Port:             v.GetInt("DB_PORT"),
			User:             v.GetString("DB_USER"),
			Password:         v.GetString("DB_PASSWORD"),
			Name:             v.GetString("DB_NAME"),
			SSLMode:          v.GetString("DB_SSLMODE"),
			MaxConns:         v.GetInt32("DB_MAX_CONNS"),
			MinConns:         v.GetInt32("DB_MIN_CONNS"),
			StatementTimeout: v.GetDuration("TX_STATEMENT_TIMEOUT"),
		},
		JWT: JWTConfig{
			Enabled: v.GetBool("AUTH_ENABLED"),
			Secret:  v.GetString("JWT_SECRET"),
			Issuer:  v.GetString("JWT_ISSUER"),
			TTL:     v.GetDuration("JWT_TTL"),
		},
		Worker: WorkerConfig{
			Interval: v.GetDuration("WORKER_INTERVAL"),
		},
		Notify: NotifyConfig{
			WebhookURL:       v.GetString("NOTIFY_WEBHOOK_URL"),
			Timeout:          v.GetDuration("NOTIFY_TIMEOUT"),
			FailureThreshold: v.GetUint32("NOTIFY_FAILURE_THRESHOLD"),
			OpenTimeout:      v.GetDuration("NOTIFY_OPEN_TIMEOUT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.App.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.App.StorageDriver)
	}
	if c.JWT.Enabled && c.JWT.Secret == "" {
		return fmt.Errorf("config: JWT_SECRET is required when AUTH_ENABLED is set")
	}
	if c.Worker.Interval <= 0 {
		return fmt.Errorf("config: WORKER_INTERVAL must be positive")
	}
	if c.DB.MinConns > c.DB.MaxConns {
		return fmt.Errorf("config: DB_MIN_CONNS exceeds DB_MAX_CONNS")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)

	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second)

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "stockledger")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 25)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("TX_STATEMENT_TIMEOUT", 30*time.Second)

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "stockledger")
	v.SetDefault("JWT_TTL", 15*time.Minute)

	v.SetDefault("WORKER_INTERVAL", time.Hour)

	v.SetDefault("NOTIFY_WEBHOOK_URL", "")
	v.SetDefault("NOTIFY_TIMEOUT", 5*time.Second)
	v.SetDefault("NOTIFY_FAILURE_THRESHOLD", 5)
	v.SetDefault("NOTIFY_OPEN_TIMEOUT", 30*time.Second)
}

func isMissingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
