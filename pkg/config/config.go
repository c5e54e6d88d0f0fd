// Package config loads application configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups the application configuration.
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	DB        DBConfig
	JWT       JWTConfig
	Log       LogConfig
	Invoicing InvoicingConfig
	Worker    WorkerConfig
}

// AppConfig is general application configuration.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig is the HTTP server configuration.
type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DBConfig is the PostgreSQL configuration. When DatabaseURL is set it
// wins over the individual fields.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
}

// ConnectionString returns the DSN to use.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig is the bearer token configuration.
type JWTConfig struct {
	Secret string
}

// LogConfig is the logging configuration.
type LogConfig struct {
	Level string // debug, info, warn, error
	JSON  bool
}

// InvoicingConfig holds invoice lifecycle tuning.
type InvoicingConfig struct {
	// RevertOnPartialVoid moves a PAID invoice back to PARTIAL when a
	// payment is voided. When false the void is rejected instead.
	RevertOnPartialVoid bool
}

// WorkerConfig is the background worker configuration.
type WorkerConfig struct {
	// ReconcileInterval is how often the stock ledger is checked for
	// drift and overdue invoices are swept.
	ReconcileInterval time.Duration
}

// Load reads configuration from environment variables. A .env file in
// the working directory is read first when present; env vars win.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // missing file is fine

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:  v.GetString("APP_ENV"),
			Name: v.GetString("APP_NAME"),
		},
		HTTP: HTTPConfig{
			Host:            v.GetString("HTTP_HOST"),
			Port:            v.GetInt("HTTP_PORT"),
			ReadTimeout:     v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("HTTP_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("HTTP_SHUTDOWN_TIMEOUT"),
		},
		DB: DBConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetInt("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			MaxConns:    v.GetInt32("DB_MAX_CONNS"),
			MinConns:    v.GetInt32("DB_MIN_CONNS"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			JSON:  v.GetBool("LOG_JSON"),
		},
		Invoicing: InvoicingConfig{
			RevertOnPartialVoid: v.GetBool("INVOICE_REVERT_ON_VOID"),
		},
		Worker: WorkerConfig{
			ReconcileInterval: v.GetDuration("WORKER_RECONCILE_INTERVAL"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "stockroom")

	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("HTTP_READ_TIMEOUT", 15*time.Second)
	v.SetDefault("HTTP_WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "stockroom")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", true)

	v.SetDefault("INVOICE_REVERT_ON_VOID", true)

	v.SetDefault("WORKER_RECONCILE_INTERVAL", 15*time.Minute)
}
