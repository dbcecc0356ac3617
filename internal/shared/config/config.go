package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Provider  ProviderConfig
	Webhook   WebhookConfig
	JWT       JWTConfig
	Scheduler SchedulerConfig
	TLS       TLSConfig
	Firebase  FirebaseConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ProviderConfig configures the upstream financial data provider.
type ProviderConfig struct {
	BaseURL        string
	ClientID       string
	Secret         string
	FetchTimeout   time.Duration
	SyncWindowDays int
}

// WebhookConfig configures inbound provider webhooks. An empty secret
// disables the endpoint rather than accepting unsigned deliveries.
type WebhookConfig struct {
	Secret string
}

type JWTConfig struct {
	Secret string
}

type SchedulerConfig struct {
	Enabled       bool
	ScheduleTimes []string
	WorkerCount   int
	JobDelay      time.Duration
	QueueSize     int
	RunOnStartup  bool
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type FirebaseConfig struct {
	CredentialsFile string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
}

// Load reads configuration from the environment. Every key has a default
// except the secrets, which are validated below.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("ALLOWED_HOSTS", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "fintrack")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "fintrack")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("PROVIDER_BASE_URL", "https://sandbox.provider.example.com")
	v.SetDefault("PROVIDER_CLIENT_ID", "")
	v.SetDefault("PROVIDER_SECRET", "")
	v.SetDefault("PROVIDER_FETCH_TIMEOUT", "10s")
	v.SetDefault("PROVIDER_SYNC_WINDOW_DAYS", 30)

	v.SetDefault("WEBHOOK_SECRET", "")
	v.SetDefault("JWT_SECRET", "")

	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("SCHEDULER_TIMES", "05:00,10:00,14:00,20:00")
	v.SetDefault("SCHEDULER_WORKERS", 5)
	v.SetDefault("SCHEDULER_JOB_DELAY", "1s")
	v.SetDefault("SCHEDULER_QUEUE_SIZE", 100)
	v.SetDefault("SCHEDULER_RUN_ON_STARTUP", false)

	v.SetDefault("TLS_ENABLED", false)
	v.SetDefault("TLS_CERT_PATH", "")
	v.SetDefault("TLS_KEY_PATH", "")
	v.SetDefault("TLS_REDIRECT_HTTP", false)

	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "fintrack-api")
	v.SetDefault("OTEL_ENVIRONMENT", "development")
	v.SetDefault("OTEL_EXPORTER_ENDPOINT", "localhost:4318")
	v.SetDefault("OTEL_METRICS_PORT", "9090")

	fetchTimeout, err := time.ParseDuration(v.GetString("PROVIDER_FETCH_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_FETCH_TIMEOUT: %w", err)
	}
	jobDelay, err := time.ParseDuration(v.GetString("SCHEDULER_JOB_DELAY"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_JOB_DELAY: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Host:         v.GetString("HOST"),
			AllowedHosts: splitList(v.GetString("ALLOWED_HOSTS")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Provider: ProviderConfig{
			BaseURL:        v.GetString("PROVIDER_BASE_URL"),
			ClientID:       v.GetString("PROVIDER_CLIENT_ID"),
			Secret:         v.GetString("PROVIDER_SECRET"),
			FetchTimeout:   fetchTimeout,
			SyncWindowDays: v.GetInt("PROVIDER_SYNC_WINDOW_DAYS"),
		},
		Webhook: WebhookConfig{
			Secret: v.GetString("WEBHOOK_SECRET"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       v.GetBool("SCHEDULER_ENABLED"),
			ScheduleTimes: splitList(v.GetString("SCHEDULER_TIMES")),
			WorkerCount:   v.GetInt("SCHEDULER_WORKERS"),
			JobDelay:      jobDelay,
			QueueSize:     v.GetInt("SCHEDULER_QUEUE_SIZE"),
			RunOnStartup:  v.GetBool("SCHEDULER_RUN_ON_STARTUP"),
		},
		TLS: TLSConfig{
			Enabled:      v.GetBool("TLS_ENABLED"),
			CertPath:     v.GetString("TLS_CERT_PATH"),
			KeyPath:      v.GetString("TLS_KEY_PATH"),
			RedirectHTTP: v.GetBool("TLS_REDIRECT_HTTP"),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: v.GetString("FIREBASE_CREDENTIALS_FILE"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      v.GetBool("OTEL_ENABLED"),
			ServiceName:  v.GetString("OTEL_SERVICE_NAME"),
			Environment:  v.GetString("OTEL_ENVIRONMENT"),
			OTLPEndpoint: v.GetString("OTEL_EXPORTER_ENDPOINT"),
			MetricsPort:  v.GetString("OTEL_METRICS_PORT"),
		},
	}

	// Validate required fields
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Provider.SyncWindowDays <= 0 {
		return nil, fmt.Errorf("PROVIDER_SYNC_WINDOW_DAYS must be positive")
	}

	// Validate TLS configuration
	if cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" {
			return nil, fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if cfg.TLS.KeyPath == "" {
			return nil, fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
