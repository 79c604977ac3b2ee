package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	BaseURL               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines session and magic link parameters.
type AuthConfig struct {
	JWTSecret              string
	SessionTTLMinutes      int
	MagicLinkTTLMinutes    int
	MagicLinkMaxRequests   int
	MagicLinkWindowMinutes int
	CookieSecure           bool
}

// NotificationConfig holds SMTP settings and fan-out pool sizing.
type NotificationConfig struct {
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	SMTPEncryption     string
	EmailFrom          string
	Workers            int
	QueueSize          int
	SendTimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	host := getEnv("APP_HOST", "0.0.0.0")
	port := getEnv("APP_PORT", "5003")

	smtpUser := os.Getenv("SMTP_USERNAME")

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "favorite-board"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  host,
			Port:                  port,
			Version:               getEnv("APP_VERSION", "dev"),
			BaseURL:               strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:"+port), "/"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:              getEnv("AUTH_JWT_SECRET", "dev-secret"),
			SessionTTLMinutes:      getEnvAsInt("AUTH_SESSION_TTL_MINUTES", 7*24*60),
			MagicLinkTTLMinutes:    getEnvAsInt("AUTH_MAGIC_LINK_TTL_MINUTES", 60),
			MagicLinkMaxRequests:   getEnvAsInt("AUTH_MAGIC_LINK_MAX_REQUESTS", 5),
			MagicLinkWindowMinutes: getEnvAsInt("AUTH_MAGIC_LINK_WINDOW_MINUTES", 15),
			CookieSecure:           getEnvAsBool("AUTH_COOKIE_SECURE", false),
		},
		Notification: NotificationConfig{
			SMTPHost:           getEnv("SMTP_SERVER", "smtp.fastmail.com"),
			SMTPPort:           smtpPort,
			SMTPUsername:       smtpUser,
			SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
			SMTPEncryption:     getEnv("SMTP_ENCRYPTION", "STARTTLS"),
			EmailFrom:          getEnv("FROM_EMAIL", smtpUser),
			Workers:            getEnvAsInt("NOTIFY_WORKERS", 8),
			QueueSize:          getEnvAsInt("NOTIFY_QUEUE_SIZE", 256),
			SendTimeoutSeconds: getEnvAsInt("NOTIFY_SEND_TIMEOUT_SECONDS", 15),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// MagicLinkTTL is the lifetime of an issued login token.
func (a AuthConfig) MagicLinkTTL() time.Duration {
	if a.MagicLinkTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.MagicLinkTTLMinutes) * time.Minute
}

// MagicLinkWindow is the throttle window for login link requests.
func (a AuthConfig) MagicLinkWindow() time.Duration {
	if a.MagicLinkWindowMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(a.MagicLinkWindowMinutes) * time.Minute
}

// SMTPConfigured reports whether credentials for real delivery are present.
func (n NotificationConfig) SMTPConfigured() bool {
	return n.SMTPUsername != "" && n.SMTPPassword != ""
}

// SendTimeout bounds a single delivery attempt.
func (n NotificationConfig) SendTimeout() time.Duration {
	if n.SendTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(n.SendTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
