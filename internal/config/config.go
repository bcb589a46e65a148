package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// EnvDevelopment is the default runtime environment.
	EnvDevelopment = "development"
	// EnvProduction enables secure cookies and redacted server errors.
	EnvProduction = "production"

	// StorageDriverPostgres selects the pgx-backed repositories.
	StorageDriverPostgres = "postgres"
	// StorageDriverMemory selects the in-process store.
	StorageDriverMemory = "memory"

	defaultJWTSecret = "change-me-to-a-32-byte-secret"
)

// ErrMissingJWTSecret is returned when production runs without an explicit signing secret.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in production")

// Config aggregates runtime configuration for the task API.
// It is assembled once at startup and passed by value afterwards.
type Config struct {
	Env        string
	Server     ServerConfig
	Storage    StorageConfig
	Postgres   PostgresConfig
	MinIO      MinIOConfig
	Auth       AuthConfig
	Attachment AttachmentConfig
	Metrics    MetricsConfig
	Log        LogConfig
}

// IsProduction reports whether the process runs in a production context.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver        string
	RunMigrations bool
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// AuthConfig groups authentication-related settings.
type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	CookieTTL       time.Duration
	BcryptCost      int
	SecureCookies   bool
}

// AttachmentConfig limits task attachment uploads.
type AttachmentConfig struct {
	MaxBytes int64
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	env := strings.ToLower(getString("APP_ENV", EnvDevelopment))
	if env != EnvProduction {
		env = EnvDevelopment
	}

	cfg := Config{
		Env: env,
		Server: ServerConfig{
			Host:         getString("API_HOST", "0.0.0.0"),
			Port:         getInt("API_PORT", 8080),
			ReadTimeout:  getDuration("API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("API_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDuration("API_IDLE_TIMEOUT", 60*time.Second),
		},
		Storage: loadStorageConfig(),
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "gotask_app"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "gotask"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
			MaxConns: int32(getInt("POSTGRES_MAX_CONNS", 10)),
		},
		MinIO: MinIOConfig{
			Enabled:         getBool("MINIO_ENABLED", true),
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "gotask"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "task-attachments"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Auth: loadAuthConfig(env),
		Attachment: AttachmentConfig{
			MaxBytes: int64(getInt("ATTACHMENT_MAX_BYTES", 10*1024*1024)),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("METRICS_PATH", "/metrics"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getString("LOG_LEVEL", "info")),
		},
	}

	if cfg.IsProduction() {
		if _, ok := os.LookupEnv("JWT_SECRET"); !ok || cfg.Auth.JWTSecret == "" {
			return Config{}, ErrMissingJWTSecret
		}
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func loadStorageConfig() StorageConfig {
	driver := strings.ToLower(getString("STORAGE_DRIVER", StorageDriverPostgres))
	if driver != StorageDriverMemory {
		driver = StorageDriverPostgres
	}
	return StorageConfig{
		Driver:        driver,
		RunMigrations: getBool("RUN_MIGRATIONS", true),
	}
}

func loadAuthConfig(env string) AuthConfig {
	cost := getInt("BCRYPT_COST", 10)
	if cost < 4 || cost > 31 {
		cost = 10
	}

	accessTTL := getDuration("JWT_EXPIRE", time.Hour)

	return AuthConfig{
		JWTSecret:       getString("JWT_SECRET", defaultJWTSecret),
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: getDuration("JWT_REFRESH_EXPIRE", 7*24*time.Hour),
		CookieTTL:       getDuration("JWT_COOKIE_EXPIRE", accessTTL),
		BcryptCost:      cost,
		SecureCookies:   env == EnvProduction,
	}
}
