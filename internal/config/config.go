package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	LogLevel  string
	LogFormat string

	// Intake layout. The sms, orders and processed directories are
	// derived from BaseDir and created at startup.
	BaseDir string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr   string
	MetricsAddr string
}

var (
	ErrMissingDBHost       = errors.New("missing_database_host")
	ErrMissingDBCredential = errors.New("missing_database_credential")
)

// Load loads configuration from environment variables and .env file.
// It fails when the database endpoint or credential is absent so the
// process exits non-zero at startup instead of failing mid-import.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "cdp-importer"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		LogLevel:          strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(getenv("LOG_FORMAT", "json")),
		BaseDir:           getenv("IMPORT_BASE_DIR", "data-import"),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", ""),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "postgres"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "require"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 8),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),
		RedisAddr:         getenv("REDIS_ADDR", ""),
		MetricsAddr:       getenv("METRICS_ADDR", ""),
	}

	// Service-role credential preferred, lower-privilege one as fallback.
	cfg.DBPassword = getenv("DATABASE_SERVICE_PASSWORD", "")
	if cfg.DBPassword == "" {
		cfg.DBPassword = getenv("DATABASE_PASSWORD", "")
	}

	if cfg.DBHost == "" {
		return Config{}, ErrMissingDBHost
	}
	if cfg.DBPassword == "" {
		return Config{}, ErrMissingDBCredential
	}

	return cfg, nil
}

func (c Config) SMSDir() string       { return filepath.Join(c.BaseDir, "sms") }
func (c Config) OrdersDir() string    { return filepath.Join(c.BaseDir, "orders") }
func (c Config) ProcessedDir() string { return filepath.Join(c.BaseDir, "processed") }

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
