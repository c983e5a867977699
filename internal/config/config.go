// internal/config/config.go
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
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Tasks    TaskConfig
	Log      LogConfig
}

type ServerConfig struct {
	GRPCPort         string
	HTTPPort         string
	Environment      string
	EnableReflection bool
	AutoMigrate      bool
	SeedData         bool
	ShutdownTimeout  time.Duration
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

type JWTConfig struct {
	AccessSecret         string
	RefreshSecret        string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// RedisConfig is optional; an empty Addr disables every Redis-backed component
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	NotifyChannel string
}

type TaskConfig struct {
	// RequirePending rejects approve/reject on tasks that were already decided
	RequirePending bool
	NotifyTimeout  time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			GRPCPort:         getEnv("GRPC_PORT", "50051"),
			HTTPPort:         getEnv("HTTP_PORT", "8080"),
			Environment:      getEnv("ENVIRONMENT", "development"),
			EnableReflection: getEnvAsBool("ENABLE_REFLECTION", false),
			AutoMigrate:      getEnvAsBool("AUTO_MIGRATE", true),
			SeedData:         getEnvAsBool("SEED_DATA", true),
			ShutdownTimeout:  getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvAsInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "taskapproval"),
			SSLMode:    getEnv("DB_SSL_MODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "taskapproval.db"),
		},
		JWT: JWTConfig{
			AccessSecret:         getEnv("JWT_ACCESS_SECRET", getEnv("JWT_SECRET", "dev-access-secret-change-in-production")),
			RefreshSecret:        getEnv("JWT_REFRESH_SECRET", getEnv("JWT_SECRET", "dev-refresh-secret-change-in-production")),
			AccessTokenDuration:  getEnvAsDuration("JWT_ACCESS_TOKEN_DURATION", 8*time.Hour),
			RefreshTokenDuration: getEnvAsDuration("JWT_REFRESH_TOKEN_DURATION", 7*24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", ""),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvAsInt("REDIS_DB", 0),
			NotifyChannel: getEnv("NOTIFY_REDIS_CHANNEL", "task-events"),
		},
		Tasks: TaskConfig{
			RequirePending: getEnvAsBool("TASK_REQUIRE_PENDING", false),
			NotifyTimeout:  getEnvAsDuration("NOTIFY_TIMEOUT", 2*time.Second),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
	}, nil
}

// IsDevelopment reports whether the service runs in a development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development" || c.Server.Environment == "dev"
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production" || c.Server.Environment == "prod"
}

// RedisEnabled reports whether a Redis address was configured
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

// PostgresDSN builds a lib/pq connection string
func (c DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// ValidateConfig checks the loaded configuration for inconsistent values
func (c *Config) ValidateConfig() error {
	var errs []error

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}

	if c.Database.Driver == DriverSQLite && c.Database.SQLitePath == "" {
		errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
	}

	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("JWT secrets must not be empty"))
	}
	if c.IsProduction() && strings.HasPrefix(c.JWT.AccessSecret, "dev-") {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET must be set in production"))
	}
	if c.JWT.AccessTokenDuration <= 0 || c.JWT.RefreshTokenDuration <= 0 {
		errs = append(errs, errors.New("JWT token durations must be positive"))
	}

	if c.Tasks.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("NOTIFY_TIMEOUT must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unsupported LOG_FORMAT %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	// Try parsing as duration string (e.g., "15m", "24h")
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}

	return defaultValue
}
