package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.HTTPPort)
	assert.Equal(t, "50051", cfg.Server.GRPCPort)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.False(t, cfg.Tasks.RequirePending)
	assert.Equal(t, 2*time.Second, cfg.Tasks.NotifyTimeout)
	assert.False(t, cfg.RedisEnabled())
	assert.True(t, cfg.IsDevelopment())
	assert.NoError(t, cfg.ValidateConfig())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/tasks.db")
	t.Setenv("TASK_REQUIRE_PENDING", "true")
	t.Setenv("JWT_ACCESS_TOKEN_DURATION", "30m")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/tasks.db", cfg.Database.SQLitePath)
	assert.True(t, cfg.Tasks.RequirePending)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTokenDuration)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.ValidateConfig())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("AUTO_MIGRATE", "maybe")
	t.Setenv("NOTIFY_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.True(t, cfg.Server.AutoMigrate)
	assert.Equal(t, 2*time.Second, cfg.Tasks.NotifyTimeout)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: "unsupported DB_DRIVER",
		},
		{
			name:    "empty secret",
			mutate:  func(c *Config) { c.JWT.AccessSecret = "" },
			wantErr: "JWT secrets must not be empty",
		},
		{
			name:    "dev secret in production",
			mutate:  func(c *Config) { c.Server.Environment = "production" },
			wantErr: "JWT_ACCESS_SECRET must be set in production",
		},
		{
			name:    "negative duration",
			mutate:  func(c *Config) { c.JWT.RefreshTokenDuration = -time.Second },
			wantErr: "durations must be positive",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "unsupported LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.ValidateConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=taskapproval sslmode=disable",
		cfg.Database.PostgresDSN(),
	)
}
