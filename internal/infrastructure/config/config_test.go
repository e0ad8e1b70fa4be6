package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "autocare-platform", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "autocare", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5*time.Minute, cfg.Agent.SyncInterval)
		assert.Equal(t, 24*time.Hour, cfg.Agent.CacheTTL)
		assert.Equal(t, 64, cfg.Broadcast.SendBuffer)
		assert.Equal(t, "local", cfg.Storage.Driver)
	})

	t.Run("loads values from environment variables with AUTOCARE prefix", func(t *testing.T) {
		t.Setenv("AUTOCARE_APP_NAME", "test-app")
		t.Setenv("AUTOCARE_APP_PORT", "9000")
		t.Setenv("AUTOCARE_DATABASE_DRIVER", "sqlite")
		t.Setenv("AUTOCARE_DATABASE_PATH", "/tmp/test.db")
		t.Setenv("AUTOCARE_AGENT_DEVICE_ID", "till-7")
		t.Setenv("AUTOCARE_AGENT_SYNC_INTERVAL", "1m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "/tmp/test.db", cfg.Database.DSN())
		assert.Equal(t, "till-7", cfg.Agent.DeviceID)
		assert.Equal(t, time.Minute, cfg.Agent.SyncInterval)
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		t.Setenv("AUTOCARE_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects too short sync interval", func(t *testing.T) {
		t.Setenv("AUTOCARE_AGENT_SYNC_INTERVAL", "2s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "agent.sync_interval")
	})
}

func TestValidate_Production(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.App.Env = "production"
		applyDefaults(cfg)
		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		cfg.Database.SSLMode = "require"
		return cfg
	}

	t.Run("valid production config", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("short jwt secret", func(t *testing.T) {
		cfg := base()
		cfg.JWT.Secret = "short"
		assert.ErrorContains(t, cfg.validate(), "jwt.secret")
	})

	t.Run("sslmode disabled", func(t *testing.T) {
		cfg := base()
		cfg.Database.SSLMode = "disable"
		assert.ErrorContains(t, cfg.validate(), "sslmode")
	})

	t.Run("wildcard cors", func(t *testing.T) {
		cfg := base()
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.ErrorContains(t, cfg.validate(), "cors_allow_origins")
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Driver = "s3"
		assert.ErrorContains(t, cfg.validate(), "storage.bucket")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Driver:   DriverPostgres,
		Host:     "db",
		Port:     5432,
		User:     "app",
		Password: "p@ss word",
		DBName:   "autocare",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://app:p%40ss%20word@db:5432/autocare?sslmode=disable", d.DSN())
}
