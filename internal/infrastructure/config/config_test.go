package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"APSVC_APP_NAME":                os.Getenv("APSVC_APP_NAME"),
		"APSVC_APP_ENV":                 os.Getenv("APSVC_APP_ENV"),
		"APSVC_APP_PORT":                os.Getenv("APSVC_APP_PORT"),
		"APSVC_DATABASE_HOST":           os.Getenv("APSVC_DATABASE_HOST"),
		"APSVC_DATABASE_PORT":           os.Getenv("APSVC_DATABASE_PORT"),
		"APSVC_DATABASE_USER":           os.Getenv("APSVC_DATABASE_USER"),
		"APSVC_DATABASE_PASSWORD":       os.Getenv("APSVC_DATABASE_PASSWORD"),
		"APSVC_DATABASE_DBNAME":         os.Getenv("APSVC_DATABASE_DBNAME"),
		"APSVC_DATABASE_SSLMODE":        os.Getenv("APSVC_DATABASE_SSLMODE"),
		"APSVC_DATABASE_MAX_OPEN_CONNS": os.Getenv("APSVC_DATABASE_MAX_OPEN_CONNS"),
		"APSVC_DATABASE_MAX_IDLE_CONNS": os.Getenv("APSVC_DATABASE_MAX_IDLE_CONNS"),
		"APSVC_PAYABLE_DEFAULT_CREDIT_DAYS": os.Getenv("APSVC_PAYABLE_DEFAULT_CREDIT_DAYS"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "ap-service", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "ap_service", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 30, cfg.Payable.DefaultCreditDays)
		assert.Equal(t, 24*time.Hour, cfg.Payable.IdempotencyTTL)
	})

	t.Run("loads values from environment variables with APSVC prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("APSVC_APP_NAME", "test-app")
		os.Setenv("APSVC_APP_ENV", "testing")
		os.Setenv("APSVC_APP_PORT", "9000")
		os.Setenv("APSVC_DATABASE_HOST", "testdb.local")
		os.Setenv("APSVC_DATABASE_PORT", "5433")
		os.Setenv("APSVC_DATABASE_USER", "testuser")
		os.Setenv("APSVC_DATABASE_PASSWORD", "testpass")
		os.Setenv("APSVC_DATABASE_DBNAME", "testdb")
		os.Setenv("APSVC_DATABASE_SSLMODE", "require")
		os.Setenv("APSVC_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("APSVC_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("APSVC_PAYABLE_DEFAULT_CREDIT_DAYS", "45")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, 45, cfg.Payable.DefaultCreditDays)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("APSVC_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("APSVC_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("APSVC_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("APSVC_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"APSVC_APP_ENV":           os.Getenv("APSVC_APP_ENV"),
		"APSVC_DATABASE_PASSWORD": os.Getenv("APSVC_DATABASE_PASSWORD"),
		"APSVC_DATABASE_SSLMODE":  os.Getenv("APSVC_DATABASE_SSLMODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("APSVC_APP_ENV", "production")
		os.Setenv("APSVC_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("APSVC_APP_ENV", "production")
		os.Setenv("APSVC_DATABASE_PASSWORD", "secure-password")
		os.Setenv("APSVC_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		os.Setenv("APSVC_APP_ENV", "production")
		os.Setenv("APSVC_DATABASE_PASSWORD", "secure-password")
		os.Setenv("APSVC_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestLoad_RecognitionValidation(t *testing.T) {
	keys := []string{
		"APSVC_RECOGNITION_ENABLED",
		"APSVC_RECOGNITION_PROJECT_ID",
		"APSVC_RECOGNITION_PROCESSOR_ID",
	}
	original := map[string]string{}
	for _, k := range keys {
		original[k] = os.Getenv(k)
	}
	defer func() {
		for k, v := range original {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	t.Run("requires project and processor when enabled", func(t *testing.T) {
		for _, k := range keys {
			os.Unsetenv(k)
		}
		os.Setenv("APSVC_RECOGNITION_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recognition.project_id is required")
	})

	t.Run("disabled recognition needs no credentials", func(t *testing.T) {
		for _, k := range keys {
			os.Unsetenv(k)
		}

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Recognition.Enabled)
		assert.Equal(t, "us", cfg.Recognition.Location)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}
