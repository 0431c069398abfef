package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.BodyLimitMB)

	assert.Equal(t, "media", cfg.Storage.Bucket)
	assert.Equal(t, "s3v4", cfg.Storage.SignatureVersion)
	assert.Equal(t, "public-read-write", cfg.Storage.DefaultACL)
	assert.Equal(t, 5, cfg.Storage.RetryAttempts)
	assert.Equal(t, 400*time.Millisecond, cfg.Storage.RetryDelay)
	assert.Equal(t, 1000, cfg.Storage.PageSize)
	assert.False(t, cfg.Storage.PathStyle)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.True(t, cfg.Database.AutoMigrate)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("STORAGE_BUCKET", "uploads")
	t.Setenv("STORAGE_SIGNATURE_VERSION", "s3v2")
	t.Setenv("STORAGE_PATH_STYLE", "true")
	t.Setenv("STORAGE_RETRY_DELAY", "1s")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("SERVER_API_KEY", "secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "uploads", cfg.Storage.Bucket)
	assert.Equal(t, "s3v2", cfg.Storage.SignatureVersion)
	assert.True(t, cfg.Storage.PathStyle)
	assert.Equal(t, time.Second, cfg.Storage.RetryDelay)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "secret", cfg.Server.ApiKey)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STORAGE_PAGE_SIZE=50\nLOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("STORAGE_PAGE_SIZE")
		os.Unsetenv("LOG_LEVEL")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Storage.PageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"SignatureVersion", "STORAGE_SIGNATURE_VERSION", "s3v9"},
		{"RetryAttempts", "STORAGE_RETRY_ATTEMPTS", "0"},
		{"Driver", "DATABASE_DRIVER", "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := LoadConfig(t.TempDir())
			assert.Error(t, err)
		})
	}
}
