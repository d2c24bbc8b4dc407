package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load("catalog-service")
	require.NoError(t, err)

	assert.Equal(t, "catalog-service", cfg.ServiceName)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Server.IsProduction())
	assert.Equal(t, StorageLocal, cfg.Media.Backend)
	assert.Equal(t, "productos", cfg.Media.Collection)
	assert.Equal(t, 4, cfg.Images.Workers)
	assert.Equal(t, time.Hour, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, logger.Warn, cfg.DB.LogLevel)
	assert.False(t, cfg.Mail.Enabled())
}

func TestLoadProductionDefaultsToRemoteStorage(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PUBLIC_URL", "https://colchones.example.com/")

	cfg, err := Load("catalog-service")
	require.NoError(t, err)
	assert.True(t, cfg.Server.IsProduction())
	assert.Equal(t, StorageCloudinary, cfg.Media.Backend)
	assert.Equal(t, "https://colchones.example.com", cfg.Server.PublicURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_BACKEND", "LOCAL")
	t.Setenv("IMAGES_WORKERS", "8")
	t.Setenv("IMAGES_SCHEDULE", "@every 1h")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30m")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("LOG_FILE_ENABLE", "true")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("MAIL_NOTIFY_TO", "ventas@example.com")
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg, err := Load("catalog-service")
	require.NoError(t, err)
	assert.Equal(t, StorageLocal, cfg.Media.Backend)
	assert.Equal(t, 8, cfg.Images.Workers)
	assert.Equal(t, "@every 1h", cfg.Images.Schedule)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, logger.Silent, cfg.DB.LogLevel)
	assert.True(t, cfg.Log.FileEnable)
	assert.True(t, cfg.Mail.Enabled())
	assert.Equal(t, 587, cfg.Mail.Port)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "s3")

	_, err := Load("catalog-service")
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "catalog", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=catalog sslmode=disable", c.GetDSN())
}
