package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokshchadha/invoice-ocr/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "development", cfg.Server.Environment)

	assert.Equal(t, "invoices.db", cfg.DB.Path)
	assert.Equal(t, 1, cfg.DB.MaxOpen)
	assert.Equal(t, "db/migrations", cfg.DB.MigrationsPath)

	assert.Equal(t, int64(25), cfg.Upload.MaxFileSizeMB)

	assert.Equal(t, "gemini-1.5-flash", cfg.Analyzer.Gemini.DefaultModel)
	assert.Equal(t, "gpt-4o", cfg.Analyzer.OpenAI.DefaultModel)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Analyzer.Claude.DefaultModel)

	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)

	assert.Equal(t, "invoices", cfg.Batch.Dir)
	assert.Equal(t, "gemini", cfg.Batch.Provider)
	assert.Equal(t, "generic", cfg.Batch.DocumentType)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("INVOICEOCR_SERVER_PORT", ":9999")
	t.Setenv("INVOICEOCR_DB_PATH", "/tmp/test.db")
	t.Setenv("INVOICEOCR_ANALYZER_GEMINI_API_KEY", "secret-key")
	t.Setenv("INVOICEOCR_ANALYZER_OPENAI_DEFAULT_MODEL", "gpt-4o-mini")
	t.Setenv("INVOICEOCR_BATCH_PROVIDER", "openai")
	t.Setenv("INVOICEOCR_CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Port)
	assert.Equal(t, "/tmp/test.db", cfg.DB.Path)
	assert.Equal(t, "secret-key", cfg.Analyzer.Gemini.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Analyzer.OpenAI.DefaultModel)
	assert.Equal(t, "openai", cfg.Batch.Provider)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PlatformPortFallback(t *testing.T) {
	t.Setenv("PORT", "7777")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Port)
}

func TestLoad_ExplicitPortBeatsPlatformPort(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("INVOICEOCR_SERVER_PORT", ":8081")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Server.Port)
}

func TestDBConfig_DSN(t *testing.T) {
	d := &config.DBConfig{Path: "invoices.db", BusyTimeoutMS: 5000}
	assert.Equal(t, "file:invoices.db?_busy_timeout=5000&_foreign_keys=on", d.DSN())
}
