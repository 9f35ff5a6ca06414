package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Upload   UploadConfig
	Analyzer AnalyzerConfig
	CORS     CORSConfig
	Batch    BatchConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds SQLite connection settings.
type DBConfig struct {
	Path           string `mapstructure:"path"`
	BusyTimeoutMS  int    `mapstructure:"busy_timeout_ms"`
	MaxOpen        int    `mapstructure:"max_open"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// DSN returns the SQLite connection string for the mattn/go-sqlite3 driver.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", d.Path, d.BusyTimeoutMS)
}

// UploadConfig holds upload limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// ProviderConfig holds settings for a single LLM analyzer provider.
type ProviderConfig struct {
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// AnalyzerConfig holds LLM analyzer settings for every supported provider.
type AnalyzerConfig struct {
	Gemini ProviderConfig `mapstructure:"gemini"`
	OpenAI ProviderConfig `mapstructure:"openai"`
	Claude ProviderConfig `mapstructure:"claude"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// BatchConfig holds settings for the batch directory analyzer.
type BatchConfig struct {
	Dir          string `mapstructure:"dir"`
	Provider     string `mapstructure:"provider"`
	DocumentType string `mapstructure:"document_type"`
}

// Load reads configuration from environment variables with the INVOICEOCR_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INVOICEOCR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.path", "invoices.db")
	v.SetDefault("db.busy_timeout_ms", 5000)
	v.SetDefault("db.max_open", 1)
	v.SetDefault("db.migrations_path", "db/migrations")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 25)

	// Analyzer defaults
	v.SetDefault("analyzer.gemini.api_key", "")
	v.SetDefault("analyzer.gemini.default_model", "gemini-1.5-flash")
	v.SetDefault("analyzer.gemini.timeout_secs", 120)
	v.SetDefault("analyzer.openai.api_key", "")
	v.SetDefault("analyzer.openai.default_model", "gpt-4o")
	v.SetDefault("analyzer.openai.timeout_secs", 120)
	v.SetDefault("analyzer.claude.api_key", "")
	v.SetDefault("analyzer.claude.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("analyzer.claude.timeout_secs", 120)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Batch defaults
	v.SetDefault("batch.dir", "invoices")
	v.SetDefault("batch.provider", "gemini")
	v.SetDefault("batch.document_type", "generic")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "INVOICEOCR_SERVER_PORT",
		"server.read_timeout":           "INVOICEOCR_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "INVOICEOCR_SERVER_WRITE_TIMEOUT",
		"server.environment":            "INVOICEOCR_SERVER_ENVIRONMENT",
		"db.path":                       "INVOICEOCR_DB_PATH",
		"db.busy_timeout_ms":            "INVOICEOCR_DB_BUSY_TIMEOUT_MS",
		"db.max_open":                   "INVOICEOCR_DB_MAX_OPEN",
		"db.migrations_path":            "INVOICEOCR_DB_MIGRATIONS_PATH",
		"upload.max_file_size_mb":       "INVOICEOCR_UPLOAD_MAX_FILE_SIZE_MB",
		"analyzer.gemini.api_key":       "INVOICEOCR_ANALYZER_GEMINI_API_KEY",
		"analyzer.gemini.default_model": "INVOICEOCR_ANALYZER_GEMINI_DEFAULT_MODEL",
		"analyzer.gemini.timeout_secs":  "INVOICEOCR_ANALYZER_GEMINI_TIMEOUT_SECS",
		"analyzer.openai.api_key":       "INVOICEOCR_ANALYZER_OPENAI_API_KEY",
		"analyzer.openai.default_model": "INVOICEOCR_ANALYZER_OPENAI_DEFAULT_MODEL",
		"analyzer.openai.timeout_secs":  "INVOICEOCR_ANALYZER_OPENAI_TIMEOUT_SECS",
		"analyzer.claude.api_key":       "INVOICEOCR_ANALYZER_CLAUDE_API_KEY",
		"analyzer.claude.default_model": "INVOICEOCR_ANALYZER_CLAUDE_DEFAULT_MODEL",
		"analyzer.claude.timeout_secs":  "INVOICEOCR_ANALYZER_CLAUDE_TIMEOUT_SECS",
		"cors.allowed_origins":          "INVOICEOCR_CORS_ALLOWED_ORIGINS",
		"batch.dir":                     "INVOICEOCR_BATCH_DIR",
		"batch.provider":                "INVOICEOCR_BATCH_PROVIDER",
		"batch.document_type":           "INVOICEOCR_BATCH_DOCUMENT_TYPE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if INVOICEOCR_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVOICEOCR_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Path:           v.GetString("db.path"),
		BusyTimeoutMS:  v.GetInt("db.busy_timeout_ms"),
		MaxOpen:        v.GetInt("db.max_open"),
		MigrationsPath: v.GetString("db.migrations_path"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Analyzer = AnalyzerConfig{
		Gemini: ProviderConfig{
			APIKey:       v.GetString("analyzer.gemini.api_key"),
			DefaultModel: v.GetString("analyzer.gemini.default_model"),
			TimeoutSecs:  v.GetInt("analyzer.gemini.timeout_secs"),
		},
		OpenAI: ProviderConfig{
			APIKey:       v.GetString("analyzer.openai.api_key"),
			DefaultModel: v.GetString("analyzer.openai.default_model"),
			TimeoutSecs:  v.GetInt("analyzer.openai.timeout_secs"),
		},
		Claude: ProviderConfig{
			APIKey:       v.GetString("analyzer.claude.api_key"),
			DefaultModel: v.GetString("analyzer.claude.default_model"),
			TimeoutSecs:  v.GetInt("analyzer.claude.timeout_secs"),
		},
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Batch = BatchConfig{
		Dir:          v.GetString("batch.dir"),
		Provider:     v.GetString("batch.provider"),
		DocumentType: v.GetString("batch.document_type"),
	}

	return cfg, nil
}
