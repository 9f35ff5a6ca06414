package main

import (
	"fmt"
	"log"

	"github.com/mokshchadha/invoice-ocr/internal/analyzer"
	_ "github.com/mokshchadha/invoice-ocr/internal/analyzer/claude"
	_ "github.com/mokshchadha/invoice-ocr/internal/analyzer/gemini"
	_ "github.com/mokshchadha/invoice-ocr/internal/analyzer/openai"
	"github.com/mokshchadha/invoice-ocr/internal/config"
	"github.com/mokshchadha/invoice-ocr/internal/domain"
	"github.com/mokshchadha/invoice-ocr/internal/handler"
	"github.com/mokshchadha/invoice-ocr/internal/ingest"
	"github.com/mokshchadha/invoice-ocr/internal/port"
	"github.com/mokshchadha/invoice-ocr/internal/repository/sqlite"
	"github.com/mokshchadha/invoice-ocr/internal/router"
	"github.com/mokshchadha/invoice-ocr/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := sqlite.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := sqlite.EnsureSchema(db); err != nil {
		return err
	}

	// Initialize analyzers
	analyzers, err := buildAnalyzers(&cfg.Analyzer)
	if err != nil {
		return err
	}

	// Initialize repository and services
	analysisRepo := sqlite.NewAnalysisRepo(db)
	analysisSvc := service.NewAnalysisService(
		ingest.NewProcessor(), analyzers, analysisRepo, cfg.Upload.MaxFileSizeMB)

	// Initialize handlers
	analyzeH := handler.NewAnalyzeHandler(analysisSvc)
	analysisH := handler.NewAnalysisHandler(analysisSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, analyzeH, analysisH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func buildAnalyzers(cfg *config.AnalyzerConfig) (map[domain.Provider]port.DocumentAnalyzer, error) {
	analyzers := map[domain.Provider]port.DocumentAnalyzer{}
	for name, providerCfg := range map[domain.Provider]*config.ProviderConfig{
		domain.ProviderGemini: &cfg.Gemini,
		domain.ProviderOpenAI: &cfg.OpenAI,
		domain.ProviderClaude: &cfg.Claude,
	} {
		a, err := analyzer.New(name, providerCfg)
		if err != nil {
			return nil, fmt.Errorf("initializing %s analyzer: %w", name, err)
		}
		analyzers[name] = a
	}
	return analyzers, nil
}
