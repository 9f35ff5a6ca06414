// Command batch analyzes every PDF in a directory with the configured LLM
// provider and stores the results, skipping files already in the database.
// Usage: batch [directory]
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mokshchadha/invoice-ocr/internal/analyzer"
	_ "github.com/mokshchadha/invoice-ocr/internal/analyzer/claude"
	_ "github.com/mokshchadha/invoice-ocr/internal/analyzer/gemini"
	_ "github.com/mokshchadha/invoice-ocr/internal/analyzer/openai"
	"github.com/mokshchadha/invoice-ocr/internal/config"
	"github.com/mokshchadha/invoice-ocr/internal/domain"
	"github.com/mokshchadha/invoice-ocr/internal/ingest"
	"github.com/mokshchadha/invoice-ocr/internal/port"
	"github.com/mokshchadha/invoice-ocr/internal/repository/sqlite"
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
		return fmt.Errorf("loading config: %w", err)
	}

	dir := cfg.Batch.Dir
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("directory %q not found: %w", dir, err)
	}

	provider := domain.Provider(cfg.Batch.Provider)
	if !domain.ValidProviders[provider] {
		return fmt.Errorf("invalid batch provider: %s", cfg.Batch.Provider)
	}

	db, err := sqlite.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := sqlite.EnsureSchema(db); err != nil {
		return err
	}

	providerCfg := providerConfig(&cfg.Analyzer, provider)
	llm, err := analyzer.New(provider, providerCfg)
	if err != nil {
		return fmt.Errorf("initializing %s analyzer: %w", provider, err)
	}

	analysisRepo := sqlite.NewAnalysisRepo(db)
	analysisSvc := service.NewAnalysisService(
		ingest.NewProcessor(),
		map[domain.Provider]port.DocumentAnalyzer{provider: llm},
		analysisRepo,
		cfg.Upload.MaxFileSizeMB,
	)
	batch := service.NewBatchService(analysisSvc, analysisRepo, provider,
		domain.DocumentType(cfg.Batch.DocumentType))

	summary, err := batch.Run(context.Background(), dir)
	if err != nil {
		return err
	}

	fmt.Printf("Batch completed: %d found, %d processed, %d skipped, %d failed\n",
		summary.Found, summary.Processed, summary.Skipped, summary.Failed)
	return nil
}

func providerConfig(cfg *config.AnalyzerConfig, provider domain.Provider) *config.ProviderConfig {
	switch provider {
	case domain.ProviderOpenAI:
		return &cfg.OpenAI
	case domain.ProviderClaude:
		return &cfg.Claude
	default:
		return &cfg.Gemini
	}
}
