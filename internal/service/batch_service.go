package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/mokshchadha/invoice-ocr/internal/domain"
	"github.com/mokshchadha/invoice-ocr/internal/port"
)

// BatchSummary reports the outcome of a batch run.
type BatchSummary struct {
	Found     int `json:"found"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// BatchService analyzes every PDF in a directory sequentially and stores the
// results, skipping files that were already processed.
type BatchService struct {
	svc          AnalysisService
	repo         port.AnalysisRepository
	provider     domain.Provider
	documentType domain.DocumentType
}

// NewBatchService creates a BatchService.
func NewBatchService(svc AnalysisService, repo port.AnalysisRepository, provider domain.Provider, documentType domain.DocumentType) *BatchService {
	if documentType == "" {
		documentType = domain.DocTypeGeneric
	}
	return &BatchService{
		svc:          svc,
		repo:         repo,
		provider:     provider,
		documentType: documentType,
	}
}

// Run processes dir. Analysis failures are recorded as {"error": ...} rows so
// the run is resumable; storage failures are logged and the loop continues.
func (b *BatchService) Run(ctx context.Context, dir string) (*BatchSummary, error) {
	pattern := filepath.Join(dir, "*.pdf")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", pattern, err)
	}
	sort.Strings(paths)

	summary := &BatchSummary{Found: len(paths)}
	log.Printf("batchService.Run: found %d PDF files in %s", len(paths), dir)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		fileName := filepath.Base(path)

		exists, err := b.repo.Exists(ctx, fileName)
		if err != nil {
			return summary, fmt.Errorf("checking %s: %w", fileName, err)
		}
		if exists {
			log.Printf("batchService.Run: [%d/%d] skipping %s (already processed)", i+1, len(paths), fileName)
			summary.Skipped++
			continue
		}

		log.Printf("batchService.Run: [%d/%d] processing %s", i+1, len(paths), fileName)

		if err := b.processFile(ctx, path, fileName); err != nil {
			log.Printf("batchService.Run: [%d/%d] error processing %s: %v", i+1, len(paths), fileName, err)
			summary.Failed++
			continue
		}
		summary.Processed++
	}

	log.Printf("batchService.Run: done (processed=%d skipped=%d failed=%d)",
		summary.Processed, summary.Skipped, summary.Failed)
	return summary, nil
}

func (b *BatchService) processFile(ctx context.Context, path, fileName string) error {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	_, err = b.svc.AnalyzeAndStore(ctx, &AnalyzeRequest{
		FileBytes:    fileBytes,
		FileName:     fileName,
		ContentType:  "application/pdf",
		Provider:     b.provider,
		DocumentType: b.documentType,
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrAnalysisExists) {
		return err
	}

	// Keep the failure on record so reruns do not hammer the provider with
	// the same broken file.
	errJSON, _ := json.Marshal(map[string]string{"error": err.Error()})
	record := &domain.Analysis{
		FileName:     fileName,
		DocumentType: b.documentType,
		AnalysisJSON: errJSON,
	}
	if createErr := b.repo.Create(ctx, record); createErr != nil {
		return fmt.Errorf("storing error record: %w (analysis error: %v)", createErr, err)
	}
	return err
}
