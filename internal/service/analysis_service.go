package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx/types"

	"github.com/mokshchadha/invoice-ocr/internal/domain"
	"github.com/mokshchadha/invoice-ocr/internal/port"
)

// AnalyzeRequest is the DTO for a single-document analysis.
type AnalyzeRequest struct {
	FileBytes    []byte
	FileName     string
	ContentType  string
	Provider     domain.Provider
	DocumentType domain.DocumentType
	Question     string
}

// AnalysisResult is the outcome of analyzing one document.
type AnalysisResult struct {
	FileName     string              `json:"file_name"`
	FileType     domain.FileType     `json:"file_type"`
	DocumentType domain.DocumentType `json:"document_type"`
	Provider     domain.Provider     `json:"provider"`
	ModelUsed    string              `json:"model_used"`
	PageCount    int                 `json:"page_count"`
	Analysis     json.RawMessage     `json:"analysis"`
	RawFallback  bool                `json:"raw_fallback"`
}

// ListRequest selects and orders stored analyses.
type ListRequest struct {
	Query  string
	Sort   string // "recent" (default), "file_name", "amount"
	Offset int
	Limit  int
}

// AnalysisService defines the document analysis contract.
type AnalysisService interface {
	Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalysisResult, error)
	AnalyzeAndStore(ctx context.Context, req *AnalyzeRequest) (*domain.Analysis, error)
	GetByID(ctx context.Context, id int64) (*domain.Analysis, error)
	GetByFileName(ctx context.Context, fileName string) (*domain.Analysis, error)
	List(ctx context.Context, req *ListRequest) ([]domain.Analysis, int, error)
	ListAll(ctx context.Context) ([]domain.Analysis, error)
	Preview(ctx context.Context, fileBytes []byte, maxPages int) ([]domain.PagePreview, error)
}

type analysisService struct {
	processor    port.DocumentProcessor
	analyzers    map[domain.Provider]port.DocumentAnalyzer
	repo         port.AnalysisRepository
	maxFileBytes int64
}

// NewAnalysisService creates an AnalysisService implementation.
func NewAnalysisService(
	processor port.DocumentProcessor,
	analyzers map[domain.Provider]port.DocumentAnalyzer,
	repo port.AnalysisRepository,
	maxFileSizeMB int64,
) AnalysisService {
	return &analysisService{
		processor:    processor,
		analyzers:    analyzers,
		repo:         repo,
		maxFileBytes: maxFileSizeMB * 1024 * 1024,
	}
}

func (s *analysisService) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalysisResult, error) {
	if len(req.FileBytes) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if s.maxFileBytes > 0 && int64(len(req.FileBytes)) > s.maxFileBytes {
		return nil, domain.ErrFileTooLarge
	}

	provider, err := s.analyzerFor(req.Provider)
	if err != nil {
		return nil, err
	}

	docType := req.DocumentType
	if docType == "" {
		docType = domain.DocTypeGeneric
	}

	doc, err := s.processor.Process(ctx, req.FileBytes, req.ContentType)
	if err != nil {
		return nil, err
	}

	log.Printf("analysisService.Analyze: %s (%s, %d pages) via %s as %s",
		req.FileName, doc.FileType, doc.PageCount, req.Provider, docType)

	out, err := provider.Analyze(ctx, port.AnalyzeInput{
		Text:             doc.Text,
		PageImage:        doc.PageImage,
		ImageContentType: doc.ImageContentType,
		DocumentType:     docType,
		Question:         req.Question,
	})
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", req.FileName, err)
	}

	result := &AnalysisResult{
		FileName:     req.FileName,
		FileType:     doc.FileType,
		DocumentType: docType,
		Provider:     req.Provider,
		ModelUsed:    out.ModelUsed,
		PageCount:    doc.PageCount,
		Analysis:     out.Analysis,
	}
	result.RawFallback = domain.IsRawFallback(out.Analysis)
	return result, nil
}

func (s *analysisService) AnalyzeAndStore(ctx context.Context, req *AnalyzeRequest) (*domain.Analysis, error) {
	result, err := s.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	a := &domain.Analysis{
		FileName:     req.FileName,
		DocumentType: result.DocumentType,
		ModelUsed:    result.ModelUsed,
		AnalysisJSON: types.JSONText(result.Analysis),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *analysisService) GetByID(ctx context.Context, id int64) (*domain.Analysis, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *analysisService) GetByFileName(ctx context.Context, fileName string) (*domain.Analysis, error) {
	return s.repo.GetByFileName(ctx, fileName)
}

func (s *analysisService) List(ctx context.Context, req *ListRequest) ([]domain.Analysis, int, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}

	switch req.Sort {
	case "", "recent":
		if req.Query != "" {
			return s.repo.Search(ctx, req.Query, req.Offset, limit)
		}
		return s.repo.List(ctx, req.Offset, limit)
	case "file_name", "amount":
		// In-memory ordering: these sorts depend on data the store cannot
		// order by (the amount lives inside the analysis JSON).
		all, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, 0, err
		}
		filtered := filterByFileName(all, req.Query)
		if req.Sort == "file_name" {
			sort.SliceStable(filtered, func(i, j int) bool {
				return strings.ToLower(filtered[i].FileName) < strings.ToLower(filtered[j].FileName)
			})
		} else {
			sortByAmount(filtered)
		}
		total := len(filtered)
		return paginate(filtered, req.Offset, limit), total, nil
	default:
		return nil, 0, fmt.Errorf("unknown sort order: %s", req.Sort)
	}
}

func (s *analysisService) ListAll(ctx context.Context) ([]domain.Analysis, error) {
	return s.repo.ListAll(ctx)
}

func (s *analysisService) Preview(ctx context.Context, fileBytes []byte, maxPages int) ([]domain.PagePreview, error) {
	return s.processor.RenderPages(ctx, fileBytes, maxPages)
}

func (s *analysisService) analyzerFor(name domain.Provider) (port.DocumentAnalyzer, error) {
	a, ok := s.analyzers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}
	return a, nil
}

func filterByFileName(analyses []domain.Analysis, query string) []domain.Analysis {
	if query == "" {
		return analyses
	}
	q := strings.ToLower(query)
	var out []domain.Analysis
	for _, a := range analyses {
		if strings.Contains(strings.ToLower(a.FileName), q) {
			out = append(out, a)
		}
	}
	return out
}

func paginate(analyses []domain.Analysis, offset, limit int) []domain.Analysis {
	if offset >= len(analyses) {
		return nil
	}
	end := offset + limit
	if end > len(analyses) {
		end = len(analyses)
	}
	return analyses[offset:end]
}

// sortByAmount orders analyses by total amount descending; records without a
// recognizable amount sort last.
func sortByAmount(analyses []domain.Analysis) {
	sort.SliceStable(analyses, func(i, j int) bool {
		ai, iok := ExtractAmount(analyses[i].AnalysisJSON)
		aj, jok := ExtractAmount(analyses[j].AnalysisJSON)
		if iok != jok {
			return iok
		}
		return ai > aj
	})
}

// amountKeys are the analysis JSON keys checked for a document total,
// in priority order.
var amountKeys = []string{"totalAmount", "total_amount", "amount", "total"}

// ExtractAmount digs through an analysis JSON document for a total amount.
// Currency symbols and thousand separators are stripped before parsing.
func ExtractAmount(analysis []byte) (float64, bool) {
	var doc interface{}
	if err := json.Unmarshal(analysis, &doc); err != nil {
		return 0, false
	}
	for _, key := range amountKeys {
		if v, ok := findKey(doc, key); ok {
			if amount, ok := parseAmount(v); ok {
				return amount, true
			}
		}
	}
	return 0, false
}

// findKey walks nested objects and arrays looking for the first value under key.
func findKey(doc interface{}, key string) (interface{}, bool) {
	switch node := doc.(type) {
	case map[string]interface{}:
		if v, ok := node[key]; ok {
			return v, true
		}
		for _, child := range node {
			if v, ok := findKey(child, key); ok {
				return v, true
			}
		}
	case []interface{}:
		for _, child := range node {
			if v, ok := findKey(child, key); ok {
				return v, true
			}
		}
	}
	return nil, false
}

func parseAmount(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", "₹", "", " ", "").Replace(val)
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
