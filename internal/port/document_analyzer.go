package port

import (
	"context"
	"encoding/json"

	"github.com/mokshchadha/invoice-ocr/internal/domain"
)

// AnalyzeInput carries the normalized document inputs sent to an LLM provider.
// For PDFs, Text holds the extracted text of every page and PageImage the
// first page rendered as PNG. For images, Text is empty and PageImage holds
// the original bytes.
type AnalyzeInput struct {
	Text             string
	PageImage        []byte
	ImageContentType string
	DocumentType     domain.DocumentType
	Question         string
}

// AnalyzeOutput contains the model's analysis of a document.
// Analysis is always valid JSON: either the model's own JSON reply or a
// {"raw_analysis": ...} wrapper around free text.
type AnalyzeOutput struct {
	Analysis   json.RawMessage
	RawText    string
	ModelUsed  string
	PromptUsed string
}

// DocumentAnalyzer abstracts LLM-based document analysis.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeOutput, error)
}
