package domain

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Analysis is a stored analysis result for a processed document.
// FileName is unique: a file is analyzed once and the result is read many times.
// AnalysisJSON is types.JSONText so the TEXT column scans and values cleanly
// through database/sql while still marshaling inline as JSON.
type Analysis struct {
	ID           int64          `db:"id" json:"id"`
	FileName     string         `db:"file_name" json:"file_name"`
	DocumentType DocumentType   `db:"document_type" json:"document_type"`
	ModelUsed    string         `db:"model_used" json:"model_used"`
	AnalysisJSON types.JSONText `db:"analysis_json" json:"analysis_json"`
	ProcessedAt  time.Time      `db:"processed_at" json:"processed_at"`
}

// IsRawFallback reports whether data is a raw-text fallback payload,
// i.e. a model reply that was not valid JSON and was wrapped as
// {"raw_analysis": ...}.
func IsRawFallback(data []byte) bool {
	var probe struct {
		RawAnalysis *string `json:"raw_analysis"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.RawAnalysis != nil
}

// IsRawFallback reports whether the stored analysis is a raw-text fallback.
func (a *Analysis) IsRawFallback() bool {
	return IsRawFallback(a.AnalysisJSON)
}

// PagePreview is a single rendered PDF page returned by the preview endpoint.
type PagePreview struct {
	Page int    `json:"page"`
	PNG  []byte `json:"png"`
}
