package port

import (
	"context"

	"github.com/mokshchadha/invoice-ocr/internal/domain"
)

// ProcessedDocument is the normalized form of an uploaded file.
type ProcessedDocument struct {
	FileType         domain.FileType
	Text             string
	PageImage        []byte
	ImageContentType string
	PageCount        int
}

// DocumentProcessor turns raw uploaded bytes into normalized analyzer inputs.
type DocumentProcessor interface {
	Process(ctx context.Context, fileBytes []byte, contentType string) (*ProcessedDocument, error)
	RenderPages(ctx context.Context, fileBytes []byte, maxPages int) ([]domain.PagePreview, error)
}
