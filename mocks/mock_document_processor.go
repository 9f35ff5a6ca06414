package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mokshchadha/invoice-ocr/internal/domain"
	"github.com/mokshchadha/invoice-ocr/internal/port"
)

// MockDocumentProcessor is a mock implementation of port.DocumentProcessor.
type MockDocumentProcessor struct {
	mock.Mock
}

func (m *MockDocumentProcessor) Process(ctx context.Context, fileBytes []byte, contentType string) (*port.ProcessedDocument, error) {
	args := m.Called(ctx, fileBytes, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ProcessedDocument), args.Error(1)
}

func (m *MockDocumentProcessor) RenderPages(ctx context.Context, fileBytes []byte, maxPages int) ([]domain.PagePreview, error) {
	args := m.Called(ctx, fileBytes, maxPages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PagePreview), args.Error(1)
}
