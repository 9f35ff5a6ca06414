package ingest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokshchadha/invoice-ocr/internal/domain"
	"github.com/mokshchadha/invoice-ocr/internal/ingest"
)

var (
	pngBytes  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
)

func TestProcessor_Process_EmptyFile(t *testing.T) {
	p := ingest.NewProcessor()

	_, err := p.Process(context.Background(), nil, "application/pdf")
	assert.ErrorIs(t, err, domain.ErrEmptyFile)
}

func TestProcessor_Process_UnsupportedType(t *testing.T) {
	p := ingest.NewProcessor()

	_, err := p.Process(context.Background(), []byte("plain text document"), "text/plain")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestProcessor_Process_PNGPassthrough(t *testing.T) {
	p := ingest.NewProcessor()

	doc, err := p.Process(context.Background(), pngBytes, "")
	require.NoError(t, err)
	assert.Equal(t, domain.FileTypePNG, doc.FileType)
	assert.Equal(t, "image/png", doc.ImageContentType)
	assert.Equal(t, pngBytes, doc.PageImage)
	assert.Empty(t, doc.Text)
	assert.Equal(t, 1, doc.PageCount)
}

func TestProcessor_Process_JPEGPassthrough(t *testing.T) {
	p := ingest.NewProcessor()

	doc, err := p.Process(context.Background(), jpegBytes, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, domain.FileTypeJPG, doc.FileType)
	assert.Equal(t, "image/jpeg", doc.ImageContentType)
}

func TestProcessor_RenderPages_EmptyFile(t *testing.T) {
	p := ingest.NewProcessor()

	_, err := p.RenderPages(context.Background(), nil, 3)
	assert.ErrorIs(t, err, domain.ErrEmptyFile)
}

func TestProcessor_RenderPages_NotPDF(t *testing.T) {
	p := ingest.NewProcessor()

	_, err := p.RenderPages(context.Background(), pngBytes, 3)
	assert.ErrorIs(t, err, domain.ErrNotPDF)
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		bytes    []byte
		declared string
		expected string
	}{
		{"pdf magic bytes win", []byte("%PDF-1.4 content"), "application/octet-stream", "application/pdf"},
		{"png magic bytes", pngBytes, "", "image/png"},
		{"jpeg magic bytes", jpegBytes, "", "image/jpeg"},
		{"falls back to declared", []byte("ambiguous bytes"), "application/pdf", "application/pdf"},
		{"declared charset stripped", []byte("ambiguous bytes"), "Application/PDF; charset=utf-8", "application/pdf"},
		{"no usable type", []byte("ambiguous bytes"), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ingest.DetectContentType(tt.bytes, tt.declared))
		})
	}
}
