package ingest

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/mokshchadha/invoice-ocr/internal/domain"
	"github.com/mokshchadha/invoice-ocr/internal/port"
)

// renderDPI is the resolution used for page rasterization (300/72 matrix).
const renderDPI = 300

// DefaultPreviewPages caps how many pages a preview renders.
const DefaultPreviewPages = 3

// Processor normalizes uploaded files into analyzer inputs.
// It implements port.DocumentProcessor.
type Processor struct{}

// NewProcessor creates a document processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// Process detects the file type and produces normalized inputs.
// PDFs contribute the text of every page plus the first page rendered as PNG;
// images pass through untouched.
func (p *Processor) Process(ctx context.Context, fileBytes []byte, contentType string) (*port.ProcessedDocument, error) {
	if len(fileBytes) == 0 {
		return nil, domain.ErrEmptyFile
	}

	detected := DetectContentType(fileBytes, contentType)
	fileType, ok := domain.AllowedContentTypes[detected]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	if fileType != domain.FileTypePDF {
		return &port.ProcessedDocument{
			FileType:         fileType,
			PageImage:        fileBytes,
			ImageContentType: detected,
			PageCount:        1,
		}, nil
	}

	doc, err := fitz.NewFromMemory(fileBytes)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer func() { _ = doc.Close() }()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	text := extractText(doc)

	// First page only; the model receives a single rendered image.
	png, err := doc.ImagePNG(0, renderDPI)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page 1: %w", err)
	}

	return &port.ProcessedDocument{
		FileType:         domain.FileTypePDF,
		Text:             text,
		PageImage:        png,
		ImageContentType: "image/png",
		PageCount:        pageCount,
	}, nil
}

// RenderPages renders up to maxPages pages of a PDF as PNG previews.
func (p *Processor) RenderPages(ctx context.Context, fileBytes []byte, maxPages int) ([]domain.PagePreview, error) {
	if len(fileBytes) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if DetectContentType(fileBytes, "") != "application/pdf" {
		return nil, domain.ErrNotPDF
	}
	if maxPages <= 0 {
		maxPages = DefaultPreviewPages
	}

	doc, err := fitz.NewFromMemory(fileBytes)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer func() { _ = doc.Close() }()

	n := doc.NumPage()
	if n > maxPages {
		n = maxPages
	}

	previews := make([]domain.PagePreview, 0, n)
	for i := 0; i < n; i++ {
		png, err := doc.ImagePNG(i, renderDPI)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page %d: %w", i+1, err)
		}
		previews = append(previews, domain.PagePreview{Page: i + 1, PNG: png})
	}
	return previews, nil
}

// extractText concatenates the text of all pages. Pages that fail extraction
// are skipped so one bad page does not lose the document.
func extractText(doc *fitz.Document) string {
	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			log.Printf("ingest.extractText: page %d: %v", i+1, err)
			continue
		}
		if pageText != "" {
			b.WriteString(pageText)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// DetectContentType sniffs the content type from magic bytes, falling back to
// the declared type when sniffing is inconclusive.
func DetectContentType(fileBytes []byte, declared string) string {
	sniffed := http.DetectContentType(fileBytes)
	if _, ok := domain.AllowedContentTypes[sniffed]; ok {
		return sniffed
	}
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = declared[:i]
	}
	return declared
}
