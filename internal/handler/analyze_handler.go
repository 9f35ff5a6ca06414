package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mokshchadha/invoice-ocr/internal/domain"
	"github.com/mokshchadha/invoice-ocr/internal/ingest"
	"github.com/mokshchadha/invoice-ocr/internal/service"
)

// AnalyzeHandler handles document analysis endpoints.
type AnalyzeHandler struct {
	analysisService service.AnalysisService
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(analysisService service.AnalysisService) *AnalyzeHandler {
	return &AnalyzeHandler{analysisService: analysisService}
}

// Analyze handles POST /api/v1/analyze/:provider
// @Summary Analyze a document
// @Description Upload a PDF or image and analyze it with the named LLM provider
// @Tags analyze
// @Accept multipart/form-data
// @Produce json
// @Param provider path string true "Analyzer provider (gemini, openai, claude)"
// @Param file formData file true "PDF or image file"
// @Param document_type formData string false "Document type (transporter, supplier, generic, pippin_tax_assessment)"
// @Param question formData string false "Optional question about the document"
// @Success 200 {object} APIResponse "Analysis result"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 413 {object} APIResponse "File too large"
// @Router /analyze/{provider} [post]
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	provider := domain.Provider(c.Param("provider"))
	if !domain.ValidProviders[provider] {
		HandleError(c, domain.ErrUnknownProvider)
		return
	}

	docType := domain.DocumentType(c.PostForm("document_type"))
	if docType != "" && !domain.ValidDocumentTypes[docType] {
		HandleError(c, domain.ErrInvalidDocumentType)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		HandleError(c, domain.ErrNoFile)
		return
	}
	if fileHeader.Filename == "" {
		RespondError(c, http.StatusBadRequest, "NO_FILE", "no file selected")
		return
	}

	fileBytes, contentType, err := readUpload(fileHeader)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.analysisService.Analyze(c.Request.Context(), &service.AnalyzeRequest{
		FileBytes:    fileBytes,
		FileName:     fileHeader.Filename,
		ContentType:  contentType,
		Provider:     provider,
		DocumentType: docType,
		Question:     c.PostForm("question"),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// Preview handles POST /api/v1/preview
// @Summary Preview a PDF
// @Description Render the first pages of a PDF as base64 PNG images
// @Tags analyze
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF file"
// @Param max_pages formData int false "Maximum pages to render" default(3)
// @Success 200 {object} APIResponse "Rendered pages"
// @Failure 400 {object} APIResponse "Invalid request"
// @Router /preview [post]
func (h *AnalyzeHandler) Preview(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		HandleError(c, domain.ErrNoFile)
		return
	}

	fileBytes, _, err := readUpload(fileHeader)
	if err != nil {
		HandleError(c, err)
		return
	}

	maxPages := ingest.DefaultPreviewPages
	if raw := c.PostForm("max_pages"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "max_pages must be a positive integer")
			return
		}
		maxPages = n
	}

	previews, err := h.analysisService.Preview(c.Request.Context(), fileBytes, maxPages)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, previews)
}

// readUpload reads a multipart file into memory and returns its declared content type.
func readUpload(fileHeader *multipart.FileHeader) ([]byte, string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = f.Close() }()

	fileBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return fileBytes, fileHeader.Header.Get("Content-Type"), nil
}
