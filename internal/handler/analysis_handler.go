package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mokshchadha/invoice-ocr/internal/export"
	"github.com/mokshchadha/invoice-ocr/internal/service"
)

// AnalysisHandler serves stored analysis records: listing, search, and export.
type AnalysisHandler struct {
	analysisService service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// List handles GET /api/v1/analyses
// Query params: q (filename substring), sort (recent|file_name|amount), offset, limit.
func (h *AnalysisHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	analyses, total, err := h.analysisService.List(c.Request.Context(), &service.ListRequest{
		Query:  c.Query("q"),
		Sort:   c.DefaultQuery("sort", "recent"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, analyses, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/analyses/:id
func (h *AnalysisHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid analysis ID")
		return
	}

	a, err := h.analysisService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, a)
}

// Export handles GET /api/v1/analyses/export?format=csv|xlsx|json
func (h *AnalysisHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	analyses, err := h.analysisService.ListAll(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	switch format {
	case "json":
		c.Header("Content-Disposition", `attachment; filename="analyses.json"`)
		c.JSON(http.StatusOK, analyses)

	case "csv":
		var buf bytes.Buffer
		buf.Write(export.BOM)
		w := export.NewWriter(&buf)
		if err := w.WriteHeader(); err == nil {
			err = w.WriteAnalyses(analyses)
		}
		w.Flush()
		if err == nil {
			err = w.Error()
		}
		if err != nil {
			HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="analyses.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())

	case "xlsx":
		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, analyses); err != nil {
			HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="analyses.xlsx"`)
		c.Data(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())

	default:
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv, xlsx, or json")
	}
}

// ExportOne handles GET /api/v1/analyses/:id/export?format=csv|json
// CSV output flattens the analysis JSON into dot-path columns.
func (h *AnalysisHandler) ExportOne(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid analysis ID")
		return
	}

	a, err := h.analysisService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "json":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.FileName+".json"))
		c.Data(http.StatusOK, "application/json", a.AnalysisJSON)

	case "csv":
		var buf bytes.Buffer
		if err := export.WriteAnalysisFlat(&buf, a); err != nil {
			HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.FileName+".csv"))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())

	default:
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or json")
	}
}

// parsePagination extracts offset/limit query params with sane bounds.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}
