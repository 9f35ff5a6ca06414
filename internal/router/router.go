package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mokshchadha/invoice-ocr/internal/handler"
	"github.com/mokshchadha/invoice-ocr/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	analyzeH *handler.AnalyzeHandler,
	analysisH *handler.AnalysisHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Analysis routes
	v1.POST("/analyze/:provider", analyzeH.Analyze)
	v1.POST("/preview", analyzeH.Preview)

	// Stored analysis routes
	analyses := v1.Group("/analyses")
	analyses.GET("", analysisH.List)
	analyses.GET("/export", analysisH.Export)
	analyses.GET("/:id", analysisH.GetByID)
	analyses.GET("/:id/export", analysisH.ExportOne)

	return r
}
