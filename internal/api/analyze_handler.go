package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"clusterlab/app"
	"clusterlab/domain/analysis"
	"clusterlab/internal/config"
	apperrors "clusterlab/internal/errors"
)

// AnalyzeHandler exposes the clustering pipeline over HTTP.
type AnalyzeHandler struct {
	service *app.AnalysisService
	limits  config.AnalysisConfig
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(service *app.AnalysisService, limits config.AnalysisConfig) *AnalyzeHandler {
	return &AnalyzeHandler{service: service, limits: limits}
}

// analyzeTextRequest is the payload for text-based analysis.
type analyzeTextRequest struct {
	Records []analysis.TextRecord `json:"records"`
	Config  analysis.Config       `json:"config"`
}

// Analyze handles POST /api/v1/analyze with precomputed embeddings.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req analysis.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if err := h.checkLimits(req.Config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Analyze(req)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AnalyzeText handles POST /api/v1/analyze/text with raw text records.
// The records are embedded through the external embedding service first.
func (h *AnalyzeHandler) AnalyzeText(c *gin.Context) {
	var req analyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if err := h.checkLimits(req.Config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.AnalyzeTexts(c.Request.Context(), req.Records, req.Config)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// checkLimits enforces the presentation-tier caps. The pipeline itself
// accepts any positive integers within the data's bounds.
func (h *AnalyzeHandler) checkLimits(cfg analysis.Config) error {
	if cfg.NumDimensions > h.limits.MaxDimensions {
		return fmt.Errorf("num_dimensions %d exceeds the maximum of %d", cfg.NumDimensions, h.limits.MaxDimensions)
	}
	if cfg.NumClusters > h.limits.MaxClusters {
		return fmt.Errorf("num_clusters %d exceeds the maximum of %d", cfg.NumClusters, h.limits.MaxClusters)
	}
	return nil
}

func (h *AnalyzeHandler) renderError(c *gin.Context, err error) {
	switch apperrors.GetCode(err) {
	case apperrors.CodeValidationError:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.CodeExternalService:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
