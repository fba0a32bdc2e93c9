package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clusterlab/app"
	"clusterlab/internal/config"
)

// NewRouter wires the HTTP routes onto a gin engine.
func NewRouter(service *app.AnalysisService, limits config.AnalysisConfig) *gin.Engine {
	router := gin.Default()

	handler := NewAnalyzeHandler(service, limits)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyze", handler.Analyze)
		v1.POST("/analyze/text", handler.AnalyzeText)
	}

	return router
}
