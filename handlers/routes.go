package handlers

import (
	"errorwatch/config"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the collector API on r
func RegisterRoutes(r *gin.Engine) {
	r.GET("/metrics", PrometheusMetrics())

	api := r.Group("/api")
	{
		// Error routes
		api.POST("/errors", RateLimit(config.Settings.IngestRatePerSec, config.Settings.IngestBurst), IngestError)
		api.GET("/errors", ListErrors)
		api.GET("/errors/stream", StreamErrors)
		api.GET("/errors/:id", GetError)
		api.DELETE("/errors", ClearErrors)

		// Health and metrics routes
		api.GET("/health", HealthCheck)
		api.GET("/metrics", GetMetrics)
	}
}
