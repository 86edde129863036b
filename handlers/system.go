package handlers

import (
	"errorwatch/config"
	"errorwatch/database"
	"errorwatch/service"
	"errorwatch/version"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ingested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "errorwatch_ingested_total",
		Help: "Error payloads stored by the collector.",
	})
	ingestRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errorwatch_ingest_rejected_total",
		Help: "Error payloads rejected by the collector, by reason.",
	}, []string{"reason"})
	_ = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "errorwatch_stream_subscribers",
		Help: "Live websocket stream subscribers.",
	}, func() float64 {
		if service.GlobalServices == nil || service.GlobalServices.Hub == nil {
			return 0
		}
		return float64(service.GlobalServices.Hub.SubscriberCount())
	})
)

// HealthCheck health endpoint. A failed database ping answers 503 with
// CodeUnavailable and the same data block.
func HealthCheck(c *gin.Context) {
	dbHealthy := database.Ping(c.Request.Context(), database.DB)

	health := gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().Unix(),
		"version":    version.GetFullVersion(),
		"db_healthy": dbHealthy,
	}

	if !dbHealthy {
		health["status"] = "degraded"
		respondV2(c, http.StatusServiceUnavailable, CodeUnavailable, "Database unavailable", health)
		return
	}

	okV2(c, health)
}

// GetMetrics returns a JSON snapshot of collector state
func GetMetrics(c *gin.Context) {
	stored, err := service.GlobalServices.Errors.Count()
	if err != nil {
		errV2(c, http.StatusInternalServerError, CodeInternal, "Failed to count errors", err.Error())
		return
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	okV2(c, gin.H{
		"timestamp": time.Now().Unix(),
		"errors": gin.H{
			"stored":     stored,
			"max_stored": config.Settings.MaxStoredErrors,
		},
		"stream": gin.H{
			"subscribers":   service.GlobalServices.Hub.SubscriberCount(),
			"dropped_total": service.GlobalServices.Hub.DroppedTotal(),
		},
		"system": gin.H{
			"goroutines":   runtime.NumGoroutine(),
			"memory_alloc": mem.Alloc,
			"memory_sys":   mem.Sys,
			"gc_runs":      mem.NumGC,
		},
	})
}

// PrometheusMetrics serves the default Prometheus registry
func PrometheusMetrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
