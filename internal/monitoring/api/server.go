package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mediaforge/pipewatch/internal/monitoring"
)

const (
	serviceName    = "pipewatch"
	serviceVersion = "1.0.0"
)

// RegisterServiceRoutes adds the standalone server's info and probe routes
// plus the native Prometheus export.
func RegisterServiceRoutes(router *gin.Engine, sys *monitoring.System) {
	router.GET("/", func(c *gin.Context) {
		status := "operational"
		if !sys.Enabled() {
			status = "monitoring_disabled"
		}
		c.JSON(http.StatusOK, gin.H{
			"service":     serviceName,
			"version":     serviceVersion,
			"description": "Content pipeline monitoring and alerting service",
			"endpoints":   Routes(),
			"status":      status,
		})
	})

	// readiness is tied to the monitoring gate; liveness only to the process
	router.GET("/ready", func(c *gin.Context) {
		if sys.Enabled() {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "monitoring_disabled"})
	})
	router.GET("/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive", "timestamp": time.Now()})
	})

	router.GET("/metrics", gin.WrapH(PrometheusHandler(sys.Metrics)))
}
