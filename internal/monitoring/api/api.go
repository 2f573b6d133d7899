// Package api exposes the monitoring core over HTTP: JSON and Prometheus
// metric views, the health report, and alert state, plus the standalone
// server's service-info and probe routes.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mediaforge/pipewatch/internal/monitoring"
	"github.com/mediaforge/pipewatch/internal/monitoring/health"
)

type Api struct {
	sys *monitoring.System
}

// NewApi binds the /monitoring route group onto router.
func NewApi(router *gin.Engine, sys *monitoring.System) *Api {
	api := &Api{sys: sys}
	api.setupRouters(router)
	return api
}

func (api *Api) setupRouters(router *gin.Engine) {
	g := router.Group("/monitoring")
	g.GET("/metrics", api.GetMetrics)
	g.GET("/health", api.GetHealth)
	g.GET("/alerts", api.GetAlerts)
	g.POST("/alerts/evaluate", api.EvaluateAlerts)
}

// RouteInfo describes one monitoring route for the service-info endpoint.
type RouteInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

// Routes lists the monitoring routes.
func Routes() []RouteInfo {
	return []RouteInfo{
		{Path: "/monitoring/metrics", Methods: []string{"GET"}, Description: "Real-time metrics"},
		{Path: "/monitoring/health", Methods: []string{"GET"}, Description: "Health status checks"},
		{Path: "/monitoring/alerts", Methods: []string{"GET"}, Description: "Alert status"},
		{Path: "/monitoring/alerts/evaluate", Methods: []string{"POST"}, Description: "Manual alert evaluation"},
	}
}

// JSONRecovery converts handler panics into the JSON error body every
// monitoring client expects instead of a bare 500.
func JSONRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		log.Error().Any("panic", err).Str("path", c.Request.URL.Path).Msg("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"timestamp": time.Now(),
		})
	})
}

// rejectDisabled answers 503 and reports true when monitoring is off.
func (api *Api) rejectDisabled(c *gin.Context) bool {
	if api.sys.Enabled() {
		return false
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error":     "Monitoring is disabled",
		"timestamp": time.Now(),
	})
	return true
}

// GetMetrics serves the registry snapshot.
// Query params: format=json|prometheus, include_history=true|false.
func (api *Api) GetMetrics(c *gin.Context) {
	if api.rejectDisabled(c) {
		return
	}

	summary := api.sys.Metrics.Summary()
	includeHistory := c.Query("include_history") == "true"

	if c.DefaultQuery("format", "json") == "prometheus" {
		c.Data(http.StatusOK, expositionContentType, renderExposition(summary, includeHistory))
		return
	}

	if !includeHistory {
		summary.Recent = nil
	}
	c.JSON(http.StatusOK, summary)
}

type healthResponse struct {
	*health.Report
	Recommendations []string `json:"recommendations"`
}

// GetHealth runs all checks and reports the aggregate. Healthy and warning
// answer 200; critical answers 503.
func (api *Api) GetHealth(c *gin.Context) {
	if api.rejectDisabled(c) {
		return
	}

	report := api.sys.Health.Run()
	status := http.StatusOK
	if report.OverallStatus == health.StatusCritical {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, healthResponse{
		Report:          report,
		Recommendations: recommendations(report),
	})
}

// GetAlerts serves filtered alert state.
// Query params: status=active|resolved|all, limit (resolved cap, default 50).
func (api *Api) GetAlerts(c *gin.Context) {
	if api.rejectDisabled(c) {
		return
	}

	summary := api.sys.Alerts.Summary()
	limit := 50
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil && v >= 0 {
		limit = v
	}
	resolved := summary.RecentResolved
	if len(resolved) > limit {
		resolved = resolved[:limit]
	}

	switch c.DefaultQuery("status", "active") {
	case "resolved":
		c.JSON(http.StatusOK, gin.H{
			"timestamp":             summary.Timestamp,
			"resolved_alerts":       resolved,
			"total_resolved_recent": len(summary.RecentResolved),
			"total_resolved_today":  summary.TotalResolvedToday,
			"statistics":            summary.Statistics,
		})
	case "all":
		summary.RecentResolved = resolved
		c.JSON(http.StatusOK, summary)
	default:
		c.JSON(http.StatusOK, gin.H{
			"timestamp":     summary.Timestamp,
			"active_alerts": summary.Active,
			"total_active":  summary.TotalActive,
			"statistics":    summary.Statistics,
		})
	}
}

// EvaluateAlerts forces one evaluation pass against a fresh snapshot.
func (api *Api) EvaluateAlerts(c *gin.Context) {
	if api.rejectDisabled(c) {
		return
	}

	triggered, resolved := api.sys.EvaluateAlerts()

	now := time.Now()
	triggeredDetails := make([]gin.H, 0, len(triggered))
	for _, a := range triggered {
		triggeredDetails = append(triggeredDetails, gin.H{
			"rule_name":    a.RuleName,
			"severity":     a.Severity,
			"message":      a.Message,
			"triggered_at": a.TriggeredAt,
		})
	}
	resolvedDetails := make([]gin.H, 0, len(resolved))
	for _, a := range resolved {
		resolvedDetails = append(resolvedDetails, gin.H{
			"rule_name":        a.RuleName,
			"severity":         a.Severity,
			"message":          a.Message,
			"duration_seconds": a.Duration(now).Seconds(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"timestamp": now,
		"evaluation_result": gin.H{
			"alerts_triggered":  len(triggered),
			"alerts_resolved":   len(resolved),
			"triggered_details": triggeredDetails,
			"resolved_details":  resolvedDetails,
		},
	})
}
