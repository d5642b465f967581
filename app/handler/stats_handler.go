package handler

import (
	"net/http"
	"strconv"

	"aipulse/internal/service"
	"aipulse/pkg/logger"

	"github.com/gin-gonic/gin"
)

// StatsHandler handles read-side HTTP requests
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStats retrieves the daily series, weekly rollup and summary
// @Summary Get activity statistics
// @Description Get daily and weekly AI coding activity with a derived summary
// @Tags stats
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Success 200 {object} service.StatsResponse
// @Router /api/v1/stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	resp, err := h.statsService.GetStats(c.Request.Context(), c.Query("from"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPackageStats retrieves download series for the tracked packages
// @Summary Get package download statistics
// @Description Get daily npm and PyPI download series per tracked package
// @Tags stats
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Success 200 {object} service.PackageStatsResponse
// @Router /api/v1/packages/stats [get]
func (h *StatsHandler) GetPackageStats(c *gin.Context) {
	resp, err := h.statsService.GetPackageStats(c.Request.Context(), c.Query("from"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetRecentRuns retrieves the newest ingestion log entries
// @Summary Get recent ingestion runs
// @Tags stats
// @Produce json
// @Param limit query int false "Number of entries (default: 50)"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/runs [get]
func (h *StatsHandler) GetRecentRuns(c *gin.Context) {
	limit := 0
	if limitParam := c.Query("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil {
			limit = parsed
		}
	}

	entries, err := h.statsService.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runs":  entries,
		"total": len(entries),
	})
}

// Health reports liveness and data freshness
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} service.HealthStatus
// @Router /health [get]
func (h *StatsHandler) Health(c *gin.Context) {
	health, err := h.statsService.Health(c.Request.Context())
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, health)
}
