package router

import (
	"aipulse/app/handler"
	"aipulse/app/middleware"

	"github.com/gin-gonic/gin"
)

// Router wires handlers onto the gin engine
type Router struct {
	statsHandler  *handler.StatsHandler
	ingestHandler *handler.IngestHandler
}

// NewRouter creates a new Router
func NewRouter(statsHandler *handler.StatsHandler, ingestHandler *handler.IngestHandler) *Router {
	return &Router{
		statsHandler:  statsHandler,
		ingestHandler: ingestHandler,
	}
}

// Setup sets up routes
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())

	// Read API - public statistics
	api := engine.Group("/api/v1")
	{
		api.GET("/stats", r.statsHandler.GetStats)
		api.GET("/packages/stats", r.statsHandler.GetPackageStats)
		api.GET("/runs", r.statsHandler.GetRecentRuns)

		// Admin API - ingestion triggers, token protected
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware())
		{
			admin.POST("/collect", r.ingestHandler.Collect)
			admin.POST("/ingest/:date", r.ingestHandler.IngestDay)
			admin.POST("/backfill", r.ingestHandler.Backfill)
			admin.POST("/backfill/fast", r.ingestHandler.BackfillFast)
			admin.POST("/backfill/archive", r.ingestHandler.BackfillArchive)
			admin.POST("/backfill/packages", r.ingestHandler.BackfillPackages)
			admin.POST("/totals/override", r.ingestHandler.OverrideTotals)
			admin.POST("/totals/refresh", r.ingestHandler.RefreshTotals)
		}
	}

	// Health check
	engine.GET("/health", r.statsHandler.Health)
}
