package handler

import (
	"errors"
	"net/http"

	"aipulse/internal/service"
	"aipulse/pkg/logger"

	"github.com/gin-gonic/gin"
)

// IngestHandler handles admin ingestion requests
type IngestHandler struct {
	ingestService  *service.IngestService
	archiveService *service.ArchiveService
	packageService *service.PackageService
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(ingestService *service.IngestService, archiveService *service.ArchiveService, packageService *service.PackageService) *IngestHandler {
	return &IngestHandler{
		ingestService:  ingestService,
		archiveService: archiveService,
		packageService: packageService,
	}
}

// rangeRequest is the shared body of backfill endpoints: either a single
// date or a from/to range
type rangeRequest struct {
	Date string `json:"date"`
	From string `json:"from"`
	To   string `json:"to"`
}

func (r *rangeRequest) validRange() bool {
	return r.Date == "" && r.From != "" && r.To != ""
}

// Collect catches up from the latest stored date through yesterday
// @Summary Collect latest days
// @Tags admin
// @Produce json
// @Success 200 {object} model.RangeOutcome
// @Router /api/v1/admin/collect [post]
func (h *IngestHandler) Collect(c *gin.Context) {
	outcome, err := h.ingestService.CollectLatest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// IngestDay ingests one date exhaustively
// @Summary Ingest one date
// @Tags admin
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} model.IngestOutcome
// @Router /api/v1/admin/ingest/{date} [post]
func (h *IngestHandler) IngestDay(c *gin.Context) {
	outcome, err := h.ingestService.IngestDay(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// Backfill ingests a single date or a date range exhaustively
// @Summary Backfill a date or a date range
// @Tags admin
// @Accept json
// @Produce json
// @Param request body rangeRequest true "Single date or date range"
// @Success 200 {object} model.RangeOutcome
// @Router /api/v1/admin/backfill [post]
func (h *IngestHandler) Backfill(c *gin.Context) {
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Date != "" {
		outcome, err := h.ingestService.IngestDay(c.Request.Context(), req.Date)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, outcome)
		return
	}
	if !req.validRange() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either date or from/to is required"})
		return
	}

	outcome, err := h.ingestService.IngestRange(c.Request.Context(), req.From, req.To)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// BackfillFast ingests a date range with sparsity screening
// @Summary Backfill a date range, skipping signals with no hits
// @Tags admin
// @Accept json
// @Produce json
// @Param request body rangeRequest true "Date range"
// @Success 200 {object} model.RangeOutcome
// @Router /api/v1/admin/backfill/fast [post]
func (h *IngestHandler) BackfillFast(c *gin.Context) {
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.validRange() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	outcome, err := h.ingestService.IngestRangeSparse(c.Request.Context(), req.From, req.To)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// BackfillArchive batch-ingests a date range from GH Archive
// @Summary Backfill a date range from the commit archive
// @Tags admin
// @Accept json
// @Produce json
// @Param request body rangeRequest true "Date range"
// @Success 200 {object} model.ArchiveOutcome
// @Router /api/v1/admin/backfill/archive [post]
func (h *IngestHandler) BackfillArchive(c *gin.Context) {
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.validRange() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	outcome, err := h.archiveService.BackfillRange(c.Request.Context(), req.From, req.To)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// BackfillPackages ingests registry downloads for a date or a date range
// @Summary Backfill package downloads
// @Tags admin
// @Accept json
// @Produce json
// @Param request body rangeRequest true "Single date or date range"
// @Success 200 {object} model.PackageRangeOutcome
// @Router /api/v1/admin/backfill/packages [post]
func (h *IngestHandler) BackfillPackages(c *gin.Context) {
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Date != "" {
		outcome, err := h.packageService.IngestDay(c.Request.Context(), req.Date)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, outcome)
		return
	}
	if !req.validRange() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either date or from/to is required"})
		return
	}

	outcome, err := h.packageService.IngestRange(c.Request.Context(), req.From, req.To)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// OverrideTotals rewrites commit denominators on existing rows
// @Summary Override total commit counts
// @Tags admin
// @Accept json
// @Produce json
// @Param request body map[string]int true "Date to total commits"
// @Success 200 {object} model.TotalsOutcome
// @Router /api/v1/admin/totals/override [post]
func (h *IngestHandler) OverrideTotals(c *gin.Context) {
	var overrides map[string]int
	if err := c.ShouldBindJSON(&overrides); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.ingestService.OverrideTotals(c.Request.Context(), overrides)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// RefreshTotals re-queries commit denominators for a date range
// @Summary Refresh total commit counts from upstream
// @Tags admin
// @Accept json
// @Produce json
// @Param request body rangeRequest true "Date range"
// @Success 200 {object} model.TotalsOutcome
// @Router /api/v1/admin/totals/refresh [post]
func (h *IngestHandler) RefreshTotals(c *gin.Context) {
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.validRange() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	outcome, err := h.ingestService.RefreshTotals(c.Request.Context(), req.From, req.To)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// respondError maps service errors onto HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.ErrorCtx(c.Request.Context(), "request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
