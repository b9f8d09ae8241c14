package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finrecon/payment_recon_app/internal/adapters/reportexport"
	"github.com/finrecon/payment_recon_app/internal/apperrors"
	"github.com/finrecon/payment_recon_app/internal/core/domain"
	portssvc "github.com/finrecon/payment_recon_app/internal/core/ports/services"
	"github.com/finrecon/payment_recon_app/internal/dto"
	"github.com/finrecon/payment_recon_app/internal/middleware"
)

// reconciliationHandler handles HTTP requests for the reconciliation engine.
type reconciliationHandler struct {
	recon     portssvc.ReconciliationSvc
	sync      portssvc.SyncSvc
	scheduler portssvc.SchedulerSvc
}

func newReconciliationHandler(recon portssvc.ReconciliationSvc, sync portssvc.SyncSvc, scheduler portssvc.SchedulerSvc) *reconciliationHandler {
	return &reconciliationHandler{recon: recon, sync: sync, scheduler: scheduler}
}

// registerReconciliationRoutes registers the operator-facing routes.
func registerReconciliationRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newReconciliationHandler(services.Reconciliation, services.Sync, services.Scheduler)

	recon := rg.Group("/reconciliation")
	{
		recon.POST("/runs", h.runReconciliation)
		recon.GET("/orphans", h.detectOrphans)
		recon.POST("/sync", h.syncPendingPayments)
		recon.POST("/schedule", h.schedule)
		recon.DELETE("/schedule", h.stopSchedule)
	}
}

// runReconciliation godoc
// @Summary Run a reconciliation
// @Description Runs a full reconciliation over the given window (default: trailing 24h)
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param window body dto.RunReconciliationRequest false "Optional reconciliation window"
// @Param format query string false "Response format: json (default) or csv"
// @Success 200 {object} domain.ReconciliationReport
// @Failure 400 {object} map[string]string "Invalid window"
// @Failure 409 {object} map[string]string "Another run is active"
// @Failure 502 {object} map[string]string "Ledger fetch failed"
// @Router /reconciliation/runs [post]
func (h *reconciliationHandler) runReconciliation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RunReconciliationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind reconciliation window", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}
	start, end, err := windowFromRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.recon.RunReconciliation(c.Request.Context(), start, end)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrConcurrentRun):
			c.JSON(http.StatusConflict, gin.H{"error": "A reconciliation run is already in progress"})
		case errors.Is(err, apperrors.ErrFetchFailed):
			logger.Error("Reconciliation fetch failed", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Ledger fetch failed; no report was produced"})
		default:
			logger.Error("Reconciliation run failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation run failed"})
		}
		return
	}

	if c.Query("format") == "csv" {
		c.Header("Content-Disposition", `attachment; filename="reconciliation_`+report.ReportID+`.csv"`)
		c.Header("Content-Type", "text/csv")
		if err := reportexport.WriteCSV(c.Writer, *report); err != nil {
			logger.Error("Failed to write CSV export", slog.String("error", err.Error()))
		}
		return
	}
	c.JSON(http.StatusOK, report)
}

// detectOrphans godoc
// @Summary Detect orphan payments
// @Description Lists records present on one side only for the given window, without persisting a report
// @Tags reconciliation
// @Produce json
// @Param start query string false "Window start (RFC 3339)"
// @Param end query string false "Window end (RFC 3339)"
// @Success 200 {array} domain.OrphanPayment
// @Failure 400 {object} map[string]string "Invalid window"
// @Failure 502 {object} map[string]string "Ledger fetch failed"
// @Router /reconciliation/orphans [get]
func (h *reconciliationHandler) detectOrphans(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	start, end, err := windowFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orphans, err := h.recon.DetectOrphans(c.Request.Context(), start, end)
	if err != nil {
		logger.Error("Orphan detection failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Ledger fetch failed"})
		return
	}
	if orphans == nil {
		// Keep the JSON shape an array even when empty.
		orphans = []domain.OrphanPayment{}
	}
	c.JSON(http.StatusOK, orphans)
}

// syncPendingPayments godoc
// @Summary Sync pending payments
// @Description Resolves pending local transactions against the processor; per-record failures are collected, never fatal
// @Tags reconciliation
// @Produce json
// @Success 200 {object} services.SyncResult
// @Failure 502 {object} map[string]string "Listing pending transactions failed"
// @Router /reconciliation/sync [post]
func (h *reconciliationHandler) syncPendingPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	result, err := h.sync.SyncPendingPayments(c.Request.Context())
	if err != nil {
		logger.Error("Payment sync failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment sync failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// schedule godoc
// @Summary Start the reconciliation schedule
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param schedule body dto.ScheduleRequest true "Schedule interval"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} map[string]string "Invalid interval or schedule already active"
// @Router /reconciliation/schedule [post]
func (h *reconciliationHandler) schedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind schedule request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if err := h.scheduler.ScheduleEvery(req.IntervalHours); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ScheduleResponse{Active: true, IntervalHours: req.IntervalHours})
}

// stopSchedule godoc
// @Summary Stop the reconciliation schedule
// @Tags reconciliation
// @Produce json
// @Success 200 {object} dto.ScheduleResponse
// @Router /reconciliation/schedule [delete]
func (h *reconciliationHandler) stopSchedule(c *gin.Context) {
	h.scheduler.StopSchedule()
	c.JSON(http.StatusOK, dto.ScheduleResponse{Active: false})
}

func windowFromRequest(req dto.RunReconciliationRequest) (time.Time, time.Time, error) {
	var start, end time.Time
	if req.Start != nil {
		start = *req.Start
	}
	if req.End != nil {
		end = *req.End
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		return time.Time{}, time.Time{}, errors.New("start must be before end")
	}
	return start, end, nil
}

func windowFromQuery(c *gin.Context) (time.Time, time.Time, error) {
	var start, end time.Time
	if s := c.Query("start"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid start: expected RFC 3339")
		}
		start = parsed
	}
	if s := c.Query("end"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid end: expected RFC 3339")
		}
		end = parsed
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		return time.Time{}, time.Time{}, errors.New("start must be before end")
	}
	return start, end, nil
}
