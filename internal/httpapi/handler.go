package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/usecase"
)

// PipelineRunner triggers one serialised pipeline run.
type PipelineRunner interface {
	Run(ctx context.Context) (domain.RunSummary, error)
}

// RecordService is the review workflow exposed over HTTP.
type RecordService interface {
	List(ctx context.Context, filter usecase.RecordFilter) ([]domain.Record, error)
	UpdateStatus(ctx context.Context, trendText, status string) (domain.Status, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

// Handler serves the workflow trigger and dashboard endpoints.
type Handler struct {
	runner     PipelineRunner
	records    RecordService
	components map[string]bool
	logger     *slog.Logger
}

// NewHandler wires the handler; components feeds the health report.
func NewHandler(runner PipelineRunner, records RecordService, components map[string]bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{runner: runner, records: records, components: components, logger: logger}
}

type runStats struct {
	Processed int `json:"processed"`
	Relevant  int `json:"relevant"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
	Saved     int `json:"saved"`
}

// RunResponse mirrors a completed run for dashboard clients.
type RunResponse struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message"`
	Stats    runStats             `json:"stats"`
	Results  []domain.Record      `json:"results"`
	Outcomes []domain.ItemOutcome `json:"outcomes"`
	Duration string               `json:"duration"`
}

type updateStatusRequest struct {
	Trend  string `json:"trend"`
	Status string `json:"status"`
}

// Health reports per-component readiness; it always answers 200.
func (h *Handler) Health(c *gin.Context) {
	healthy := true
	for _, ok := range h.components {
		healthy = healthy && ok
	}
	status := "healthy"
	if !healthy {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "components": h.components})
}

// RunAgent triggers one pipeline run and returns its summary.
func (h *Handler) RunAgent(c *gin.Context) {
	if h.runner == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Pipeline is not configured"})
		return
	}

	summary, err := h.runner.Run(c.Request.Context())
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "A run is already in progress"})
		return
	case err != nil:
		h.logger.Error("workflow failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": fmt.Sprintf("Workflow failed: %v", err)})
		return
	}

	c.JSON(http.StatusOK, RunResponse{
		Success: true,
		Message: fmt.Sprintf("Agent processed %d relevant job trends", summary.Relevant),
		Stats: runStats{
			Processed: summary.Processed,
			Relevant:  summary.Relevant,
			Skipped:   summary.Skipped,
			Errors:    summary.Errors,
			Saved:     summary.Saved,
		},
		Results:  summary.Records,
		Outcomes: summary.Outcomes,
		Duration: summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond).String(),
	})
}

// GetTrends lists stored records, optionally filtered by status and category.
func (h *Handler) GetTrends(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	records, err := h.records.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("error fetching trends", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Storage error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": records, "count": len(records)})
}

// UpdateStatus moves every record of a trend to the requested review status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Trend) == "" || strings.TrimSpace(req.Status) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing required fields: trend and status"})
		return
	}

	status, err := h.records.UpdateStatus(c.Request.Context(), req.Trend, req.Status)
	switch {
	case errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Invalid status. Must be one of: %s", joinStatuses()),
		})
		return
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Trend not found"})
		return
	case err != nil:
		h.logger.Error("error updating status", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Status updated to %s", status)})
}

// GetStats returns record counts by status and category.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.records.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("error getting stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Storage error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

// Export streams all records as a downloadable JSON document.
func (h *Handler) Export(c *gin.Context) {
	records, err := h.records.List(c.Request.Context(), usecase.RecordFilter{})
	if err != nil {
		h.logger.Error("error exporting records", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Storage error"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="trends_export.json"`)
	c.IndentedJSON(http.StatusOK, records)
}

func parseFilter(c *gin.Context) (usecase.RecordFilter, error) {
	var filter usecase.RecordFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid status filter %q", raw)
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		label, ok := parseLabel(raw)
		if !ok {
			return filter, fmt.Errorf("invalid category filter %q", raw)
		}
		filter.Label = label
	}
	return filter, nil
}

func parseLabel(raw string) (domain.Label, bool) {
	for _, l := range domain.Labels {
		if strings.EqualFold(string(l), raw) {
			return l, true
		}
	}
	return "", false
}

func joinStatuses() string {
	names := make([]string, len(domain.Statuses))
	for i, s := range domain.Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
