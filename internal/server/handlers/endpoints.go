package handlers

import (
	"ApiMonitor/internal/monitor/services"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// GetSummary returns the aggregate health of all endpoints.
func (h *Handlers) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse("summary", h.engine.GetHealthSummary()))
}

func (h *Handlers) ListEndpoints(c *gin.Context) {
	endpoints := h.engine.Endpoints()
	c.JSON(http.StatusOK, SuccessResponse("endpoints_found", gin.H{
		"endpoints": endpoints,
		"total":     len(endpoints),
	}))
}

func (h *Handlers) GetAllStats(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse("stats_found", gin.H{
		"stats": h.engine.GetAllStats(),
	}))
}

// GetStats returns statistics for a single endpoint.
func (h *Handlers) GetStats(c *gin.Context) {
	endpointID := c.Param("id")

	stats, err := h.engine.GetStats(endpointID)
	if err != nil {
		h.respondError(c, err, "stats_failed", endpointID)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse("stats_found", gin.H{
		"stats": stats,
	}))
}

// GetHistory returns the retained check history, oldest first.
func (h *Handlers) GetHistory(c *gin.Context) {
	endpointID := c.Param("id")

	entries, err := h.engine.History(endpointID)
	if err != nil {
		h.respondError(c, err, "history_failed", endpointID)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse("history_found", gin.H{
		"endpoint_id": endpointID,
		"history":     entries,
		"total":       len(entries),
	}))
}

// ListEvents returns journaled health events, newest first.
func (h *Handlers) ListEvents(c *gin.Context) {
	endpointID := c.Query("endpoint_id")

	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse("invalid_request", "limit must be a positive integer"))
			return
		}
		limit = min(n, maxEventLimit)
	}

	events, err := h.engine.Events(c.Request.Context(), endpointID, limit)
	if err != nil {
		h.respondError(c, err, "events_failed", endpointID)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse("events_found", gin.H{
		"events": events,
		"total":  len(events),
	}))
}

func (h *Handlers) respondError(c *gin.Context, err error, code string, endpointID string) {
	if errors.Is(err, services.ErrUnknownEndpoint) {
		c.JSON(http.StatusNotFound, ErrorResponse("not_found", "Endpoint not found"))
		return
	}

	h.logger.Error("request failed", "error", err, "endpoint_id", endpointID)
	c.JSON(http.StatusInternalServerError, ErrorResponse(code, err.Error()))
}
