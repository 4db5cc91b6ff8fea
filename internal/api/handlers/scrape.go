// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"errors"
	"net/http"

	"github.com/fluffyriot/birdseye/internal/scraper"
	"github.com/fluffyriot/birdseye/internal/worker"
	"github.com/gin-gonic/gin"
)

// ScrapeProfileHandler runs a live extraction for the requested handle
// and returns the merged result. The per-feed completeness flags in the
// body distinguish a degraded scrape from a full one.
func (h *Handler) ScrapeProfileHandler(c *gin.Context) {
	handle := c.Param("username")
	if handle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	result, err := h.Worker.Scrape(c.Request.Context(), handle)
	if err != nil {
		switch {
		case errors.Is(err, worker.ErrBusy):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, scraper.ErrSessionUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// CachedProfileHandler serves the last result the worker collected for
// a handle without touching the browser.
func (h *Handler) CachedProfileHandler(c *gin.Context) {
	handle := c.Param("username")
	if handle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	result, ok := h.Worker.Cached(handle)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cached result for " + handle})
		return
	}

	c.JSON(http.StatusOK, result)
}
