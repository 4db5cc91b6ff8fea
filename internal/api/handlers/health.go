// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

func (h *Handler) HealthCheckHandler(c *gin.Context) {
	if h.Worker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "failure", "details": "scrape worker not initialized"})
		return
	}

	if _, err := os.Stat(h.Config.ScreenshotsDir); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "failure", "details": "screenshots directory unavailable: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "scheduler_active": h.Worker.IsActive()})
}
