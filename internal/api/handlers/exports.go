// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"net/http"

	"github.com/fluffyriot/birdseye/internal/exports"
	"github.com/gin-gonic/gin"
)

// ExportProfileHandler writes the cached scrape of a handle to CSV and
// streams the file back.
func (h *Handler) ExportProfileHandler(c *gin.Context) {
	handle := c.Param("username")
	if handle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	result, ok := h.Worker.Cached(handle)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cached result for " + handle + ", scrape it first"})
		return
	}

	path, err := exports.GenerateItemsCsv(h.Config.ExportsDir, handle, result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed: " + err.Error()})
		return
	}
	if path == "" {
		c.Status(http.StatusNoContent)
		return
	}

	c.FileAttachment(path, handle+".csv")
}
