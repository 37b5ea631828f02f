package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casesurf/casesurf/internal/database"
	"github.com/casesurf/casesurf/internal/metrics"
	"github.com/casesurf/casesurf/internal/middleware"
	"github.com/casesurf/casesurf/internal/scripts"
	"github.com/casesurf/casesurf/pkg/models"
)

// Save script endpoint. The document key is derived from the video URL,
// so saving the same video twice overwrites the earlier document.
func (api *API) saveScript(c *gin.Context) {
	var req struct {
		URL            string `json:"url_tiktok" binding:"required"`
		OriginalReport string `json:"original_report"`
		ImprovedScript string `json:"improved_script"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url_tiktok is required"})
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	script := &models.SavedScript{
		UserID:         userID,
		DocKey:         scripts.EncodeDocKey(req.URL),
		VideoURL:       req.URL,
		OriginalReport: req.OriginalReport,
		ImprovedScript: req.ImprovedScript,
	}

	if err := api.scripts.SaveScript(c.Request.Context(), script); err != nil {
		metrics.RecordError("api", "save_script")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save script"})
		return
	}

	c.JSON(http.StatusCreated, script)
}

// List scripts endpoint
func (api *API) listScripts(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	list, err := api.scripts.ListScripts(c.Request.Context(), userID)
	if err != nil {
		metrics.RecordError("api", "list_scripts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load scripts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"scripts": list})
}

// Get script endpoint
func (api *API) getScript(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	script, err := api.scripts.GetScript(c.Request.Context(), userID, c.Param("doc_key"))
	if err != nil {
		if errors.Is(err, database.ErrScriptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Script not found"})
			return
		}
		metrics.RecordError("api", "get_script")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load script"})
		return
	}

	c.JSON(http.StatusOK, script)
}

// Delete script endpoint
func (api *API) deleteScript(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	docKey := c.Param("doc_key")
	if err := api.scripts.DeleteScript(c.Request.Context(), userID, docKey); err != nil {
		if errors.Is(err, database.ErrScriptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Script not found"})
			return
		}
		metrics.RecordError("api", "delete_script")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete script"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Script deleted", "doc_key": docKey})
}
