package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casesurf/casesurf/internal/database"
	"github.com/casesurf/casesurf/internal/metrics"
	"github.com/casesurf/casesurf/internal/middleware"
)

// Generate report endpoint. Works signed-out; a signed-in user whose
// saved document already holds a report gets that copy back instead of
// a fresh generation.
func (api *API) generateReport(c *gin.Context) {
	var req struct {
		Product string `json:"product" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product is required"})
		return
	}

	userID, _ := middleware.GetUserID(c)

	report, err := api.research.GenerateReport(c.Request.Context(), req.Product, userID)
	if err != nil {
		metrics.RecordError("api", "generate_report")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate report", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// Improve script endpoint. Costs one credit per call regardless of how
// many improvement directives are supplied; pro users are never charged.
func (api *API) improveScript(c *gin.Context) {
	var req struct {
		BaseText     string   `json:"base_text" binding:"required"`
		Improvements []string `json:"improvements"`
		IsIterative  bool     `json:"is_iterative"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "base_text is required"})
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	text, err := api.credits.ImproveScript(c.Request.Context(), userID, req.BaseText, req.Improvements, req.IsIterative)
	if err != nil {
		if errors.Is(err, database.ErrInsufficientCredit) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Insufficient credit"})
			return
		}
		if errors.Is(err, database.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		metrics.RecordError("api", "improve_script")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to improve script", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}
