package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casesurf/casesurf/internal/database"
	"github.com/casesurf/casesurf/internal/metrics"
	"github.com/casesurf/casesurf/internal/middleware"
	"github.com/casesurf/casesurf/internal/payment"
)

// List plans endpoint
func (api *API) listPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": payment.Plans()})
}

// Capture order endpoint. The capture runs against PayPal with the
// order ID from the path; credits are only granted once per order no
// matter how many times the client retries.
func (api *API) captureOrder(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}

	var req struct {
		PlanID string `json:"plan_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plan_id is required"})
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	record, err := api.payments.CaptureAndApply(c.Request.Context(), userID, orderID, req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrUnknownPlan), errors.Is(err, payment.ErrFreePlan):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, database.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, database.ErrDuplicateOrder):
			c.JSON(http.StatusConflict, gin.H{"error": "Order already captured"})
		case errors.Is(err, payment.ErrPaymentNotCompleted), errors.Is(err, payment.ErrAmountMismatch):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			metrics.RecordError("api", "capture_order")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to capture order"})
		}
		return
	}

	// Return the refreshed profile so the client can update its
	// balance without a second round trip
	response := gin.H{"payment": record}
	if user, err := api.auth.Profile(c.Request.Context(), userID); err == nil {
		response["user"] = user
	}

	c.JSON(http.StatusCreated, response)
}

// List payments endpoint
func (api *API) listPayments(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	payments, err := api.payments.History(c.Request.Context(), userID)
	if err != nil {
		metrics.RecordError("api", "list_payments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
