package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casesurf/casesurf/internal/auth"
	"github.com/casesurf/casesurf/internal/database"
	"github.com/casesurf/casesurf/internal/metrics"
	"github.com/casesurf/casesurf/internal/middleware"
)

// Login endpoint. The identity is assumed verified by the OAuth provider
// upstream; first sign-in creates the profile with the starter credits.
func (api *API) login(c *gin.Context) {
	var req struct {
		ID    string `json:"id" binding:"required"`
		Email string `json:"email" binding:"required"`
		Name  string `json:"name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and email are required"})
		return
	}

	user, token, err := api.auth.Login(c.Request.Context(), req.ID, req.Email, req.Name)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidIdentity) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		metrics.RecordError("api", "login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

// Get profile endpoint
func (api *API) getProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	user, err := api.auth.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		metrics.RecordError("api", "get_profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// Profile events endpoint. Streams credit and plan changes over SSE so
// the navbar balance updates without polling.
func (api *API) profileEvents(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	events, cancel := api.broker.Subscribe(userID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-events:
			if !open {
				return false
			}
			c.SSEvent("profile", event)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
