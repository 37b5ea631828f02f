package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/casesurf/casesurf/internal/library"
	"github.com/casesurf/casesurf/internal/metrics"
	"github.com/casesurf/casesurf/internal/middleware"
)

// List videos endpoint. Filter, sort and pagination are all optional;
// an unknown sort falls back to insertion order.
func (api *API) listVideos(c *gin.Context) {
	query := library.Query{
		Filter: c.Query("search"),
		Sort:   c.Query("sort"),
	}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		query.Limit = limit
	}

	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}
		query.Offset = offset
	}

	page, err := api.library.ListVideos(c.Request.Context(), query)
	if err != nil {
		metrics.RecordError("api", "list_videos")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load videos"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get keywords endpoint
func (api *API) getKeywords(c *gin.Context) {
	keywords, err := api.library.Keywords(c.Request.Context())
	if err != nil {
		metrics.RecordError("api", "keywords")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load keywords"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"keywords": keywords})
}

// Record click endpoint. Clicks are anonymous and unthrottled beyond the
// global rate limit.
func (api *API) recordClick(c *gin.Context) {
	var req struct {
		URL string `json:"url_tiktok" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url_tiktok is required"})
		return
	}

	if err := api.library.RecordClick(c.Request.Context(), req.URL); err != nil {
		metrics.RecordError("api", "record_click")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record click"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Click recorded"})
}

// Toggle like endpoint. The like set is per browser session, not per
// account, so signed-out visitors can like videos too.
func (api *API) toggleLike(c *gin.Context) {
	var req struct {
		URL string `json:"url_tiktok" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url_tiktok is required"})
		return
	}

	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session"})
		return
	}

	liked, err := api.library.ToggleLike(c.Request.Context(), sessionID, req.URL)
	if err != nil {
		metrics.RecordError("api", "toggle_like")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// Liked videos endpoint
func (api *API) likedVideos(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session"})
		return
	}

	urls, err := api.library.LikedVideos(c.Request.Context(), sessionID)
	if err != nil {
		metrics.RecordError("api", "liked_videos")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load liked videos"})
		return
	}

	if urls == nil {
		urls = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"videos": urls})
}
