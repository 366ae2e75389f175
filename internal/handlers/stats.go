package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/clubpulse/clubpulse/internal/github"
	"github.com/clubpulse/clubpulse/internal/services"
	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	cacheService  *services.SnapshotCacheService
	exportService *services.ExportService
}

func NewStatsHandler(cacheService *services.SnapshotCacheService, exportService *services.ExportService) *StatsHandler {
	return &StatsHandler{
		cacheService:  cacheService,
		exportService: exportService,
	}
}

// GetStats handles GET /users/:username/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	username := c.Param("username")
	forceRefresh := c.Query("refresh") == "true"
	userKey := c.Query("user_key")
	if userKey == "" {
		userKey = username
	}

	snapshot, err := h.cacheService.GetOrRefresh(c.Request.Context(), userKey, username, forceRefresh)
	if err != nil {
		respondStatsError(c, username, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// ExportStats handles GET /users/:username/stats/export
func (h *StatsHandler) ExportStats(c *gin.Context) {
	username := c.Param("username")
	userKey := c.Query("user_key")
	if userKey == "" {
		userKey = username
	}

	snapshot, err := h.cacheService.GetOrRefresh(c.Request.Context(), userKey, username, false)
	if err != nil {
		respondStatsError(c, username, err)
		return
	}

	workbook, err := h.exportService.BuildWorkbook(snapshot)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build export"})
		return
	}

	filename := fmt.Sprintf("%s-github-stats.xlsx", username)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := workbook.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// respondStatsError maps the error taxonomy onto HTTP statuses
func respondStatsError(c *gin.Context, username string, err error) {
	var notFound *github.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("user %s not found", username)})
		return
	}

	var upstream *github.UpstreamError
	if errors.As(err, &upstream) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "GitHub is temporarily unavailable, try again later"})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
}
