package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/cinescrape/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// StatsProvider reports the browser pool state.
type StatsProvider interface {
	Stats() models.PoolStats
}

// Health returns a handler for GET /health.
//
// Reports pool utilisation and degrades status when every tab is busy.
func Health(sp StatsProvider, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := sp.Stats()

		status := "healthy"
		if stats.MaxPages > 0 && stats.ActivePages >= stats.MaxPages {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			PoolStats: stats,
			Version:   Version,
		})
	}
}

// NotFound answers unmatched routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, models.ErrNotFound.ToResponse())
	}
}
