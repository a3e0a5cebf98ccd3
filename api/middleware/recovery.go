package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/cinescrape/models"
)

// Recovery turns a panic in a handler into a 500 JSON error instead of
// an empty response, keeping the process alive.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "internal server error",
			Code:  models.ErrCodeInternal,
		})
	})
}
