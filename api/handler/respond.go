package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/cinescrape/models"
)

// resultFunc produces the body of a successful response, or an error.
// It never writes to the response itself.
type resultFunc func(c *gin.Context) (any, error)

// respond adapts a resultFunc into a gin handler that writes exactly one
// response per request: the payload with 200, or the mapped error.
func respond(fn resultFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := fn(c)
		if c.Writer.Written() {
			slog.Error("handler wrote its own response", "path", c.FullPath())
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, payload)
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a JSON error body.
func respondError(c *gin.Context, err error) {
	scrapeErr := models.AsScrapeError(err)
	status := mapErrorToStatus(scrapeErr)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Request.URL.Path, "code", scrapeErr.Code, "error", err)
	} else {
		slog.Info("request rejected", "path", c.Request.URL.Path, "code", scrapeErr.Code, "error", err)
	}
	c.AbortWithStatusJSON(status, scrapeErr.ToResponse())
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeSelectorNotFound:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeNetwork:
		return http.StatusBadGateway // 502
	case models.ErrCodePoolExhausted:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}

// bindPageURL reads {url} from the JSON body. A missing body or empty url
// is models.ErrNotFound; anything other than an absolute http(s) URL is
// an invalid-input error.
func bindPageURL(c *gin.Context) (string, error) {
	var req models.PageRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "request body must be JSON: {\"url\": \"...\"}", err)
	}

	raw := strings.TrimSpace(req.URL)
	if raw == "" {
		return "", models.ErrNotFound
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "url must be an absolute http(s) URL", err)
	}
	return u.String(), nil
}
