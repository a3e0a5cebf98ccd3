package browser

import (
	"context"
	"errors"
	"strings"

	"github.com/go-rod/rod"
	"github.com/use-agent/cinescrape/models"
)

// CategorizeError wraps raw rod and context errors into typed ScrapeErrors
// so the API layer can map them to HTTP status codes. An existing
// ScrapeError is returned unchanged.
func CategorizeError(err error, msg string) *models.ScrapeError {
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return se
	}

	var navErr *rod.NavigationError
	var notFound *rod.ElementNotFoundError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	case errors.As(err, &notFound):
		return models.NewScrapeError(models.ErrCodeSelectorNotFound, msg, err)
	case errors.As(err, &navErr) && strings.HasPrefix(navErr.Reason, "net::"):
		return models.NewScrapeError(models.ErrCodeNetwork, msg, err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
