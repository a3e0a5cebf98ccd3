package handler

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/cinescrape/models"
)

// MovieScraper is the scraping surface the movie handlers need.
type MovieScraper interface {
	Listing(ctx context.Context, pageURL string) ([]models.ListingItem, error)
	Details(ctx context.Context, pageURL string) (*models.MovieInfo, error)
	StreamingURL(ctx context.Context, watchURL string) (string, bool, error)
}

// Listing returns a handler for POST /all.
func Listing(sc MovieScraper) gin.HandlerFunc {
	return respond(func(c *gin.Context) (any, error) {
		pageURL, err := bindPageURL(c)
		if err != nil {
			return nil, err
		}
		return sc.Listing(c.Request.Context(), pageURL)
	})
}

// MovieDetails returns a handler for POST /movie_details.
//
// Flow:
//  1. Scrape the detail page.
//  2. No watch link: return the partial info as-is.
//  3. Otherwise resolve the streaming URL from the watch page and merge it.
//     A failed resolution is logged and the info is returned without it.
func MovieDetails(sc MovieScraper) gin.HandlerFunc {
	return respond(func(c *gin.Context) (any, error) {
		pageURL, err := bindPageURL(c)
		if err != nil {
			return nil, err
		}

		ctx := c.Request.Context()
		info, err := sc.Details(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		if info.WatchURL == "" {
			return info, nil
		}

		src, ok, err := sc.StreamingURL(ctx, info.WatchURL)
		switch {
		case err != nil:
			slog.Warn("streaming URL resolution failed, returning details only",
				"url", pageURL, "watchUrl", info.WatchURL, "error", err)
		case ok:
			info.StreamingURL = src
		}
		return info, nil
	})
}
