// Package scraper turns rendered movie-site pages into API models.
package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/cinescrape/browser"
	"github.com/use-agent/cinescrape/config"
	"github.com/use-agent/cinescrape/metrics"
	"github.com/use-agent/cinescrape/models"
)

// Renderer is the part of browser.Manager the scrapers use.
type Renderer interface {
	Render(ctx context.Context, target string) (*browser.Snapshot, error)
	WaitVisible(ctx context.Context, target string, q browser.VisibleQuery) (string, bool, error)
}

// Scraper implements the listing, detail and streaming-URL operations.
// It holds no per-request state and is safe for concurrent use.
type Scraper struct {
	r            Renderer
	streamSettle time.Duration
	streamWait   time.Duration
}

// New creates a Scraper on top of r.
func New(r Renderer, cfg config.ScraperConfig) *Scraper {
	return &Scraper{
		r:            r,
		streamSettle: cfg.StreamSettle,
		streamWait:   cfg.StreamWaitTimeout,
	}
}

// Listing returns the movies on a catalog page in DOM order.
func (s *Scraper) Listing(ctx context.Context, pageURL string) (_ []models.ListingItem, err error) {
	defer observe("listing", time.Now(), &err)

	snap, err := s.r.Render(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	items, err := ParseListing(snap.HTML)
	if err != nil {
		return nil, err
	}
	slog.Info("listing scraped", "url", pageURL, "items", len(items))
	return items, nil
}

// Details returns the metadata of a movie detail page.
func (s *Scraper) Details(ctx context.Context, pageURL string) (_ *models.MovieInfo, err error) {
	defer observe("details", time.Now(), &err)

	snap, err := s.r.Render(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	info, err := ParseDetails(snap.HTML, snap.FinalURL)
	if err != nil {
		return nil, err
	}
	slog.Info("details scraped", "url", pageURL, "fields", len(info.Fields), "watchUrl", info.WatchURL)
	return info, nil
}

// StreamingURL waits for the video player on a watch page and returns its
// source. ok is false when the player never became visible.
func (s *Scraper) StreamingURL(ctx context.Context, watchURL string) (_ string, _ bool, err error) {
	defer observe("streaming_url", time.Now(), &err)

	src, ok, err := s.r.WaitVisible(ctx, watchURL, browser.VisibleQuery{
		Selector: VideoSelector,
		Property: "src",
		Settle:   s.streamSettle,
		Timeout:  s.streamWait,
	})
	if err != nil {
		return "", false, err
	}
	if !ok {
		slog.Info("streaming video not visible", "url", watchURL, "waited", s.streamWait)
	}
	return src, ok, nil
}

func observe(operation string, start time.Time, err *error) {
	metrics.RecordScrape(operation, *err, time.Since(start))
}
