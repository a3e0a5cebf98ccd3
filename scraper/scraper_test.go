package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/use-agent/cinescrape/browser"
	"github.com/use-agent/cinescrape/config"
	"github.com/use-agent/cinescrape/models"
)

type fakeRenderer struct {
	pages map[string]*browser.Snapshot
	err   error

	video   string
	visible bool
	gotQ    browser.VisibleQuery
}

func (f *fakeRenderer) Render(_ context.Context, target string) (*browser.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	snap, ok := f.pages[target]
	if !ok {
		return nil, models.NewScrapeError(models.ErrCodeNetwork, "no such page", nil)
	}
	return snap, nil
}

func (f *fakeRenderer) WaitVisible(_ context.Context, _ string, q browser.VisibleQuery) (string, bool, error) {
	f.gotQ = q
	if f.err != nil {
		return "", false, f.err
	}
	return f.video, f.visible, nil
}

func testConfig() config.ScraperConfig {
	return config.ScraperConfig{StreamSettle: 3 * time.Second, StreamWaitTimeout: 5 * time.Second}
}

func TestScraper_Listing(t *testing.T) {
	r := &fakeRenderer{pages: map[string]*browser.Snapshot{
		"https://example.com/list": {HTML: listingFixture, FinalURL: "https://example.com/list"},
	}}
	s := New(r, testConfig())

	items, err := s.Listing(context.Background(), "https://example.com/list")
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("got %d items, want 3", len(items))
	}
}

func TestScraper_ListingKeepsDOMAttributes(t *testing.T) {
	r := &fakeRenderer{pages: map[string]*browser.Snapshot{
		"http://old.example.com/": {HTML: listingFixture, FinalURL: "https://new.example.com/"},
	}}
	s := New(r, testConfig())

	items, err := s.Listing(context.Background(), "http://old.example.com/")
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if items[0].URL != "/phim/a-1/" || items[0].Img != "/img/a.jpg" {
		t.Errorf("item = %+v, want href and src exactly as in the page", items[0])
	}
}

func TestScraper_DetailsPropagatesError(t *testing.T) {
	want := models.NewScrapeError(models.ErrCodeTimeout, "slow", context.DeadlineExceeded)
	s := New(&fakeRenderer{err: want}, testConfig())

	_, err := s.Details(context.Background(), "https://example.com/phim/a-1/")
	if !errors.Is(err, want) {
		t.Fatalf("expected the renderer error, got %v", err)
	}
}

func TestScraper_StreamingURL(t *testing.T) {
	r := &fakeRenderer{video: "https://cdn.example.com/v.mp4", visible: true}
	s := New(r, testConfig())

	src, ok, err := s.StreamingURL(context.Background(), "https://example.com/watch")
	if err != nil || !ok || src != "https://cdn.example.com/v.mp4" {
		t.Fatalf("got %q, %v, %v", src, ok, err)
	}
	if r.gotQ.Selector != ".jw-video" || r.gotQ.Property != "src" {
		t.Errorf("query = %+v", r.gotQ)
	}
	if r.gotQ.Timeout != 5*time.Second || r.gotQ.Settle != 3*time.Second {
		t.Errorf("query timings = %v/%v, want 3s settle and 5s wait", r.gotQ.Settle, r.gotQ.Timeout)
	}
}

func TestScraper_StreamingURLNotVisible(t *testing.T) {
	s := New(&fakeRenderer{}, testConfig())

	src, ok, err := s.StreamingURL(context.Background(), "https://example.com/watch")
	if err != nil {
		t.Fatalf("StreamingURL: %v", err)
	}
	if ok || src != "" {
		t.Errorf("got %q, %v; want nothing", src, ok)
	}
}
