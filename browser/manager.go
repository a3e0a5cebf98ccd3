// Package browser owns the headless Chromium process and lends out its
// tabs, one per scrape, through a bounded pool.
package browser

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/cinescrape/config"
	"github.com/use-agent/cinescrape/models"
	"github.com/ysmood/gson"
)

// cleanupTimeout bounds the about:blank reset after each visit.
const cleanupTimeout = 5 * time.Second

// Manager manages the global browser lifecycle and the tab pool.
// It is safe for concurrent use.
type Manager struct {
	browser    *rod.Browser
	pool       *Pool[*rod.Page]
	navTimeout time.Duration
	blocked    map[proto.NetworkResourceType]struct{}
	blockAds   bool
}

// NewManager launches a headless browser and pre-opens the tab pool.
func NewManager(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) (*Manager, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.Proxy != "" {
		l = l.Proxy(browserCfg.Proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("autoplay-policy"), "no-user-gesture-required")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	m := &Manager{
		browser:    b,
		navTimeout: scraperCfg.NavigationTimeout,
		blocked:    blockedSet(scraperCfg.BlockedResourceTypes),
		blockAds:   scraperCfg.BlockAds,
	}
	m.pool = NewPool(
		PoolConfig{MinSize: browserCfg.MinPages, MaxSize: browserCfg.MaxPages},
		func() (*rod.Page, error) { return m.newTab(browserCfg.Stealth) },
		func(p *rod.Page) {
			if err := p.Close(); err != nil {
				slog.Debug("failed to close tab", "error", err)
			}
		},
	)
	slog.Info("tab pool created", "minPages", browserCfg.MinPages, "maxPages", browserCfg.MaxPages)

	return m, nil
}

// newTab opens a blank tab with the per-tab setup every visit relies on.
func (m *Manager) newTab(withStealth bool) (*rod.Page, error) {
	page, err := m.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to open tab", err)
	}

	if withStealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}

	// The site serves Vietnamese labels; keep it from guessing a locale.
	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: proto.NetworkHeaders{
			"Accept-Language": gson.New("vi-VN,vi;q=0.9,en;q=0.8"),
		},
	}.Call(page)

	return page, nil
}

// Visit borrows a tab, navigates it to target and calls fn with the loaded
// page bound to ctx. The tab is reset to about:blank and returned to the
// pool afterwards; tabs that keep failing are retired.
func (m *Manager) Visit(ctx context.Context, target string, fn func(p *rod.Page) error) (err error) {
	h, err := m.pool.Get(ctx)
	if err != nil {
		switch {
		case errors.Is(err, ErrPoolExhausted):
			return models.NewScrapeError(models.ErrCodePoolExhausted, "no browser tab became free in time", err)
		case errors.Is(err, ErrPoolClosed):
			return models.NewScrapeError(models.ErrCodeBrowserCrash, "browser is shutting down", err)
		default:
			return models.AsScrapeError(err)
		}
	}
	page := h.Value

	defer func() {
		healthy := err == nil || models.AsScrapeError(err).Code == models.ErrCodeSelectorNotFound
		if navErr := page.Timeout(cleanupTimeout).Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
			healthy = false
		}
		m.pool.Put(h, healthy)
	}()

	if router := setupHijack(page, m.blocked, m.blockAds); router != nil {
		defer func() { _ = router.Stop() }()
	}

	navCtx, cancel := context.WithTimeout(ctx, m.navTimeout)
	defer cancel()
	nav := page.Context(navCtx)

	if err := nav.Navigate(target); err != nil {
		return CategorizeError(err, "navigation to target URL failed")
	}
	if err := nav.WaitLoad(); err != nil {
		return CategorizeError(err, "page did not finish loading")
	}
	if err := nav.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"url", target, "error", err)
	}

	return fn(page.Context(ctx))
}

// Stats returns a snapshot of the pool's current state.
func (m *Manager) Stats() models.PoolStats {
	return models.PoolStats{
		MaxPages:    m.pool.Max(),
		OpenPages:   m.pool.Size(),
		ActivePages: m.pool.ActiveCount(),
	}
}

// Close drains the tab pool and kills the browser process.
func (m *Manager) Close() {
	slog.Info("browser shutting down: draining tab pool")
	m.pool.Close()
	if err := m.browser.Close(); err != nil {
		slog.Warn("browser shutting down: close failed", "error", err)
	}
	slog.Info("browser shutdown complete")
}
