package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Browser BrowserConfig
	Scraper ScraperConfig
	Log     LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3002
	Mode string // "debug", "release", "test"; default: "release"

	// RequestTimeout bounds the whole lifecycle of one API request,
	// including time spent waiting for a free browser tab.
	RequestTimeout time.Duration // default: 60s
}

// BrowserConfig controls the Rod browser instance and its tab pool.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MinPages is the number of tabs opened at startup.
	MinPages int // default: 1

	// MaxPages is the tab pool capacity (max concurrent scrapes).
	MaxPages int // default: 5

	// Proxy is the proxy URL used by the browser.
	Proxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Stealth injects anti-automation-detection JS into every tab.
	Stealth bool // default: true
}

// ScraperConfig controls scraping behavior.
type ScraperConfig struct {
	// NavigationTimeout is the max time for navigation plus DOM settling.
	NavigationTimeout time.Duration // default: 30s

	// StreamSettle is how long the watch page is left alone before the
	// video element is looked up, giving the player script time to boot.
	StreamSettle time.Duration // default: 3s

	// StreamWaitTimeout is how long to wait for the video element to
	// become visible.
	StreamWaitTimeout time.Duration // default: 5s

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Font"]
	BlockedResourceTypes []string

	// BlockAds drops requests to well-known ad and tracking hosts.
	BlockAds bool // default: true
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:           envOr("CINESCRAPE_HOST", "0.0.0.0"),
			Port:           envIntOr("PORT", 3002),
			Mode:           envOr("CINESCRAPE_MODE", "release"),
			RequestTimeout: envDurationOr("CINESCRAPE_REQUEST_TIMEOUT", 60*time.Second),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("CINESCRAPE_HEADLESS", true),
			MinPages:   envIntOr("CINESCRAPE_MIN_PAGES", 1),
			MaxPages:   envIntOr("CINESCRAPE_MAX_PAGES", 5),
			Proxy:      os.Getenv("CINESCRAPE_PROXY"),
			NoSandbox:  envBoolOr("CINESCRAPE_NO_SANDBOX", true),
			BrowserBin: os.Getenv("CINESCRAPE_BROWSER_BIN"),
			Stealth:    envBoolOr("CINESCRAPE_STEALTH", true),
		},
		Scraper: ScraperConfig{
			NavigationTimeout:    envDurationOr("CINESCRAPE_NAV_TIMEOUT", 30*time.Second),
			StreamSettle:         envDurationOr("CINESCRAPE_STREAM_SETTLE", 3*time.Second),
			StreamWaitTimeout:    envDurationOr("CINESCRAPE_STREAM_WAIT", 5*time.Second),
			BlockedResourceTypes: envSliceOr("CINESCRAPE_BLOCKED_RESOURCES", []string{"Image", "Font"}),
			BlockAds:             envBoolOr("CINESCRAPE_BLOCK_ADS", true),
		},
		Log: LogConfig{
			Level:  envOr("CINESCRAPE_LOG_LEVEL", "info"),
			Format: envOr("CINESCRAPE_LOG_FORMAT", "json"),
		},
	}
	cfg.Validate()
	return cfg
}

// Validate clamps pool sizes into a usable range.
func (c *Config) Validate() {
	if c.Browser.MaxPages < 1 {
		c.Browser.MaxPages = 1
	}
	if c.Browser.MinPages < 0 {
		c.Browser.MinPages = 0
	}
	if c.Browser.MinPages > c.Browser.MaxPages {
		c.Browser.MinPages = c.Browser.MaxPages
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
