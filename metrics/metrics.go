// Package metrics exposes Prometheus counters and histograms for the HTTP
// layer, the scrapers and the browser tab pool.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/use-agent/cinescrape/models"
)

// Registry holds every cinescrape collector. A private registry keeps
// tests free of global registration state.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinescrape_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinescrape_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"method", "route"},
	)

	scrapesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinescrape_scrapes_total",
			Help: "Scrape operations by operation and result code",
		},
		[]string{"operation", "code"},
	)

	scrapeDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinescrape_scrape_duration_seconds",
			Help:    "Scrape operation duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"operation"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// CodeOK labels a scrape that returned without error.
const CodeOK = "OK"

// RecordHTTPRequest counts one served request.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordScrape counts one scrape operation. err is classified by its
// ScrapeError code; nil counts as CodeOK.
func RecordScrape(operation string, err error, d time.Duration) {
	code := CodeOK
	if err != nil {
		code = models.AsScrapeError(err).Code
	}
	scrapesTotal.WithLabelValues(operation, code).Inc()
	scrapeDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RegisterPoolStats exports the tab pool state as gauges read from stats
// on every scrape. Call it once per process.
func RegisterPoolStats(stats func() models.PoolStats) error {
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "cinescrape_pool_max_pages",
			Help: "Maximum number of browser tabs",
		}, func() float64 { return float64(stats().MaxPages) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "cinescrape_pool_open_pages",
			Help: "Browser tabs currently open",
		}, func() float64 { return float64(stats().OpenPages) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "cinescrape_pool_active_pages",
			Help: "Browser tabs currently serving a request",
		}, func() float64 { return float64(stats().ActivePages) }),
	}
	for _, g := range gauges {
		if err := Registry.Register(g); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
