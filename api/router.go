package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/cinescrape/api/handler"
	"github.com/use-agent/cinescrape/api/middleware"
	"github.com/use-agent/cinescrape/config"
	"github.com/use-agent/cinescrape/metrics"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → Metrics
//	Scrape:  Timeout
//
// Unmatched routes and methods fall through to a JSON 404.
func NewRouter(sc handler.MovieScraper, sp handler.StatsProvider, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.Metrics())
	r.NoRoute(handler.NotFound())

	r.GET("/health", handler.Health(sp, startTime))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	scrape := r.Group("")
	scrape.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	scrape.POST("/all", handler.Listing(sc))
	scrape.POST("/movie_details", handler.MovieDetails(sc))

	return r
}
