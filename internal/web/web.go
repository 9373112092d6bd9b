// Package web serves the recommendation form and JSON API.
//
// # Routes
//
//	GET  /                     → form page
//	POST /                     → form page with the recommendations fragment (fragment only for HTMX requests)
//	GET  /api/recommendations  → JSON recommendations for ?artist=...&artist=...&top_n=N
//	GET  /healthz              → liveness probe
//	GET  /metrics              → Prometheus metrics (when a gatherer is configured)
//
// The form takes a single artist name in the user_input field. The page and API both call the
// same [Recommender], which re-reads the catalog on every request.
package web

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/desertthunder/soundalike/internal/metrics"
	"github.com/desertthunder/soundalike/internal/recommend"
	"github.com/desertthunder/soundalike/internal/server"
	"github.com/desertthunder/soundalike/internal/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Recommender produces recommendations for a request. [tasks.Engine] implements it.
type Recommender interface {
	Defaults() recommend.Options
	RecommendWith(ctx context.Context, preferred []string, opts recommend.Options) (*recommend.Result, error)
}

// Options configure [NewRouter].
type Options struct {
	Logger   *log.Logger
	Metrics  *metrics.Recorder
	Gatherer prometheus.Gatherer // serves /metrics when set
}

// NewRouter builds the application router with logging, metrics, and panic recovery applied to every route.
func NewRouter(engine Recommender, opts Options) *server.BasicRouter {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = shared.WithLogger(logger, "component", "web")

	router := server.NewBasicRouter()
	router.Use(server.Logging(logger), server.Metrics(opts.Metrics), server.Recover(logger))

	router.Handler(NewPageHandler(engine, logger))
	router.Handler(NewAPIHandler(engine, logger))
	router.Handler(HealthHandler{})

	if opts.Gatherer != nil {
		router.Handle("GET", "/metrics", metrics.Handler(opts.Gatherer))
	}

	return router
}
